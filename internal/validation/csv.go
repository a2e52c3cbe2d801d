// csv.go validates product catalog CSV files before import. The admin panel
// uploads a CSV exported from a spreadsheet; every row is validated and the
// importer only applies rows that parsed cleanly, reporting the rest back with
// their row numbers.
package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductCSVHeader is the required header row, in order.
var ProductCSVHeader = []string{"name", "description", "unit", "price", "min_order", "category"}

// ProductRow is one successfully parsed CSV row.
type ProductRow struct {
	Name        string
	Description string
	Unit        string
	Price       decimal.Decimal
	MinOrder    decimal.Decimal
	Category    string
}

// RowError describes a validation failure on a single CSV row.
// Row is 1-based and counts the header, matching what a spreadsheet shows.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ParseProductCSV reads and validates a product CSV file.
// Rows that fail validation are reported in rowErrs and skipped; valid rows
// are returned in order. A malformed file (unreadable, wrong header) is a
// hard error.
func ParseProductCSV(r io.Reader) (rows []ProductRow, rowErrs []RowError, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, nil, err
	}

	rowNum := 1 // header row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		row, rErr := parseRow(rowNum, record)
		if rErr != nil {
			rowErrs = append(rowErrs, *rErr)
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

func validateHeader(header []string) error {
	if len(header) != len(ProductCSVHeader) {
		return fmt.Errorf("invalid CSV header: expected %d columns (%s), got %d",
			len(ProductCSVHeader), strings.Join(ProductCSVHeader, ","), len(header))
	}
	for i, want := range ProductCSVHeader {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return fmt.Errorf("invalid CSV header: column %d must be %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseRow(rowNum int, record []string) (ProductRow, *RowError) {
	var row ProductRow

	if len(record) != len(ProductCSVHeader) {
		return row, &RowError{Row: rowNum, Message: fmt.Sprintf("expected %d columns, got %d", len(ProductCSVHeader), len(record))}
	}

	row.Name = strings.TrimSpace(record[0])
	row.Description = strings.TrimSpace(record[1])
	row.Unit = strings.TrimSpace(record[2])
	row.Category = strings.TrimSpace(record[5])

	if row.Name == "" {
		return row, &RowError{Row: rowNum, Message: "name is required"}
	}
	if row.Unit == "" {
		return row, &RowError{Row: rowNum, Message: "unit is required"}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return row, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid price %q", record[3])}
	}
	if price.IsNegative() {
		return row, &RowError{Row: rowNum, Message: "price must not be negative"}
	}
	row.Price = price

	minOrder, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return row, &RowError{Row: rowNum, Message: fmt.Sprintf("invalid min_order %q", record[4])}
	}
	if !minOrder.IsPositive() {
		return row, &RowError{Row: rowNum, Message: "min_order must be positive"}
	}
	row.MinOrder = minOrder

	return row, nil
}
