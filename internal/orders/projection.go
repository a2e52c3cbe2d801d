package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// ProjectedItem is the uniform admin view of one order line, regardless of
// which physical representation it came from. Price is the only point-in-time
// field: relational lines carry the unit price snapshotted when the line was
// added, legacy entries the price frozen at submission. Name, description, and
// photo always reflect the current catalog.
type ProjectedItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ItemSource abstracts over the two physical item representations so callers
// project an order in one place instead of branching per call site.
type ItemSource interface {
	// ProductIDs returns every referenced product for batch catalog lookup.
	ProductIDs() []string
	// Project maps the entries onto the uniform view, enriching display
	// metadata from the given catalog products keyed by ID.
	Project(products map[string]*models.Product) []ProjectedItem
}

// RelationalSource projects live line-item rows.
type RelationalSource []*models.OrderItem

// LegacySource projects the frozen item list written at submission.
type LegacySource []models.LegacyItem

// NewItemSource picks the representation for an order: relational rows when
// any exist, otherwise the frozen legacy list, otherwise an empty source.
func NewItemSource(order *models.Order, items []*models.OrderItem) (ItemSource, error) {
	if len(items) > 0 {
		return RelationalSource(items), nil
	}
	if len(order.Items) > 0 {
		var legacy []models.LegacyItem
		if err := json.Unmarshal(order.Items, &legacy); err != nil {
			return nil, fmt.Errorf("failed to decode frozen item list: %w", err)
		}
		return LegacySource(legacy), nil
	}
	return RelationalSource(nil), nil
}

// ProductIDs implements ItemSource.
func (s RelationalSource) ProductIDs() []string {
	ids := make([]string, 0, len(s))
	for _, item := range s {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Project implements ItemSource. The stored name snapshot is the fallback when
// the product has since been deleted from the catalog.
func (s RelationalSource) Project(products map[string]*models.Product) []ProjectedItem {
	projected := make([]ProjectedItem, 0, len(s))
	for _, item := range s {
		p := ProjectedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		}
		if product, ok := products[item.ProductID]; ok {
			p.ProductName = product.Name
			p.Description = product.Description
			p.PhotoURL = product.PhotoURL
		}
		projected = append(projected, p)
	}
	return projected
}

// ProductIDs implements ItemSource.
func (s LegacySource) ProductIDs() []string {
	ids := make([]string, 0, len(s))
	for _, item := range s {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Project implements ItemSource.
func (s LegacySource) Project(products map[string]*models.Product) []ProjectedItem {
	projected := make([]ProjectedItem, 0, len(s))
	for _, item := range s {
		p := ProjectedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if product, ok := products[item.ProductID]; ok {
			p.ProductName = product.Name
			p.Description = product.Description
			p.PhotoURL = product.PhotoURL
		}
		projected = append(projected, p)
	}
	return projected
}

// Project produces the uniform item list for an order. Used by the admin
// endpoints, which must render B2B relational orders and legacy-shaped
// storefront orders in one view.
func (s *Service) Project(ctx context.Context, order *models.Order) ([]ProjectedItem, error) {
	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	source, err := NewItemSource(order, items)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.GetProductsByIDs(ctx, source.ProductIDs())
	if err != nil {
		return nil, err
	}

	return source.Project(products), nil
}
