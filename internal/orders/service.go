package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/telemetry"
)

// Service coordinates the order aggregate. All read-modify-write cycles are
// delegated to the repository's transactional operations, which lock the order
// row for the duration of the recompute, so two members editing the same draft
// concurrently both land and the total reflects the final row set.
type Service struct {
	orders  *repositories.OrderRepository
	catalog *repositories.CatalogRepository
}

// NewService creates the order service.
func NewService(orders *repositories.OrderRepository, catalog *repositories.CatalogRepository) *Service {
	return &Service{orders: orders, catalog: catalog}
}

// CreateDraft returns the organization's open draft, creating an empty one
// when none exists. An organization has at most one draft at a time, so a
// member opening "a new order" while a colleague already started one joins
// the existing draft instead of forking it. When a buyer starts a fresh
// draft their ID is persisted with it; a draft started by an employee
// carries no buyer until submission.
func (s *Service) CreateDraft(ctx context.Context, actor Membership, comment string) (*models.Order, error) {
	order := &models.Order{
		OrganizationID: &actor.OrganizationID,
		Comment:        comment,
	}
	if actor.IsBuyer() {
		order.BuyerID = &actor.UserID
	}

	created, err := s.orders.CreateDraft(ctx, order)
	if err != nil {
		return nil, err
	}

	if created {
		slog.Info("draft order created",
			"order_id", order.ID,
			"organization_id", actor.OrganizationID,
			"user_id", actor.UserID)
	} else {
		slog.Info("existing draft order returned",
			"order_id", order.ID,
			"organization_id", actor.OrganizationID,
			"user_id", actor.UserID)
	}

	return order, nil
}

// Get returns an order with its line items, enforcing visibility: the order
// must belong to the actor's organization, and employees see a draft only
// after contributing at least one item to it.
func (s *Service) Get(ctx context.Context, actor Membership, orderID string) (*models.Order, []*models.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if !actor.belongsTo(order) {
		return nil, nil, ErrForbidden
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if actor.IsEmployee() && IsMutable(order.Status) && !authoredAny(items, actor.UserID) {
		return nil, nil, ErrForbidden
	}

	return order, items, nil
}

// List returns the actor's organization orders, applying the employee draft
// visibility rule at the query level.
func (s *Service) List(ctx context.Context, actor Membership) ([]*models.Order, error) {
	var employeeID *string
	if actor.IsEmployee() {
		employeeID = &actor.UserID
	}
	return s.orders.ListByOrganization(ctx, actor.OrganizationID, employeeID)
}

// AddItem appends a line item to a draft on behalf of the actor. The quantity
// must be positive and the product must exist; the stored line snapshots the
// product's name and unit price as of this call.
func (s *Service) AddItem(ctx context.Context, actor Membership, orderID, productID string, quantity decimal.Decimal, comment string) (*models.Order, *models.OrderItem, error) {
	if !quantity.IsPositive() {
		return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if err := s.authorizeMutation(ctx, actor, orderID); err != nil {
		return nil, nil, err
	}

	item := &models.OrderItem{
		EmployeeID: actor.UserID,
		ProductID:  productID,
		Quantity:   quantity,
		Comment:    comment,
	}
	order, err := s.orders.AddItem(ctx, orderID, item)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	telemetry.OrderItemsAddedTotal.Inc()
	slog.Info("order item added",
		"order_id", orderID,
		"item_id", item.ID,
		"product_id", productID,
		"user_id", actor.UserID,
		"total", order.Total.StringFixed(2))

	return order, item, nil
}

// RemoveItem deletes a line item from a draft. Employees may only remove lines
// they added themselves; buyers may remove any line in their organization's
// order.
func (s *Service) RemoveItem(ctx context.Context, actor Membership, orderID, itemID string) (*models.Order, error) {
	if err := s.authorizeMutation(ctx, actor, orderID); err != nil {
		return nil, err
	}

	var restrictTo *string
	if actor.IsEmployee() {
		restrictTo = &actor.UserID
	}

	order, item, err := s.orders.RemoveItem(ctx, orderID, itemID, restrictTo)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	telemetry.OrderItemsRemovedTotal.Inc()
	slog.Info("order item removed",
		"order_id", orderID,
		"item_id", item.ID,
		"user_id", actor.UserID,
		"total", order.Total.StringFixed(2))

	return order, nil
}

// Submit finalizes a draft. Only a buyer may submit; the submitting buyer is
// recorded on the order regardless of who started the draft, and the frozen
// item list captures prices as of this moment.
func (s *Service) Submit(ctx context.Context, actor Membership, orderID string) (*models.Order, error) {
	existing, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if !actor.belongsTo(existing) {
		return nil, ErrForbidden
	}
	if !actor.IsBuyer() {
		return nil, fmt.Errorf("%w: only a buyer can submit", ErrForbidden)
	}
	if !CanTransition(existing.Status, models.StatusSubmitted) {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidState, existing.Status)
	}

	order, err := s.orders.Submit(ctx, orderID, actor.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	telemetry.OrdersSubmittedTotal.WithLabelValues("b2b").Inc()
	slog.Info("order submitted",
		"order_id", orderID,
		"buyer_id", actor.UserID,
		"total", order.Total.StringFixed(2))

	return order, nil
}

// FlatLine is one requested line of a storefront order.
type FlatLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateFlat creates a storefront order in one shot: the item list is priced
// at current catalog prices, frozen immediately, and the order lands in the
// pending status with no draft stage.
func (s *Service) CreateFlat(ctx context.Context, customerID string, lines []FlatLine, comment string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		ids = append(ids, line.ProductID)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	frozen := make([]models.LegacyItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}
		if line.Quantity.LessThan(product.MinOrder) {
			return nil, fmt.Errorf("%w: minimum order for %s is %s", ErrValidation, product.Name, product.MinOrder)
		}
		frozen = append(frozen, models.LegacyItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		total = total.Add(line.Quantity.Mul(product.Price))
	}

	itemsJSON, err := json.Marshal(frozen)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	order := &models.Order{
		CustomerID: &customerID,
		Items:      itemsJSON,
		Total:      total.Round(2),
		Comment:    comment,
	}
	if err := s.orders.CreateFlat(ctx, order); err != nil {
		return nil, err
	}

	telemetry.OrdersSubmittedTotal.WithLabelValues("storefront").Inc()
	slog.Info("storefront order created",
		"order_id", order.ID,
		"customer_id", customerID,
		"total", order.Total.StringFixed(2))

	return order, nil
}

// ListByCustomer returns a storefront customer's own orders.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// authorizeMutation checks organization scope before a mutating store call.
// The draft status itself is re-checked under the row lock inside the store
// operation, so a stale read here cannot let a mutation through.
func (s *Service) authorizeMutation(ctx context.Context, actor Membership, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if !actor.belongsTo(order) {
		return ErrForbidden
	}
	return nil
}

func authoredAny(items []*models.OrderItem, userID string) bool {
	for _, item := range items {
		if item.EmployeeID == userID {
			return true
		}
	}
	return false
}

// mapStoreError translates repository sentinels into the service taxonomy.
func mapStoreError(err error) error {
	switch err {
	case repositories.ErrNotDraft:
		return fmt.Errorf("%w: order is no longer a draft", ErrInvalidState)
	case repositories.ErrProductMissing:
		return fmt.Errorf("%w: product", ErrNotFound)
	case repositories.ErrItemMissing:
		return fmt.Errorf("%w: order item", ErrNotFound)
	case repositories.ErrItemNotOwned:
		return fmt.Errorf("%w: item belongs to another member", ErrForbidden)
	case repositories.ErrEmptyOrder:
		return fmt.Errorf("%w: order has no items", ErrValidation)
	default:
		return err
	}
}
