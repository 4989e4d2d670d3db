// Package services holds the business logic between the HTTP
// controllers and the MongoDB repositories. Services depend on small
// store interfaces so tests can substitute in-memory fakes.
package services

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/app/models"
	"eshop/pkg/collection"
	"eshop/pkg/logger"
	"eshop/pkg/metrics"
	"eshop/pkg/workerpool"
)

// ErrSaveFailed marks a write the persistence layer rejected; the
// controllers surface it as a 400 with a plain message.
var ErrSaveFailed = errors.New("save failed")

// ErrNoSales is returned by TotalSales when there are no orders at all.
// The aggregation yields no bucket in that case, and the API reports it
// as a failure rather than a zero total.
var ErrNoSales = errors.New("no sales buckets")

// OrderStore is the persistence surface OrderService needs.
type OrderStore interface {
	FindAll(ctx context.Context) ([]models.OrderSummary, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.OrderDetail, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderDetail, error)
	Insert(ctx context.Context, order models.Order) (models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	TotalSales(ctx context.Context) (total float64, ok bool, err error)
	Count(ctx context.Context) (int64, error)
}

// ItemStore is the persistence surface for order items.
type ItemStore interface {
	Insert(ctx context.Context, item models.OrderItem) (models.OrderItem, error)
	FindWithProduct(ctx context.Context, id primitive.ObjectID) (models.PopulatedItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderItemInput is one {product, quantity} pair of a create request.
type OrderItemInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the create-order request body.
type CreateOrderInput struct {
	OrderItems []OrderItemInput `json:"orderItems" validate:"required,min=1,dive"`
	Address1   string           `json:"address1" validate:"required"`
	Phone      string           `json:"phone" validate:"required"`
	Status     string           `json:"status"`
	User       string           `json:"user" validate:"required"`
}

// OrderService implements the order operations.
type OrderService struct {
	orders OrderStore
	items  ItemStore
	pool   *workerpool.Pool
}

func NewOrderService(orders OrderStore, items ItemStore, pool *workerpool.Pool) *OrderService {
	return &OrderService{orders: orders, items: items, pool: pool}
}

// List returns all orders, newest first, user populated to name.
func (s *OrderService) List(ctx context.Context) ([]models.OrderSummary, error) {
	return s.orders.FindAll(ctx)
}

// Get returns one fully populated order.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (models.OrderDetail, error) {
	return s.orders.FindByID(ctx, id)
}

// ListByUser returns one user's orders, fully populated, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderDetail, error) {
	return s.orders.FindByUser(ctx, userID)
}

// Create runs the three-step order creation flow:
//
//  1. persist every line item concurrently, collecting generated ids;
//  2. re-fetch each item with its product price resolved, concurrently,
//     computing quantity × price;
//  3. persist the order with the summed totalPrice.
//
// Each step is a fan-out joined before the next step starts. The flow
// is not atomic: items committed in step 1 stay behind if a later step
// fails. See TestCreateOrderOrphansItemsOnFinalSaveFailure.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (models.Order, error) {
	userID, err := primitive.ObjectIDFromHex(in.User)
	if err != nil {
		return models.Order{}, err
	}

	itemIDs, err := s.createItems(ctx, in.OrderItems)
	if err != nil {
		return models.Order{}, err
	}

	total, err := s.sumItemPrices(ctx, itemIDs)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.orders.Insert(ctx, models.Order{
		OrderItems: itemIDs,
		Address1:   in.Address1,
		Phone:      in.Phone,
		Status:     in.Status,
		TotalPrice: total,
		User:       userID,
	})
	if err != nil {
		logger.WithCtx(ctx).Error("order save failed", "error", err, "items", len(itemIDs))
		return models.Order{}, errors.Join(ErrSaveFailed, err)
	}

	metrics.OrdersCreated.Inc()
	return order, nil
}

// createItems persists the line items as a fan-out and joins before
// returning. On partial failure the already-committed items remain.
func (s *OrderService) createItems(ctx context.Context, inputs []OrderItemInput) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		productID, err := primitive.ObjectIDFromHex(input.Product)
		if err != nil {
			return nil, err
		}

		item := models.OrderItem{Quantity: input.Quantity, Product: productID}
		idx := i

		wg.Add(1)
		task := func() {
			defer wg.Done()
			created, err := s.items.Insert(ctx, item)
			if err != nil {
				errs[idx] = err
				return
			}
			ids[idx] = created.ID
		}
		if err := s.pool.SubmitWait(task); err != nil {
			wg.Done()
			errs[idx] = err
		}
	}
	wg.Wait()

	if err, found := collection.First(errs, func(e error) bool { return e != nil }); found {
		return nil, err
	}
	return ids, nil
}

// sumItemPrices re-fetches each created item with its product resolved
// and sums quantity × price, again as a joined fan-out.
func (s *OrderService) sumItemPrices(ctx context.Context, ids []primitive.ObjectID) (float64, error) {
	prices := make([]float64, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		idx, itemID := i, id

		wg.Add(1)
		task := func() {
			defer wg.Done()
			item, err := s.items.FindWithProduct(ctx, itemID)
			if err != nil {
				errs[idx] = err
				return
			}
			prices[idx] = float64(item.Quantity) * item.Product.Price
		}
		if err := s.pool.SubmitWait(task); err != nil {
			wg.Done()
			errs[idx] = err
		}
	}
	wg.Wait()

	if err, found := collection.First(errs, func(e error) bool { return e != nil }); found {
		return 0, err
	}

	return collection.Reduce(prices, 0, func(sum, p float64) float64 { return sum + p }), nil
}

// UpdateStatus changes the one mutable field of an order.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	return s.orders.UpdateStatus(ctx, id, status)
}

// Delete removes an order and cascades to every item it referenced, so
// no item document survives without an owning order.
func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	order, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}

	itemErrs := collection.Map(order.OrderItems, func(itemID primitive.ObjectID) error {
		return s.items.Delete(ctx, itemID)
	})
	if err, found := collection.First(itemErrs, func(e error) bool { return e != nil }); found {
		return err
	}
	return nil
}

// TotalSales sums totalPrice over all orders. With zero orders the
// aggregation produces no bucket and ErrNoSales is returned.
func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	total, ok, err := s.orders.TotalSales(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoSales
	}
	return total, nil
}

// Count returns the number of orders.
func (s *OrderService) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}
