// Package repositories implements MongoDB data access for the service.
//
// Reference resolution ("population") is performed at read time with
// aggregation pipelines: a stored ObjectID reference is replaced by the
// referenced document (or a projection of it) before serialisation.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop/app/models"
)

const (
	ordersCollection = "orders"
	itemsCollection  = "orderitems"
	usersCollection  = "users"
)

// OrderRepository handles the orders collection.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

// userNameLookup resolves the order's user reference to {_id, name}.
func userNameLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "orderItems", Value: 1},
			{Key: "address1", Value: 1},
			{Key: "phone", Value: 1},
			{Key: "status", Value: 1},
			{Key: "totalPrice", Value: 1},
			{Key: "dateOrdered", Value: 1},
			{Key: "user._id", Value: 1},
			{Key: "user.name", Value: 1},
		}}},
	}
}

// itemProductLookup resolves each referenced order item to its full
// document with the product reference resolved in turn.
func itemProductLookup() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: itemsCollection},
		{Key: "let", Value: bson.D{{Key: "ids", Value: "$orderItems"}}},
		{Key: "pipeline", Value: mongo.Pipeline{
			{{Key: "$match", Value: bson.D{
				{Key: "$expr", Value: bson.D{{Key: "$in", Value: bson.A{"$_id", "$$ids"}}}},
			}}},
			{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: productsCollection},
				{Key: "localField", Value: "product"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "product"},
			}}},
			{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$product"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		}},
		{Key: "as", Value: "orderItems"},
	}}}
}

// FindAll returns every order, newest first, with the user reference
// populated to the user's name.
func (r *OrderRepository) FindAll(ctx context.Context) ([]models.OrderSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "dateOrdered", Value: -1}}}},
	}
	pipeline = append(pipeline, userNameLookup()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("orders: find all: %w", err)
	}
	defer cur.Close(ctx)

	orders := []models.OrderSummary{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

// FindByID returns one fully populated order.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.OrderDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		itemProductLookup(),
	}
	pipeline = append(pipeline, userNameLookup()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.OrderDetail{}, fmt.Errorf("orders: find %s: %w", id.Hex(), err)
	}
	defer cur.Close(ctx)

	var orders []models.OrderDetail
	if err := cur.All(ctx, &orders); err != nil {
		return models.OrderDetail{}, fmt.Errorf("orders: decode: %w", err)
	}
	if len(orders) == 0 {
		return models.OrderDetail{}, models.ErrNotFound
	}
	return orders[0], nil
}

// FindByUser returns the fully populated orders of one user, newest first.
func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "dateOrdered", Value: -1}}}},
		itemProductLookup(),
	}
	pipeline = append(pipeline, userNameLookup()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("orders: find by user %s: %w", userID.Hex(), err)
	}
	defer cur.Close(ctx)

	orders := []models.OrderDetail{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

// Insert persists a new order. DateOrdered defaults to now.
func (r *OrderRepository) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	if order.DateOrdered.IsZero() {
		order.DateOrdered = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("orders: insert: %w", err)
	}

	order.ID = res.InsertedID.(primitive.ObjectID)
	return order, nil
}

// UpdateStatus sets the status field, the only field mutable after
// creation, and returns the updated document.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var order models.Order
	err := r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		opts,
	).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, models.ErrNotFound
		}
		return models.Order{}, fmt.Errorf("orders: update %s: %w", id.Hex(), err)
	}
	return order, nil
}

// Delete removes an order and returns the deleted document so the
// caller can cascade to its items.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := r.col.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, models.ErrNotFound
		}
		return models.Order{}, fmt.Errorf("orders: delete %s: %w", id.Hex(), err)
	}
	return order, nil
}

// TotalSales sums totalPrice across all orders in a single global
// bucket. ok is false when there are no orders at all: the aggregation
// yields no bucket, which callers treat differently from a zero sum.
func (r *OrderRepository) TotalSales(ctx context.Context) (total float64, ok bool, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalsales", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, fmt.Errorf("orders: total sales: %w", err)
	}
	defer cur.Close(ctx)

	var buckets []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cur.All(ctx, &buckets); err != nil {
		return 0, false, fmt.Errorf("orders: decode total sales: %w", err)
	}
	if len(buckets) == 0 {
		return 0, false, nil
	}
	return buckets[0].TotalSales, true, nil
}

// Count returns the number of order documents.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("orders: count: %w", err)
	}
	return n, nil
}
