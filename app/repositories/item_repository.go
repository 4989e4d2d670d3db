package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eshop/app/models"
)

// ItemRepository handles the orderitems collection. Items are owned by
// exactly one order; they are created before the parent order exists
// and deleted when it is deleted.
type ItemRepository struct {
	col      *mongo.Collection
	products *ProductRepository
}

func NewItemRepository(db *mongo.Database, products *ProductRepository) *ItemRepository {
	return &ItemRepository{col: db.Collection(itemsCollection), products: products}
}

// Insert persists a new order item and returns it with its generated id.
func (r *ItemRepository) Insert(ctx context.Context, item models.OrderItem) (models.OrderItem, error) {
	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("orderitems: insert: %w", err)
	}

	item.ID = res.InsertedID.(primitive.ObjectID)
	return item, nil
}

// FindWithProduct re-fetches an item with its product reference resolved
// to the full product document. The product read goes through the
// product repository so its cache is used.
func (r *ItemRepository) FindWithProduct(ctx context.Context, id primitive.ObjectID) (models.PopulatedItem, error) {
	var item models.OrderItem
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PopulatedItem{}, models.ErrNotFound
		}
		return models.PopulatedItem{}, fmt.Errorf("orderitems: find %s: %w", id.Hex(), err)
	}

	product, err := r.products.FindByID(ctx, item.Product)
	if err != nil {
		return models.PopulatedItem{}, fmt.Errorf("orderitems: resolve product: %w", err)
	}

	return models.PopulatedItem{
		ID:       item.ID,
		Quantity: item.Quantity,
		Product:  product,
	}, nil
}

// Delete removes one item. Missing items are not an error: the cascade
// after an order delete must be idempotent.
func (r *ItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("orderitems: delete %s: %w", id.Hex(), err)
	}
	return nil
}
