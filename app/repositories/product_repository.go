package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eshop/app/models"
	"eshop/pkg/cache"
)

const productsCollection = "products"

// productCacheTTL bounds staleness of cached catalogue reads. Prices
// resolved during order creation may lag a catalogue update by at most
// this long.
const productCacheTTL = 5 * time.Minute

// ProductRepository reads the products collection. The catalogue is
// owned by an external service; this repository only resolves product
// references, with a Redis read-through cache in front.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productsCollection)}
}

// FindByID returns one product, from cache when possible.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	key := "product:" + id.Hex()

	var product models.Product
	if cache.Get(ctx, key, &product) {
		return product, nil
	}

	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, models.ErrNotFound
		}
		return models.Product{}, fmt.Errorf("products: find %s: %w", id.Hex(), err)
	}

	_ = cache.Set(ctx, key, product, productCacheTTL)
	return product, nil
}

// Insert persists a product. Used by the seeders only; the running
// service never writes to the catalogue.
func (r *ProductRepository) Insert(ctx context.Context, product models.Product) (models.Product, error) {
	res, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return models.Product{}, fmt.Errorf("products: insert: %w", err)
	}

	product.ID = res.InsertedID.(primitive.ObjectID)
	return product, nil
}
