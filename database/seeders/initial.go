package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eshop/app/models"
	"eshop/pkg/auth"
)

func init() {
	Register("products", SeedProducts)
	Register("admin-user", SeedAdminUser)
}

// SeedProducts inserts a small catalogue when the collection is empty.
func SeedProducts(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("products")

	n, err := col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // already seeded
	}

	products := []interface{}{
		models.Product{Name: "Espresso Beans 1kg", Description: "Dark roast arabica", Price: 18.50, Stock: 120, SKU: "COF-001"},
		models.Product{Name: "Ceramic Mug", Description: "350ml stoneware", Price: 9.90, Stock: 300, SKU: "MUG-014"},
		models.Product{Name: "Pour-over Kettle", Description: "Gooseneck, 1l", Price: 42.00, Stock: 45, SKU: "KET-003"},
	}

	_, err = col.InsertMany(ctx, products)
	return err
}

// SeedAdminUser creates the initial admin account when absent.
func SeedAdminUser(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("users")

	n, err := col.CountDocuments(ctx, bson.D{{Key: "email", Value: "admin@eshop.local"}})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	_, err = col.InsertOne(ctx, models.User{
		Name:         "Admin",
		Email:        "admin@eshop.local",
		PasswordHash: hash,
		IsAdmin:      true,
	})
	return err
}
