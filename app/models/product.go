package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product lives in the "products" collection. The catalogue itself is
// managed elsewhere; this service only reads products to price order
// items and resolve references.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`
}
