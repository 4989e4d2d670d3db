package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a line item in the "orderitems" collection. Items are
// created before their parent order exists so the order can reference
// them by id, and are deleted when the parent order is deleted.
type OrderItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Product  primitive.ObjectID `bson:"product" json:"product"`
}

// Order is a purchase aggregate in the "orders" collection.
// TotalPrice equals the sum of quantity × product price over its items
// at creation time; only Status is mutable afterwards.
type Order struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderItems  []primitive.ObjectID `bson:"orderItems" json:"orderItems"`
	Address1    string               `bson:"address1" json:"address1"`
	Phone       string               `bson:"phone" json:"phone"`
	Status      string               `bson:"status" json:"status"`
	TotalPrice  float64              `bson:"totalPrice" json:"totalPrice"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	DateOrdered time.Time            `bson:"dateOrdered" json:"dateOrdered"`
}

// PopulatedItem is an order item with its product reference resolved to
// the full product document.
type PopulatedItem struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Product  Product            `bson:"product" json:"product"`
}

// OrderSummary is the list projection: the user reference resolved to
// the user's name, items left as ids.
type OrderSummary struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	OrderItems  []primitive.ObjectID `bson:"orderItems" json:"orderItems"`
	Address1    string               `bson:"address1" json:"address1"`
	Phone       string               `bson:"phone" json:"phone"`
	Status      string               `bson:"status" json:"status"`
	TotalPrice  float64              `bson:"totalPrice" json:"totalPrice"`
	User        UserRef              `bson:"user" json:"user"`
	DateOrdered time.Time            `bson:"dateOrdered" json:"dateOrdered"`
}

// OrderDetail is the fully populated projection: user resolved to name,
// items resolved to full records with their product documents.
type OrderDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	OrderItems  []PopulatedItem    `bson:"orderItems" json:"orderItems"`
	Address1    string             `bson:"address1" json:"address1"`
	Phone       string             `bson:"phone" json:"phone"`
	Status      string             `bson:"status" json:"status"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`
	User        UserRef            `bson:"user" json:"user"`
	DateOrdered time.Time          `bson:"dateOrdered" json:"dateOrdered"`
}
