package models

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every store when an identifier does not
// resolve to a document.
var ErrNotFound = errors.New("record not found")

// User is an identity document in the "users" collection.
// PasswordHash is never serialised: the hash must not leave the service
// boundary on any response path, including register and update.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
}

// UserRef is the projection used when an order's user reference is
// populated with the name only.
type UserRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}
