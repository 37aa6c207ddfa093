package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// ValidRole reports whether role is one of the assignable account roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// Address is the postal address kept on a user profile and copied onto orders.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street"`
	City       string `bson:"city,omitempty" json:"city"`
	Country    string `bson:"country,omitempty" json:"country"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode"`
}

// Merge returns a copy of a where every non-empty field of patch wins.
func (a Address) Merge(patch Address) Address {
	if patch.Street != "" {
		a.Street = patch.Street
	}
	if patch.City != "" {
		a.City = patch.City
	}
	if patch.Country != "" {
		a.Country = patch.Country
	}
	if patch.PostalCode != "" {
		a.PostalCode = patch.PostalCode
	}
	return a
}

// User represents the application user account.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FirstName    string               `bson:"firstName" json:"firstName"`
	LastName     string               `bson:"lastName" json:"lastName"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      Address              `bson:"address" json:"address"`
	Favorites    []primitive.ObjectID `bson:"favorites" json:"favorites"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasFavorite reports whether productID is already in the favorites list.
func (u User) HasFavorite(productID primitive.ObjectID) bool {
	for _, id := range u.Favorites {
		if id == productID {
			return true
		}
	}
	return false
}
