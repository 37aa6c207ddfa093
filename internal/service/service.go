// Package service holds the business rules of accounts, catalog and orders.
// Services speak in models and apperr kinds; persistence goes through the
// store interfaces.
package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/models"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID primitive.ObjectID, role string) (string, error)
}

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email,omitempty"`
}

func summarizeUser(u models.User, withEmail bool) *UserSummary {
	summary := &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	if withEmail {
		summary.Email = u.Email
	}
	return summary
}

// ProductSummary is the populated form of an order item's product.
type ProductSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Images models.StringList  `json:"images"`
	Price  float64            `json:"price"`
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func defaultClock() time.Time {
	return time.Now().UTC()
}
