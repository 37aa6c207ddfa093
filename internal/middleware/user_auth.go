package middleware

import (
	"github.com/gin-gonic/gin"

	"afrizone/internal/models"
)

type contextKey int

const currentUserKey contextKey = iota

func setCurrentUser(c *gin.Context, user models.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the account attached by Protect.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
