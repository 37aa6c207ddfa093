package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/metrics"
	"afrizone/internal/models"
	"afrizone/internal/store"
)

// TokenVerifier resolves a raw bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(raw string) (primitive.ObjectID, error)
}

// UserFinder loads the account a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", false
	}
	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

var (
	errMissingToken = apperr.Unauthenticated("Non autorisé, token manquant")
	errInvalidToken = apperr.Unauthenticated("Token invalide")
)

// Protect authenticates the request and stores the account in the context.
// A token whose user no longer exists is rejected like an invalid one.
func Protect(tokens TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logging.Area(Logger(c), logging.AreaAuth)

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Debug("missing or malformed authorization header")
			metrics.RecordAuthFailure(metrics.ReasonMissingToken)
			AbortWithError(c, errMissingToken)
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			log.WithError(err).Info("token validation failed")
			metrics.RecordAuthFailure(metrics.ReasonInvalidToken)
			AbortWithError(c, errInvalidToken)
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			log.WithField("userId", userID.Hex()).Warn("token refers to a deleted user")
			metrics.RecordAuthFailure(metrics.ReasonUnknownUser)
			AbortWithError(c, errInvalidToken)
			return
		}
		if err != nil {
			AbortWithError(c, apperr.Internal("load token user", err))
			return
		}

		user.PasswordHash = ""
		setCurrentUser(c, user)
		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated account
// holds one of roles. It must run after Protect.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			AbortWithError(c, apperr.ErrUnauthenticated)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		logging.Area(Logger(c), logging.AreaAuth).
			WithFields(logrus.Fields{"userId": user.ID.Hex(), "role": user.Role}).
			Info("role check refused")
		metrics.RecordAuthFailure(metrics.ReasonForbidden)
		AbortWithError(c, apperr.ErrForbidden)
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
