package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/service"
)

var errUserNotFound = apperr.NotFound("Utilisateur non trouvé")

type userUpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"omitempty,oneof=customer admin"`
}

func ListUsers(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetUser(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id", errUserNotFound)
		if !ok {
			return
		}

		user, err := users.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UpdateUser(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id", errUserNotFound)
		if !ok {
			return
		}

		var req userUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		view, err := users.Update(c.Request.Context(), id, service.UserPatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Role:      req.Role,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func DeleteUser(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/:id"

		admin, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id", errUserNotFound)
		if !ok {
			return
		}

		if err := users.Delete(c.Request.Context(), admin.ID, id); err != nil {
			routeLog(c, logging.AreaUser, route).WithError(err).Info("delete refused")
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé"})
	}
}
