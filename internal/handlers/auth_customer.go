package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/logging"
	"afrizone/internal/service"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		res, err := users.Register(c.Request.Context(), service.RegisterInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password,
		})
		if err != nil {
			routeLog(c, logging.AreaAuth, route).WithError(err).Info("register refused")
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, res)
	}
}

func Login(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		res, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}
