package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"csdept/internal/pkg/response"
	"csdept/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fields)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrAccountLocked):
			response.Error(c, http.StatusForbidden, "ACCOUNT_LOCKED", "Account is temporarily locked")
		default:
			response.CustomError(c, http.StatusInternalServerError, "LOGIN_FAILED", err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(result.User),
		"tokens": gin.H{
			"access_token": result.AccessToken,
		},
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	actor, err := ActorFromContext(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}
