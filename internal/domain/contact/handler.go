package contact

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"csdept/internal/domain/auth"
	"csdept/internal/middleware"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/response"
	"csdept/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /api/v1/contact.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fields)
		return
	}

	m, err := h.service.Submit(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Flash(c, http.StatusCreated, locale.Message(middleware.LocaleFrom(c), "contact.received"), gin.H{"id": m.ID})
}

func (h *Handler) Index(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	f := ParseFilter(c.Request.URL.Query())

	result, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items":  ToResponses(result.Items),
		"meta":   result.Meta,
		"counts": result.Counts,
		"filters": gin.H{
			"search":   f.Search,
			"status":   f.Status,
			"per_page": f.Page.Limit(),
		},
		"options": gin.H{"statuses": Statuses},
	})
}

func (h *Handler) Show(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	m, err := h.service.Show(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToResponse(m))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fields)
		return
	}

	m, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Flash(c, http.StatusOK, locale.Message(middleware.LocaleFrom(c), "contact.updated"), ToResponse(m))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	response.Flash(c, http.StatusOK, locale.Message(middleware.LocaleFrom(c), "contact.deleted"), gin.H{"id": id})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, auth.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to manage contact messages")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
	case errors.Is(err, ErrInvalidStatus):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	default:
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}

func actorOrAbort(c *gin.Context) (auth.Actor, bool) {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return auth.Actor{}, false
	}
	return actor, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return 0, false
	}
	return id, true
}
