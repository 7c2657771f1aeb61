package attachment

import (
	"context"
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
	owners  *Registry
}

func NewHandler(service *Service, owners *Registry) *Handler {
	return &Handler{service: service, owners: owners}
}

func (h *Handler) Index(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, ParseFilter(c.Request.URL.Query()))
	if err != nil {
		HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items":   h.service.ToResponses(result.Items),
		"meta":    result.Meta,
		"filters": result.Filters,
		"options": result.Options,
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

	a, err := h.service.Show(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.service.ToResponse(a))
}

func (h *Handler) Destroy(c *gin.Context) {
	h.transition(c, h.service.Destroy, "attachment.destroyed")
}

func (h *Handler) Restore(c *gin.Context) {
	h.transition(c, h.service.Restore, "attachment.restored")
}

func (h *Handler) ForceDelete(c *gin.Context) {
	h.transition(c, h.service.ForceDelete, "attachment.deleted")
}

type transitionFunc func(ctx context.Context, actor auth.Actor, id int64) (*Attachment, error)

func (h *Handler) transition(c *gin.Context, op transitionFunc, flashKey string) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := op(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	response.Flash(c, http.StatusOK, locale.Message(middleware.LocaleFrom(c), flashKey), gin.H{"id": a.ID})
}

// Upload attaches multipart "files" to the owner named by the
// attachable_type and attachable_id form fields.
func (h *Handler) Upload(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	owner, ok := h.ownerFromValues(c, c.PostForm("attachable_type"), c.PostForm("attachable_id"))
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Expected multipart/form-data")
		return
	}

	created, err := h.service.Ingest(c.Request.Context(), actor, owner, form.File["files"])
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, h.service.ToResponses(created))
}

func (h *Handler) CreateLink(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fields)
		return
	}

	owner, ok := h.ownerFromValues(c, req.AttachableType, strconv.FormatInt(req.AttachableID, 10))
	if !ok {
		return
	}

	a, err := h.service.AddLink(c.Request.Context(), actor, owner, req.LinkInput)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, h.service.ToResponse(a))
}

func (h *Handler) ownerFromValues(c *gin.Context, typ, id string) (OwnerRef, bool) {
	ownerType, ok := h.owners.Lookup(typ)
	if !ok {
		response.Error(c, http.StatusUnprocessableEntity, "UNKNOWN_ATTACHABLE_TYPE", "Unknown attachable type")
		return OwnerRef{}, false
	}
	ownerID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || ownerID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid attachable id")
		return OwnerRef{}, false
	}
	return OwnerRef{Type: ownerType, ID: ownerID}, true
}

// HandleError maps attachment and auth errors onto HTTP responses. Owner
// domains reuse it for the upload side channel.
func HandleError(c *gin.Context, err error) {
	var partial *PartialUploadError
	switch {
	case errors.As(err, &partial):
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "PARTIAL_UPLOAD", "Some files could not be uploaded", gin.H{
			"created_ids": partial.CreatedIDs(),
			"failed_file": partial.Filename,
		})
	case errors.Is(err, auth.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, auth.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to manage attachments")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Attachment not found")
	case errors.Is(err, ErrUnknownOwnerType):
		response.Error(c, http.StatusUnprocessableEntity, "UNKNOWN_ATTACHABLE_TYPE", "Unknown attachable type")
	case errors.Is(err, ErrOwnerNotFound):
		response.Error(c, http.StatusUnprocessableEntity, "OWNER_NOT_FOUND", "Attachable owner does not exist")
	case errors.Is(err, ErrFileTooLarge):
		response.CustomError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err)
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrNoFiles):
		response.CustomError(c, http.StatusUnprocessableEntity, "INVALID_FILE", err)
	case errors.Is(err, ErrInvalidLink), errors.Is(err, ErrContentConflict):
		response.CustomError(c, http.StatusUnprocessableEntity, "INVALID_LINK", err)
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
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid attachment ID")
		return 0, false
	}
	return id, true
}
