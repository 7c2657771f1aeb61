package post

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/middleware"
	"csdept/internal/pkg/locale"
	"csdept/internal/pkg/pagination"
	"csdept/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Index(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, ParseFilter(c.Request.URL.Query()))
	if err != nil {
		handleError(c, err)
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

	d, err := h.service.Show(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.service.ToDetailResponse(d))
}

func (h *Handler) Categories(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	items, err := h.service.Categories(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		handleSaveError(c, p, err)
		return
	}
	response.Flash(c, http.StatusCreated, locale.Message(middleware.LocaleFrom(c), "post.created"), h.service.ToResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	p, err := h.service.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		handleSaveError(c, p, err)
		return
	}
	response.Flash(c, http.StatusOK, locale.Message(middleware.LocaleFrom(c), "post.updated"), h.service.ToResponse(p))
}

func (h *Handler) Destroy(c *gin.Context) {
	h.transition(c, h.service.Destroy, "post.destroyed")
}

func (h *Handler) Restore(c *gin.Context) {
	h.transition(c, h.service.Restore, "post.restored")
}

func (h *Handler) ForceDelete(c *gin.Context) {
	h.transition(c, h.service.ForceDelete, "post.deleted")
}

type transitionFunc func(ctx context.Context, actor auth.Actor, id int64) (*Post, error)

func (h *Handler) transition(c *gin.Context, op transitionFunc, flashKey string) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := op(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Flash(c, http.StatusOK, locale.Message(middleware.LocaleFrom(c), flashKey), gin.H{"id": p.ID})
}

// PublicIndex lists visible posts, optionally for one category.
func (h *Handler) PublicIndex(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("per_page"))
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)

	items, meta, err := h.service.ListPublished(c.Request.Context(), categoryID, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": h.service.ToPublicSummaries(items, middleware.LocaleFrom(c)),
		"meta":  meta,
	})
}

func (h *Handler) PublicShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.service.ShowPublished(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	out, err := h.service.ToPublicDetail(p, middleware.LocaleFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func bindInput(c *gin.Context) (Input, bool) {
	var req FormRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Invalid form data")
		return Input{}, false
	}

	var files []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		files = form.File["attachments"]
	}
	in, fields := req.Input(files)
	if fields != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fields)
		return Input{}, false
	}
	return in, true
}

// handleSaveError reports a create or update failure. When p is set the post
// was saved and only attaching failed.
func handleSaveError(c *gin.Context, p *Post, err error) {
	var partial *attachment.PartialUploadError
	if p != nil && errors.As(err, &partial) {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "PARTIAL_UPLOAD", "Post saved but some files could not be uploaded", gin.H{
			"post_id":     p.ID,
			"created_ids": partial.CreatedIDs(),
			"failed_file": partial.Filename,
		})
		return
	}
	handleError(c, err)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, auth.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to manage posts")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrCategoryNotFound):
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err)
	default:
		attachment.HandleError(c, err)
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
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return 0, false
	}
	return id, true
}
