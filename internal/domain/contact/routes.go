package contact

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/contact", h.Submit)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/contact-messages")
	{
		g.GET("", h.Index)
		g.GET("/:id", h.Show)
		g.PATCH("/:id/status", h.UpdateStatus)
		g.DELETE("/:id", h.Delete)
	}
}
