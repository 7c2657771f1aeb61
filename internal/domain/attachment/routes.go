package attachment

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/attachments")
	{
		g.GET("", h.Index)
		g.POST("", h.Upload)
		g.POST("/links", h.CreateLink)
		g.GET("/:id", h.Show)
		g.DELETE("/:id", h.Destroy)
		g.PATCH("/:id/restore", h.Restore)
		g.DELETE("/:id/force", h.ForceDelete)
	}
}
