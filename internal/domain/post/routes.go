package post

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	g := v1.Group("/posts")
	{
		g.GET("", h.PublicIndex)
		g.GET("/:id", h.PublicShow)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/post-categories", h.Categories)

	g := admin.Group("/posts")
	{
		g.GET("", h.Index)
		g.POST("", h.Create)
		g.GET("/:id", h.Show)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Destroy)
		g.PATCH("/:id/restore", h.Restore)
		g.DELETE("/:id/force", h.ForceDelete)
	}
}
