package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"csdept/internal/domain/activity"
	"csdept/internal/domain/attachment"
	"csdept/internal/domain/auth"
	"csdept/internal/domain/contact"
	"csdept/internal/domain/post"
	"csdept/internal/middleware"
	"csdept/internal/storage"
)

// Router builds the HTTP API under /api/v1.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(a.Log))
	r.Use(middleware.CORS(a.Config.CORS.AllowedOrigins))
	r.Use(middleware.Locale())
	r.MaxMultipartMemory = 32 << 20

	if local, ok := a.Storage.(*storage.Local); ok {
		r.Static(a.Config.Storage.PublicURL, local.Root())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(a.Auth)
	attachmentHandler := attachment.NewHandler(a.Attachments, a.Owners)
	postHandler := post.NewHandler(a.Posts)
	contactHandler := contact.NewHandler(a.Contact)
	activityHandler := activity.NewHandler(a.Hub, a.Config.CORS.AllowedOrigins, a.Log)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		postHandler.RegisterPublicRoutes(v1)
		contactHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.Tokens))
		authHandler.RegisterProtectedRoutes(protected)

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(a.Tokens), middleware.RequireRoles(string(auth.RoleAdmin), string(auth.RoleManager)))
		{
			attachmentHandler.RegisterAdminRoutes(admin)
			postHandler.RegisterAdminRoutes(admin)
			contactHandler.RegisterAdminRoutes(admin)
			activityHandler.RegisterRoutes(admin)
		}
	}
	return r
}
