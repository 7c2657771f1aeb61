package activity

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"csdept/internal/middleware"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler accepts upgrades from allowedOrigins. Requests without an
// Origin header (CLI tools, tests) are always accepted.
func NewHandler(hub *Hub, allowedOrigins []string, log logrus.FieldLogger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Stream upgrades to a websocket. JWTAuth and the role gate run before it,
// reading the token from ?token=.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("activity: websocket upgrade failed")
		return
	}
	h.hub.Serve(conn, c.GetInt64(middleware.ContextUserID))
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/ws", h.Stream)
}
