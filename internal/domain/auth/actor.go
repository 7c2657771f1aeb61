package auth

import (
	"github.com/gin-gonic/gin"

	"csdept/internal/middleware"
)

// Actor is the authenticated principal performing an operation. Services
// receive it explicitly instead of reading request state.
type Actor struct {
	ID   int64
	Role UserRole
}

func (a Actor) IsZero() bool { return a.ID == 0 }

// ActorFromContext reads the principal stored by middleware.JWTAuth.
func ActorFromContext(c *gin.Context) (Actor, error) {
	id := c.GetInt64(middleware.ContextUserID)
	if id == 0 {
		return Actor{}, ErrUnauthenticated
	}
	return Actor{ID: id, Role: UserRole(c.GetString(middleware.ContextRole))}, nil
}

// System is the principal of maintenance commands run outside a request.
var System = Actor{ID: -1, Role: RoleAdmin}
