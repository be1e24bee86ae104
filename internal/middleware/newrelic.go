package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicActor tags the request's New Relic transaction with the caller.
// It must run after nrgin.Middleware and Authenticate.
func NewRelicActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := ActorFrom(c); ok {
			if txn := nrgin.Transaction(c); txn != nil {
				txn.AddAttribute("actor.id", actor.UserID)
				txn.AddAttribute("actor.role", actor.Role)
			}
		}
		c.Next()
	}
}
