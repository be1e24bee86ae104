package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/auth"
	"cabbook/internal/logger"
)

const (
	actorContextKey   = "cabbook.actor"
	authRequiredKey   = "cabbook.auth_required"
	authorizationHead = "Authorization"
)

var (
	ErrIdentityRequired = errors.New("unauthorized: bearer token is required")
	ErrIdentityMismatch = errors.New("unauthorized: identity does not match token")
)

// TokenParser validates access tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Actor is the caller identity carried by a valid bearer token.
type Actor struct {
	UserID string
	Role   string
}

// Authenticate resolves the caller from an optional bearer token. Requests
// without a token pass through; an invalid token is rejected. When required
// is set, ResolveActor refuses requests that carried no token.
func Authenticate(tokens TokenParser, required bool, log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(authRequiredKey, required)

		raw := auth.BearerToken(c.GetHeader(authorizationHead))
		if raw == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			log.Debug("rejected bearer token", logger.String("path", c.FullPath()), logger.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(actorContextKey, Actor{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// ActorID returns the authenticated user id or "".
func ActorID(c *gin.Context) string {
	actor, _ := ActorFrom(c)
	return actor.UserID
}

// ResolveActor reconciles an identity named by the request (route parameter,
// query or body) with the token actor. A token actor always wins and must
// match claimed when both are present.
func ResolveActor(c *gin.Context, claimed string) (string, error) {
	if actor, ok := ActorFrom(c); ok {
		if claimed != "" && claimed != actor.UserID {
			return "", ErrIdentityMismatch
		}
		return actor.UserID, nil
	}
	if c.GetBool(authRequiredKey) {
		return "", ErrIdentityRequired
	}
	return claimed, nil
}
