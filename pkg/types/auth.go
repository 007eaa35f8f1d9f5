package types

import (
	"github.com/gin-gonic/gin"
)

const authPrincipleKey = "auth-principle"

// SetAuthPrinciple attaches the verified caller to the request context.
// The auth middleware is the only writer.
func SetAuthPrinciple(c *gin.Context, principal *Principal) {
	c.Set(authPrincipleKey, principal)
}

// GetAuthPrinciple resolves the verified caller from the request context.
func GetAuthPrinciple(c *gin.Context) (*Principal, bool) {
	value, ok := c.Get(authPrincipleKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}
