package auth

import "github.com/gin-gonic/gin"

const (
	identityKey = "identity"
	isAdminKey  = "isAdmin"
)

// GetIdentity returns the authenticated tenant code or admin name, or empty string.
func GetIdentity(c *gin.Context) string {
	return c.GetString(identityKey)
}

// IsAdmin reports whether the authenticated caller is an administrator.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
