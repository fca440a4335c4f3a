package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserID is the gin context key under which Middleware stores the
// verified caller UID.
const CtxUserID = "user_uid"

// UserID extracts the verified caller UID from the gin context. Empty means
// unauthenticated.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
