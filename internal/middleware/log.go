package middleware

import (
	"bytes"
	"io"

	"github.com/JosephCatalano/ledgerleaf/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// credentialPaths lists routes whose request bodies carry passwords. Their
// audit rows record method and path only; the body must never reach storage.
var credentialPaths = map[string]bool{
	"/api/auth/register":    true,
	"/api/auth/login":       true,
	"/api/profile/password": true,
}

// AuditMiddleware persists one AuditLog row per authenticated request.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}

		// read the request body so it can be logged, then restore it
		var bodyBytes []byte
		if c.Request.Body != nil && !credentialPaths[c.Request.URL.Path] {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		// only log operations of logged-in users
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
