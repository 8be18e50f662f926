package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
)

// SharedSecretMiddleware requires the x-halo-auth header to equal secret exactly.
// An empty secret disables the check.
func SharedSecretMiddleware(log *logger.Logger, secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	expected := []byte(secret)
	return func(c *gin.Context) {
		provided := c.GetHeader(constant.HeaderCallerAuth)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			if log != nil {
				log.Warn("Rejected caller with missing or invalid shared secret",
					"path", c.Request.URL.Path,
					"header_present", provided != "",
					"client_ip", c.ClientIP(),
				)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}
