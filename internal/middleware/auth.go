package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora-hq/vendora/internal/auth"
	"github.com/vendora-hq/vendora/pkg/errors"
	"github.com/vendora-hq/vendora/pkg/response"
)

// CtxUserIDKey is the gin context key carrying the authenticated user id.
const CtxUserIDKey = "userID"

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
