package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vendora-hq/vendora/internal/rbac"
	"github.com/vendora-hq/vendora/pkg/errors"
	"github.com/vendora-hq/vendora/pkg/metrics"
	"github.com/vendora-hq/vendora/pkg/response"
)

// RequireResource allows the request through only when the authenticated
// user may access the resource identified by key.
func RequireResource(resolver *rbac.Resolver, resourceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		decision, err := resolver.CheckResource(c.Request.Context(), userID, resourceKey)
		if err != nil {
			metrics.ResourceChecks.WithLabelValues(resourceKey, "error").Inc()
			response.Error(c, errors.Wrap(err, "permission check failed"))
			c.Abort()
			return
		}
		if !decision.Allowed {
			metrics.ResourceChecks.WithLabelValues(resourceKey, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.ResourceChecks.WithLabelValues(resourceKey, "allowed").Inc()
		c.Next()
	}
}

// RequirePage derives the page resource from the request path and checks it.
// Paths without a registered resource pass through, matching the engine's
// public-by-default posture.
func RequirePage(resolver *rbac.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		path := c.Request.URL.Path
		decision, err := resolver.CheckPageByPath(c.Request.Context(), userID, path)
		if err != nil {
			metrics.ResourceChecks.WithLabelValues(rbac.PageKeyFromPath(path), "error").Inc()
			response.Error(c, errors.Wrap(err, "permission check failed"))
			c.Abort()
			return
		}
		if !decision.Allowed {
			metrics.ResourceChecks.WithLabelValues(rbac.PageKeyFromPath(path), "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.ResourceChecks.WithLabelValues(rbac.PageKeyFromPath(path), "allowed").Inc()
		c.Next()
	}
}
