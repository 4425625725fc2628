package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/middleware"
	"github.com/vendora-hq/vendora/internal/rbac"
	"github.com/vendora-hq/vendora/pkg/errors"
	"github.com/vendora-hq/vendora/pkg/response"
)

// AccessHandler answers permission queries for the UI: per-key checks,
// effective permission sets and navigation paths.
type AccessHandler struct {
	resolver *rbac.Resolver
}

// NewAccessHandler constructs an AccessHandler.
func NewAccessHandler(db *gorm.DB) (*AccessHandler, error) {
	resolver, err := rbac.NewResolver(db)
	if err != nil {
		return nil, err
	}
	return &AccessHandler{resolver: resolver}, nil
}

// GET /api/access/check?key=<resourceKey>
func (h *AccessHandler) Check(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	key := c.Query("key")
	if key == "" {
		response.Error(c, errors.NewBadRequest("query parameter 'key' is required"))
		return
	}

	decision, err := h.resolver.CheckResource(requestContext(c), userID, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, decision)
}

// GET /api/access/my
func (h *AccessHandler) MyPermissions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	perms, err := h.resolver.EffectivePermissions(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if perms == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/access/my/pages
func (h *AccessHandler) MyPages(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	paths, err := h.resolver.AccessiblePagePaths(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, paths)
}

// GET /api/access/users/:id
func (h *AccessHandler) UserPermissions(c *gin.Context) {
	perms, err := h.resolver.EffectivePermissions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if perms == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, perms)
}
