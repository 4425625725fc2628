package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/database/testutil"
	"github.com/vendora-hq/vendora/internal/models"
	"github.com/vendora-hq/vendora/internal/rbac"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupGuardFixture(t *testing.T) (*gorm.DB, *rbac.Resolver) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	resolver, err := rbac.NewResolver(db)
	require.NoError(t, err)
	return db, resolver
}

func seedGuardUser(t *testing.T, db *gorm.DB, username string, super bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed",
		IsSuperUser: super,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedGuardedResource(t *testing.T, db *gorm.DB, key, path string) (*models.ProtectableResource, *models.PermissionGroup) {
	t.Helper()

	resource := &models.ProtectableResource{
		ResourceKey:   key,
		Type:          models.ResourceTypePage,
		Name:          key,
		IsActive:      true,
		RequiredLevel: 1,
	}
	if path != "" {
		resource.Path = &path
	}
	require.NoError(t, db.Create(resource).Error)

	group := &models.PermissionGroup{Name: key + "-group"}
	require.NoError(t, db.Create(group).Error)
	require.NoError(t, db.Create(&models.ResourcePermission{
		ProtectableResourceID: resource.ID,
		PermissionGroupID:     group.ID,
	}).Error)

	return resource, group
}

func identityStub(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(CtxUserIDKey, userID)
		}
		c.Next()
	}
}

func performRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireResourceDeniesOutsider(t *testing.T) {
	db, resolver := setupGuardFixture(t)
	outsider := seedGuardUser(t, db, "outsider", false)
	seedGuardedResource(t, db, "page:guarded", "/guarded")

	router := gin.New()
	router.GET("/guarded",
		identityStub(outsider.ID),
		RequireResource(resolver, "page:guarded"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := performRequest(router, "/guarded")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireResourceAllowsMember(t *testing.T) {
	db, resolver := setupGuardFixture(t)
	member := seedGuardUser(t, db, "member", false)
	_, group := seedGuardedResource(t, db, "page:guarded", "/guarded")
	require.NoError(t, db.Create(&models.UserGroup{
		UserID:            member.ID,
		PermissionGroupID: group.ID,
	}).Error)

	router := gin.New()
	router.GET("/guarded",
		identityStub(member.ID),
		RequireResource(resolver, "page:guarded"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := performRequest(router, "/guarded")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireResourceAllowsSuperUser(t *testing.T) {
	db, resolver := setupGuardFixture(t)
	super := seedGuardUser(t, db, "root", true)
	seedGuardedResource(t, db, "page:guarded", "/guarded")

	router := gin.New()
	router.GET("/guarded",
		identityStub(super.ID),
		RequireResource(resolver, "page:guarded"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := performRequest(router, "/guarded")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireResourceRejectsMissingIdentity(t *testing.T) {
	_, resolver := setupGuardFixture(t)

	router := gin.New()
	router.GET("/guarded",
		identityStub(""),
		RequireResource(resolver, "page:guarded"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := performRequest(router, "/guarded")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePageUsesRequestPath(t *testing.T) {
	db, resolver := setupGuardFixture(t)
	outsider := seedGuardUser(t, db, "outsider", false)
	seedGuardedResource(t, db, "page:reports", "/reports")

	router := gin.New()
	router.Use(identityStub(outsider.ID), RequirePage(resolver))
	router.GET("/reports", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/unprotected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(router, "/reports")
	require.Equal(t, http.StatusForbidden, w.Code)

	// Paths with no registered page resource pass through.
	w = performRequest(router, "/unprotected")
	require.Equal(t, http.StatusOK, w.Code)
}
