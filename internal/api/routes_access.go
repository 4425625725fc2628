package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/handlers"
	"github.com/vendora-hq/vendora/internal/middleware"
	"github.com/vendora-hq/vendora/internal/rbac"
	"github.com/vendora-hq/vendora/internal/services"
)

func registerAccessRoutes(api *gin.RouterGroup, db *gorm.DB, audit *services.AuditService, resolver *rbac.Resolver) error {
	groupHandler, err := handlers.NewGroupHandler(db, audit)
	if err != nil {
		return err
	}
	resourceHandler, err := handlers.NewResourceHandler(db, audit)
	if err != nil {
		return err
	}
	accessHandler, err := handlers.NewAccessHandler(db)
	if err != nil {
		return err
	}

	requireAdmin := middleware.RequireResource(resolver, rbac.AccessControlResourceKey)

	access := api.Group("/access")
	{
		// Self-service queries, available to every authenticated user.
		access.GET("/check", accessHandler.Check)
		access.GET("/my", accessHandler.MyPermissions)
		access.GET("/my/pages", accessHandler.MyPages)

		// Administration, gated on the access-control screen grant.
		access.GET("/users/:id", requireAdmin, accessHandler.UserPermissions)

		access.GET("/groups", requireAdmin, groupHandler.List)
		access.POST("/groups", requireAdmin, groupHandler.Create)
		access.PATCH("/groups/:id", requireAdmin, groupHandler.Update)
		access.DELETE("/groups/:id", requireAdmin, groupHandler.Delete)

		access.PUT("/users/:id/groups", requireAdmin, groupHandler.SetUserGroups)
		access.POST("/users/:id/groups", requireAdmin, groupHandler.AddUserToGroup)
		access.DELETE("/users/:id/groups/:groupId", requireAdmin, groupHandler.RemoveUserFromGroup)

		access.GET("/resources", requireAdmin, resourceHandler.List)
		access.PATCH("/resources/:id", requireAdmin, resourceHandler.Update)
		access.PUT("/resources/:id/groups", requireAdmin, resourceHandler.SetGroups)
		access.POST("/resources/:id/groups", requireAdmin, resourceHandler.AddGroup)
		access.DELETE("/resources/:id/groups/:groupId", requireAdmin, resourceHandler.RemoveGroup)
	}

	return nil
}
