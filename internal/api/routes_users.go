package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/handlers"
	"github.com/vendora-hq/vendora/internal/middleware"
	"github.com/vendora-hq/vendora/internal/rbac"
	"github.com/vendora-hq/vendora/internal/services"
)

const userAdminResourceKey = "page:settings-users"

func registerUserRoutes(api *gin.RouterGroup, db *gorm.DB, audit *services.AuditService, resolver *rbac.Resolver) error {
	userHandler, err := handlers.NewUserHandler(db, audit)
	if err != nil {
		return err
	}

	requireUserAdmin := middleware.RequireResource(resolver, userAdminResourceKey)

	users := api.Group("/users", requireUserAdmin)
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id/super-user", userHandler.SetSuperUser)
		users.PUT("/:id/active", userHandler.SetActive)
		users.GET("/:id/can-demote", userHandler.CanDemote)
	}

	return nil
}
