package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/auth"
	"github.com/vendora-hq/vendora/internal/handlers"
	"github.com/vendora-hq/vendora/internal/middleware"
	"github.com/vendora-hq/vendora/internal/rbac"
	"github.com/vendora-hq/vendora/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// access-control routes. The vendor/contract CRUD modules mount their own
// routers under /api alongside these.
func NewRouter(db *gorm.DB, jwt *auth.JWTService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	resolver, err := rbac.NewResolver(db)
	if err != nil {
		return nil, err
	}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	if err := registerAccessRoutes(api, db, audit, resolver); err != nil {
		return nil, err
	}
	if err := registerUserRoutes(api, db, audit, resolver); err != nil {
		return nil, err
	}

	return r, nil
}
