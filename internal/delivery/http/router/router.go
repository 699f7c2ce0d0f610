// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"warden/config"
	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/router/handler"
	"warden/internal/domain/entity"
	"warden/internal/infra/metrics"
	"warden/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	ItemHandler    *handler.ItemHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
	Metrics        *metrics.Recorder `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	itemHandler    *handler.ItemHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
	metrics        *metrics.Recorder
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		itemHandler:    params.ItemHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	authenticated := r.authMiddleware.Require(usecase.AuthenticatedPolicy())
	user := r.authMiddleware.Require(usecase.RolePolicy(entity.RoleUser))
	admin := r.authMiddleware.Require(usecase.RolePolicy(entity.RoleAdmin))
	owner := r.authMiddleware.Require(usecase.OwnerPolicy())

	e.GET("/health", handler.HealthCheck)

	if r.metrics != nil && r.config.Metrics.Enabled {
		e.GET(r.config.Metrics.Path, echo.WrapHandler(r.metrics.Handler()))
	}

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
	}

	accountsGroup := e.Group("/accounts")
	{
		accountsGroup.GET("/me", r.accountHandler.GetProfile, authenticated)
		accountsGroup.PATCH("/me", r.accountHandler.UpdateProfile, authenticated)
		accountsGroup.GET("", r.accountHandler.ListAccounts, admin)
		accountsGroup.PUT("/:id/role", r.accountHandler.ChangeRole, admin)
	}

	// Ownership-scoped routes attach the guard per route so :id is resolved.
	itemsGroup := e.Group("/items")
	{
		itemsGroup.GET("", r.itemHandler.ListItems)
		itemsGroup.GET("/:id", r.itemHandler.GetItem)
		itemsGroup.POST("", r.itemHandler.CreateItem, user)
		itemsGroup.PUT("/:id", r.itemHandler.UpdateItem, owner)
		itemsGroup.DELETE("/:id", r.itemHandler.DeleteItem, owner)
	}
}
