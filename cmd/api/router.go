package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"repairhub-backend/internal/shared/middleware"
	"repairhub-backend/internal/shared/response"
	"repairhub-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Route not found")
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c.DB, c.Cache, c.Config.App.Version))

		setupPricingRoutes(v1, c)
		setupCatalogRoutes(v1, c)
		setupAdminDiscountRoutes(v1, c)
	}

	return router
}

// ========================================
// PRICING ROUTES (public)
// ========================================
func setupPricingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/pricing/quote", c.DiscountPublicHandler.Quote)
	v1.GET("/discounts/code/:code", c.DiscountPublicHandler.GetByCode)
}

// ========================================
// CATALOG ROUTES (public)
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/services/:serviceId/models/:modelId", c.CatalogHandler.GetServiceDetail)
}

// ========================================
// ADMIN DISCOUNT ROUTES
// ========================================
func setupAdminDiscountRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/discounts")
	admin.Use(
		middleware.AuthMiddleware(c.Config.JWT.Secret),
		middleware.AdminMiddleware(),
	)
	{
		admin.POST("", c.DiscountAdminHandler.CreateDiscount)
		admin.GET("", c.DiscountAdminHandler.ListDiscounts)

		// static paths before :id
		admin.GET("/export", c.DiscountAdminHandler.ExportDiscounts)
		admin.POST("/export", c.DiscountAdminHandler.RequestExportReport)
		admin.GET("/export/:taskId", c.DiscountAdminHandler.GetExportReport)
		admin.POST("/deactivate-stale", c.DiscountAdminHandler.DeactivateStale)

		admin.GET("/:id", c.DiscountAdminHandler.GetDiscount)
		admin.PUT("/:id", c.DiscountAdminHandler.UpdateDiscount)
		admin.PATCH("/:id/status", c.DiscountAdminHandler.UpdateStatus)
		admin.DELETE("/:id", c.DiscountAdminHandler.DeleteDiscount)
	}
}
