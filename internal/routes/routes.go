package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hostel-catalog/internal/handlers"
)

const productsBasePath = "/api/v1/products"

// Operational agrupa los endpoints que no son del catálogo.
type Operational struct {
	Health  http.Handler
	Metrics http.Handler
}

func RegisterRoutes(router *gin.Engine, h *handlers.ProductHandler, ops Operational) {
	products := router.Group(productsBasePath)
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/get/count", h.CountProducts)
		products.GET("/get/featured/:count", h.FeaturedProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	if ops.Health != nil {
		router.GET("/healthz", gin.WrapH(ops.Health))
	}
	if ops.Metrics != nil {
		router.GET("/metrics", gin.WrapH(ops.Metrics))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
