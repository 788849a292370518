package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders", middleware.ValidateToken(d.Gate))
	{
		// Create a new order from the client's cart snapshot
		orders.POST("", middleware.RequireUser, orderControllers.CreateOrderHandler(d.DB, d.Feed))

		// Orders of the signed-in user
		orders.GET("/myorders", middleware.RequireUser, orderControllers.ListMyOrdersHandler(d.DB))

		// Owner or admin
		orders.GET("/:id", orderControllers.GetOrderHandler(d.DB))
	}
}
