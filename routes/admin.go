package routes

import (
	"github.com/gin-gonic/gin"

	adminController "github.com/ayushmanmishra18/storefront-api/controllers/admin"
	cartControllers "github.com/ayushmanmishra18/storefront-api/controllers/cart"
	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
	productcontroller "github.com/ayushmanmishra18/storefront-api/controllers/product"
	userControllers "github.com/ayushmanmishra18/storefront-api/controllers/user"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires an admin token.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	r.POST("/admin/first-admin", adminController.CreateFirstAdmin)

	adminGroup := r.Group("/admin", middleware.ValidateToken(d.Gate), middleware.RequireAdmin)
	{
		adminGroup.GET("/dashboard", adminController.GetDashboard(d.DB))

		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(d.DB))
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB))
		adminGroup.GET("/users/:id", userControllers.GetUser(d.DB))
		adminGroup.GET("/users/:id/cart", cartControllers.GetAdminUserCart(d.DB, d.Carts))

		// ─────────── Orders ───────────
		adminGroup.GET("/orders", orderControllers.GetAllOrdersHandler(d.DB))
		adminGroup.GET("/orders/ws", orderControllers.OrderWebSocketHandler(d.Feed))

		// ─────────── Product spreadsheets ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(d.DB))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(d.DB))
		}
	}
}
