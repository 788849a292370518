package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/ayushmanmishra18/storefront-api/controllers/cart"
	paymentControllers "github.com/ayushmanmishra18/storefront-api/controllers/payment"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

// SetupUserRoutes registers the cart and payment endpoints. Requires a user token.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/cart", middleware.ValidateToken(d.Gate), middleware.RequireUser)
	{
		cartGroup.GET("", cartControllers.GetUserCart(d.Carts))                     // GET /cart
		cartGroup.POST("/add", cartControllers.AddCartItem(d.Carts))                // POST /cart/add
		cartGroup.DELETE("/:productId", cartControllers.DecrementCartItem(d.Carts)) // DELETE /cart/:productId
		cartGroup.DELETE("", cartControllers.ClearUserCart(d.Carts))                // DELETE /cart
	}

	// ──────────────── Payment (mock) ────────────────
	r.POST("/payment", middleware.ValidateToken(d.Gate), middleware.RequireUser,
		paymentControllers.CreatePayment(d.DB, d.Now))
}
