package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/ayushmanmishra18/storefront-api/controllers/product"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

// SetupProductRoutes registers the “/products” catalog. Reads are public.
func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB))
		products.GET("/categories", productcontroller.GetCategories(d.DB))
		products.GET("/:id", productcontroller.GetProductByID(d.DB))

		signedIn := products.Group("", middleware.ValidateToken(d.Gate))
		{
			signedIn.POST("", middleware.RequireAdmin, productcontroller.CreateProduct(d.DB))
			signedIn.PUT("/:id", middleware.RequireAdmin, productcontroller.UpdateProduct(d.DB))
			// owners may delete their own products
			signedIn.DELETE("/:id", productcontroller.DeleteProduct(d.DB))
		}
	}
}
