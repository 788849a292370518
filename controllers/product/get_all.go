package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// GET /products?createdBy=<id>
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		createdBy := strings.TrimSpace(c.Query("createdBy"))

		products, err := models.ListProducts(db.WithContext(c.Request.Context()), createdBy)
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch products", err))
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
