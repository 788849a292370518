package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// GET /products/categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := models.ListCategories(db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch categories", err))
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}
