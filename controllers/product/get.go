package productcontroller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// findProduct maps a malformed id to NotFound, like a missing row.
func findProduct(ctx context.Context, db *gorm.DB, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}
	product, err := models.FindProductByID(db.WithContext(ctx), id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to retrieve product", err)
	}
	return product, nil
}

// GetProductByID returns a single product.
// URL param: /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := findProduct(c.Request.Context(), db, c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
