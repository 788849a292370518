package productcontroller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
)

var ErrDeleteForbidden = apperr.Forbiddenf("Not authorized to delete this product")

// DeleteProductRecord soft-deletes the product. Cart lines that point at it
// stay and resolve to nothing from then on.
func DeleteProductRecord(ctx context.Context, db *gorm.DB, id string, p auth.Principal) error {
	product, err := findProduct(ctx, db, id)
	if err != nil {
		return err
	}
	if !p.CanActOn(product.CreatedBy) {
		return ErrDeleteForbidden
	}
	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to delete product", err)
	}
	return nil
}

// DELETE /products/:id
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := DeleteProductRecord(c.Request.Context(), db, c.Param("id"), p); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
	}
}
