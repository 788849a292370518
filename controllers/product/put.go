package productcontroller

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var ErrUpdateForbidden = apperr.Forbiddenf("Not authorized to update this product")

// UpdateProductRecord applies the non-zero fields of in. Only admins and
// the product's creator may update it.
func UpdateProductRecord(ctx context.Context, db *gorm.DB, id string, p auth.Principal, in ProductInput) (*models.Product, error) {
	product, err := findProduct(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if !p.CanActOn(product.CreatedBy) {
		return nil, ErrUpdateForbidden
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		product.Name = name
	}
	if in.Price != nil && !in.Price.IsZero() {
		if !in.Price.IsPositive() {
			return nil, ErrInvalidPrice
		}
		if !models.FitsMoneyColumn(*in.Price) {
			return nil, ErrPricePrecision
		}
		product.Price = *in.Price
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if image := strings.TrimSpace(in.Image); image != "" {
		product.Image = image
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		product.Category = category
	}
	if in.Stock != nil && *in.Stock != 0 {
		if *in.Stock < 0 {
			return nil, ErrInvalidStock
		}
		product.Stock = *in.Stock
	}

	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to update product", err)
	}
	return product, nil
}

// PUT /products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}

		product, err := UpdateProductRecord(c.Request.Context(), db, c.Param("id"), p, input)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
