package productcontroller

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var (
	ErrNameAndPriceRequired = apperr.Invalidf("Product name and price are required")
	ErrInvalidPrice         = apperr.Invalidf("Price must be greater than zero")
	ErrPricePrecision       = apperr.Invalidf("Price must have at most 2 decimal places")
	ErrInvalidStock         = apperr.Invalidf("Stock cannot be negative")
	ErrProductNotFound      = apperr.NotFoundf("Product not found")
)

// ProductInput is shared by create and update. Pointer fields tell
// "not sent" apart from zero.
type ProductInput struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Stock       *int             `json:"stock"`
}

// CreateProductRecord stores a new product owned by createdBy.
func CreateProductRecord(ctx context.Context, db *gorm.DB, createdBy string, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil || in.Price.IsZero() {
		return nil, ErrNameAndPriceRequired
	}
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if !models.FitsMoneyColumn(*in.Price) {
		return nil, ErrPricePrecision
	}

	stock := models.DefaultProductStock
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, ErrInvalidStock
		}
		stock = *in.Stock
	}

	product := models.Product{
		Name:        name,
		Price:       *in.Price,
		Description: in.Description,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		Stock:       stock,
		CreatedBy:   createdBy,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to create product", err)
	}
	return &product, nil
}

// POST /products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
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

		product, err := CreateProductRecord(c.Request.Context(), db, p.ID, input)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
