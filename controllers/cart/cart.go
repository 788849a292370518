package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/cart"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// Quantity is validated by the aggregate so a zero value gets the domain message.
type CartItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// respond writes the whole recomputed cart or records the error.
func respond(c *gin.Context, view cart.View, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /cart
func GetUserCart(carts *cart.Aggregate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		view, err := carts.Get(c.Request.Context(), p.ID)
		respond(c, view, err)
	}
}

// POST /cart/add
func AddCartItem(carts *cart.Aggregate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		view, err := carts.AddLine(c.Request.Context(), p.ID, input.ProductID, input.Quantity)
		respond(c, view, err)
	}
}

// DELETE /cart/:productId removes one unit.
func DecrementCartItem(carts *cart.Aggregate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		view, err := carts.DecrementLine(c.Request.Context(), p.ID, c.Param("productId"))
		respond(c, view, err)
	}
}

// DELETE /cart
func ClearUserCart(carts *cart.Aggregate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		view, err := carts.Clear(c.Request.Context(), p.ID)
		respond(c, view, err)
	}
}

// GET /admin/users/:id/cart. Only existing users get a cart created.
func GetAdminUserCart(db *gorm.DB, carts *cart.Aggregate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			_ = c.Error(auth.ErrUserNotFound)
			return
		}
		user, err := models.FindUserByID(db.WithContext(ctx), id)
		if err != nil {
			if models.IsNotFound(err) {
				_ = c.Error(auth.ErrUserNotFound)
				return
			}
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch user", err))
			return
		}
		view, err := carts.Get(ctx, user.ID)
		respond(c, view, err)
	}
}
