package paymentControllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
)

var ErrInvalidAmount = apperr.Invalidf("Amount must be greater than zero")

type PaymentRequest struct {
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

type PaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PaymentID string `json:"paymentId"`
}

// POST /payment accepts every well-formed request. There is no gateway and
// orders are left untouched.
func CreatePayment(db *gorm.DB, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		if !req.Amount.IsPositive() {
			_ = c.Error(ErrInvalidAmount)
			return
		}
		if req.OrderID != "" {
			if _, err := orderControllers.GetOrder(c.Request.Context(), db, req.OrderID, p); err != nil {
				_ = c.Error(err)
				return
			}
		}

		c.JSON(http.StatusOK, PaymentResponse{
			Success:   true,
			Message:   "Payment processed successfully (mock)",
			PaymentID: fmt.Sprintf("mock_%d", now().UnixMilli()),
		})
	}
}
