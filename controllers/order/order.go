package orderControllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var (
	ErrNoOrderItems   = apperr.Invalidf("No order items")
	ErrInvalidItem    = apperr.Invalidf("Each order item needs a name, a positive qty and a non-negative price")
	ErrNegativeTotal  = apperr.Invalidf("Total price cannot be negative")
	ErrPricePrecision = apperr.Invalidf("Prices must have at most 2 decimal places")
	ErrOrderNotFound  = apperr.NotFoundf("Order not found")
	ErrOrderForbidden = apperr.Forbiddenf("Not authorized to view this order")
)

// -------- Request Structs --------

type OrderItemInput struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	OrderItems []OrderItemInput `json:"orderItems"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
}

// -------- Core Logic --------

// CreateOrder stores the submitted items and total as they are. Nothing is
// re-read from the cart or the catalog.
func CreateOrder(ctx context.Context, db *gorm.DB, userID string, items []OrderItemInput, totalPrice decimal.Decimal) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoOrderItems
	}
	if totalPrice.IsNegative() {
		return nil, ErrNegativeTotal
	}
	if !models.FitsMoneyColumn(totalPrice) {
		return nil, ErrPricePrecision
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.Qty <= 0 || item.Price.IsNegative() {
			return nil, ErrInvalidItem
		}
		if !models.FitsMoneyColumn(item.Price) {
			return nil, ErrPricePrecision
		}
		orderItems = append(orderItems, models.OrderItem{
			Name:  name,
			Qty:   item.Qty,
			Price: item.Price,
		})
	}

	order := models.Order{
		UserID:     userID,
		Items:      orderItems,
		TotalPrice: totalPrice,
		IsPaid:     false,
	}
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to create order", err)
	}
	return &order, nil
}

// GetOrder returns the order if p owns it or is an admin.
func GetOrder(ctx context.Context, db *gorm.DB, orderID string, p auth.Principal) (*models.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := models.FindOrderByID(db.WithContext(ctx), orderID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch order", err)
	}
	if !p.CanActOn(order.UserID) {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

func ListMyOrders(ctx context.Context, db *gorm.DB, userID string) ([]models.Order, error) {
	orders, err := models.ListOrdersByUser(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch orders", err)
	}
	return orders, nil
}

// -------- Handlers --------

// POST /orders
func CreateOrderHandler(db *gorm.DB, feed *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}

		order, err := CreateOrder(c.Request.Context(), db, p.ID, req.OrderItems, req.TotalPrice)
		if err != nil {
			_ = c.Error(err)
			return
		}

		feed.Broadcast(*order)
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/myorders
func ListMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		orders, err := ListMyOrders(c.Request.Context(), db, p.ID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		order, err := GetOrder(c.Request.Context(), db, c.Param("id"), p)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := models.ListAllOrders(db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch orders", err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
