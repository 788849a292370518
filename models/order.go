package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a receipt. It copies names and prices at purchase time and is
// never updated after it is created.
type Order struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string          `gorm:"index;type:varchar(36);not null" json:"userId"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	IsPaid     bool            `gorm:"not null;default:false" json:"isPaid"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey" json:"-"`
	OrderID  string          `gorm:"index;type:varchar(36);not null" json:"-"`
	Position int             `gorm:"not null" json:"-"`
	Name     string          `gorm:"not null" json:"name"`
	Qty      int             `gorm:"not null" json:"qty"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for i := range o.Items {
		o.Items[i].Position = i
	}
	return nil
}

// preloadItems keeps line items in submission order.
func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

func FindOrderByID(db *gorm.DB, id string) (*Order, error) {
	var order Order
	if err := preloadItems(db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser returns a user's orders in insertion order.
func ListOrdersByUser(db *gorm.DB, userID string) ([]Order, error) {
	orders := []Order{}
	if err := preloadItems(db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func ListAllOrders(db *gorm.DB) ([]Order, error) {
	orders := []Order{}
	if err := preloadItems(db).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
