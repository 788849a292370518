package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"-"`
	UserID    string     `gorm:"uniqueIndex;type:varchar(36);not null" json:"userId"` // Enforces ONE cart per user
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is one product reference in a cart. The product may have been
// deleted since; lines are never rewritten when that happens.
type CartLine struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID string    `gorm:"uniqueIndex:idx_cart_product;type:varchar(36);not null" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}
