package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin accounts are verified from the moment they are created.
type Admin struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsVerified   bool      `gorm:"not null;default:true" json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *Admin) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = NormalizeEmail(a.Email)
	a.IsVerified = true
	return nil
}

func FindAdminByID(db *gorm.DB, id string) (*Admin, error) {
	var admin Admin
	if err := db.First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func FindAdminByEmail(db *gorm.DB, email string) (*Admin, error) {
	var admin Admin
	if err := db.First(&admin, "email = ?", NormalizeEmail(email)).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
