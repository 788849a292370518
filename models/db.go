package models

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL with the given DSN or URL.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Admin{},
		&Product{},
		&Cart{},
		&CartLine{},
		&Order{},
		&OrderItem{},
	)
}

type DashboardCounts struct {
	ProductCount int64 `json:"productCount"`
	OrderCount   int64 `json:"orderCount"`
	UserCount    int64 `json:"userCount"`
}

func CountDashboard(db *gorm.DB) (DashboardCounts, error) {
	var counts DashboardCounts
	if err := db.Model(&Product{}).Count(&counts.ProductCount).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&Order{}).Count(&counts.OrderCount).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&User{}).Count(&counts.UserCount).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
