package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultProductImage = "https://via.placeholder.com/150"
	DefaultProductStock = 100
)

// MoneyPlaces is the scale of every numeric(12,2) money column.
const MoneyPlaces = 2

var maxMoney = decimal.New(1, 12-MoneyPlaces)

// FitsMoneyColumn reports whether d is stored without rounding or overflow.
func FitsMoneyColumn(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces)) && d.Abs().LessThan(maxMoney)
}

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `gorm:"index" json:"category"`
	Stock       int             `gorm:"not null" json:"stock"`
	CreatedBy   string          `gorm:"index;type:varchar(36)" json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	return nil
}

func FindProductByID(db *gorm.DB, id string) (*Product, error) {
	var product Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs loads the live (not deleted) products among ids, keyed by id.
func FindProductsByIDs(db *gorm.DB, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ListProducts returns products oldest first, optionally filtered by creator.
func ListProducts(db *gorm.DB, createdBy string) ([]Product, error) {
	query := db.Model(&Product{})
	if createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}
	products := []Product{}
	if err := query.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories returns the distinct non-empty categories in use.
func ListCategories(db *gorm.DB) ([]string, error) {
	categories := []string{}
	if err := db.Model(&Product{}).
		Where("category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
