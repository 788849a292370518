// Package cart implements the per-user shopping cart.
//
// Every operation returns the whole cart resolved against the current
// catalog, so callers replace their copy instead of patching it. Mutations
// for one user run one at a time.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

var (
	ErrInvalidProductID = apperr.Invalidf("Invalid product id")
	ErrInvalidQuantity  = apperr.Invalidf("Quantity must be greater than zero")
	ErrLineNotFound     = apperr.NotFoundf("Product not found in cart")
)

// Item is a cart line joined with its product. Product is nil when the
// product no longer exists; such lines count zero towards the total.
type Item struct {
	Product   *models.Product `json:"product"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
}

// View is the cart as returned to clients.
type View struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type Aggregate struct {
	db    *gorm.DB
	locks *keyedMutex
	now   func() time.Time
}

func New(db *gorm.DB) *Aggregate {
	return &Aggregate{db: db, locks: newKeyedMutex(), now: time.Now}
}

// Get returns the user's cart, creating an empty one on first access.
func (a *Aggregate) Get(ctx context.Context, userID string) (View, error) {
	unlock := a.locks.Lock(userID)
	defer unlock()

	return a.view(a.db.WithContext(ctx), userID)
}

// AddLine adds quantity of productID, merging into an existing line.
// Stock is not checked.
func (a *Aggregate) AddLine(ctx context.Context, userID, productID string, quantity int) (View, error) {
	productID, err := parseProductID(productID)
	if err != nil {
		return View{}, err
	}
	if quantity <= 0 {
		return View{}, ErrInvalidQuantity
	}

	unlock := a.locks.Lock(userID)
	defer unlock()

	db := a.db.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		cart, err := loadOrCreate(tx, userID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.CartLine{}).
			Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		return tx.Create(&models.CartLine{
			CartID:    cart.CartID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   a.now(),
		}).Error
	})
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "Failed to add item to cart", err)
	}
	return a.view(db, userID)
}

// DecrementLine lowers a line by one and drops it when it reaches zero.
func (a *Aggregate) DecrementLine(ctx context.Context, userID, productID string) (View, error) {
	productID, err := parseProductID(productID)
	if err != nil {
		return View{}, err
	}

	unlock := a.locks.Lock(userID)
	defer unlock()

	db := a.db.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		cart, err := loadOrCreate(tx, userID)
		if err != nil {
			return err
		}

		var line models.CartLine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
			First(&line).Error; err != nil {
			if models.IsNotFound(err) {
				return ErrLineNotFound
			}
			return err
		}

		if line.Quantity > 1 {
			return tx.Model(&line).Update("quantity", gorm.Expr("quantity - 1")).Error
		}
		return tx.Delete(&line).Error
	})
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return View{}, err
		}
		return View{}, apperr.Wrap(apperr.Internal, "Failed to remove item from cart", err)
	}
	return a.view(db, userID)
}

// Clear removes every line. Clearing an empty cart is a no-op.
func (a *Aggregate) Clear(ctx context.Context, userID string) (View, error) {
	unlock := a.locks.Lock(userID)
	defer unlock()

	db := a.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := loadOrCreate(tx, userID)
		if err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{}).Error
	})
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "Failed to clear cart", err)
	}
	return a.view(db, userID)
}

func parseProductID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidProductID
	}
	return parsed.String(), nil
}

func loadOrCreate(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// view loads the cart lines in insertion order and prices them.
func (a *Aggregate) view(db *gorm.DB, userID string) (View, error) {
	cart, err := loadOrCreate(db, userID)
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "Failed to fetch cart", err)
	}

	var lines []models.CartLine
	if err := db.Where("cart_id = ?", cart.CartID).Order("id ASC").Find(&lines).Error; err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "Failed to fetch cart", err)
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := models.FindProductsByIDs(db, ids)
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "Failed to fetch cart products", err)
	}

	return price(lines, products), nil
}

// price joins lines with products; unresolved lines contribute zero.
func price(lines []models.CartLine, products map[string]models.Product) View {
	v := View{Items: make([]Item, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		item := Item{ProductID: l.ProductID, Quantity: l.Quantity}
		if p, ok := products[l.ProductID]; ok {
			item.Product = &p
			v.Total = v.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		v.Items = append(v.Items, item)
	}
	return v
}
