package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ayushmanmishra18/storefront-api/cart"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// State of a CartCache.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateMutating
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	default:
		return "empty"
	}
}

// CartAPI is the subset of Client the cache talks to.
type CartAPI interface {
	Cart(ctx context.Context) (cart.View, error)
	AddToCart(ctx context.Context, productID string, quantity int) (cart.View, error)
	CreateOrder(ctx context.Context, lines []OrderLine, total decimal.Decimal) (models.Order, error)
}

// Snapshot is a point-in-time copy of the cache.
type Snapshot struct {
	State     State
	Items     []cart.Item
	Total     decimal.Decimal
	LastError error
}

// CartCache mirrors the server cart. Every server response replaces the
// local lines wholesale; a failed call leaves the last Ready value in place.
// Operations that reach the server run one at a time.
type CartCache struct {
	api CartAPI
	ops sync.Mutex

	mu      sync.RWMutex
	state   State
	items   []cart.Item
	total   decimal.Decimal
	lastErr error
}

func NewCartCache(api CartAPI) *CartCache {
	return &CartCache{api: api}
}

func (c *CartCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		State:     c.state,
		Items:     cloneItems(c.items),
		Total:     c.total,
		LastError: c.lastErr,
	}
}

// Load fetches the cart from the server.
func (c *CartCache) Load(ctx context.Context) error {
	return c.roundTrip(StateLoading, func() (cart.View, error) {
		return c.api.Cart(ctx)
	})
}

// Add sends the increment to the server and adopts the returned cart.
func (c *CartCache) Add(ctx context.Context, productID string, quantity int) error {
	return c.roundTrip(StateMutating, func() (cart.View, error) {
		return c.api.AddToCart(ctx, productID, quantity)
	})
}

func (c *CartCache) roundTrip(transient State, call func() (cart.View, error)) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	prev := c.enter(transient)
	view, err := call()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = prev
		c.lastErr = err
		return err
	}
	c.items = cloneItems(view.Items)
	c.total = view.Total
	c.state = StateReady
	c.lastErr = nil
	return nil
}

func (c *CartCache) enter(s State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = s
	return prev
}

// Decrement removes one unit locally without calling the server. A line at
// quantity 1 is dropped.
func (c *CartCache) Decrement(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		if c.items[i].Quantity > 1 {
			c.items[i].Quantity--
		} else {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
		c.total = localTotal(c.items)
		c.lastErr = nil
		return nil
	}
	return cart.ErrLineNotFound
}

// Checkout submits the cached lines as an order. On success the cache is
// emptied locally; the server cart is left as is.
func (c *CartCache) Checkout(ctx context.Context) (models.Order, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	lines := orderLines(c.items)
	total := c.total
	prev := c.state
	c.state = StateMutating
	c.mu.Unlock()

	order, err := c.api.CreateOrder(ctx, lines, total)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = prev
		c.lastErr = err
		return models.Order{}, err
	}
	c.items = nil
	c.total = decimal.Zero
	c.state = StateReady
	c.lastErr = nil
	return order, nil
}

// orderLines names unresolved products by id and prices them at zero.
func orderLines(items []cart.Item) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, it := range items {
		line := OrderLine{
			Name:  fmt.Sprintf("Product (%s)", it.ProductID),
			Qty:   it.Quantity,
			Price: decimal.Zero,
		}
		if it.Product != nil {
			line.Name = it.Product.Name
			line.Price = it.Product.Price
		}
		lines = append(lines, line)
	}
	return lines
}

func localTotal(items []cart.Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Product != nil {
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total
}

func cloneItems(items []cart.Item) []cart.Item {
	if len(items) == 0 {
		return []cart.Item{}
	}
	out := make([]cart.Item, len(items))
	for i, it := range items {
		if it.Product != nil {
			p := *it.Product
			it.Product = &p
		}
		out[i] = it
	}
	return out
}
