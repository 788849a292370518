// Package client is a typed HTTP client for the storefront API and a local
// mirror of the signed-in user's cart.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/cart"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// Session is returned by the login and verification endpoints.
type Session struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

// OrderLine is one submitted order item.
type OrderLine struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// NewProduct holds the fields an admin sends when creating a product.
type NewProduct struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Register creates an unverified user; the OTP arrives by email.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil)
}

// VerifyOTP verifies the user and stores the returned token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (Session, error) {
	return c.session(ctx, "/auth/verifyOTP", map[string]string{"email": email, "otp": otp})
}

func (c *Client) RegisterAdmin(ctx context.Context, name, email, password string) (Session, error) {
	return c.session(ctx, "/auth/admin/register", map[string]string{"name": name, "email": email, "password": password})
}

// Login stores the returned token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.session(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) session(ctx context.Context, path string, body any) (Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, path, body, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodPost, "/products", p, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// Cart fetches the authoritative cart.
func (c *Client) Cart(ctx context.Context) (cart.View, error) {
	var v cart.View
	err := c.do(ctx, http.MethodGet, "/cart", nil, &v)
	return v, err
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (cart.View, error) {
	var v cart.View
	body := map[string]any{"productId": productID, "quantity": quantity}
	err := c.do(ctx, http.MethodPost, "/cart/add", body, &v)
	return v, err
}

// RemoveFromCart removes one unit of productID on the server.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (cart.View, error) {
	var v cart.View
	err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, &v)
	return v, err
}

func (c *Client) ClearCart(ctx context.Context) (cart.View, error) {
	var v cart.View
	err := c.do(ctx, http.MethodDelete, "/cart", nil, &v)
	return v, err
}

func (c *Client) CreateOrder(ctx context.Context, lines []OrderLine, total decimal.Decimal) (models.Order, error) {
	var o models.Order
	body := map[string]any{"orderItems": lines, "totalPrice": total}
	err := c.do(ctx, http.MethodPost, "/orders", body, &o)
	return o, err
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.do(ctx, http.MethodGet, "/orders/myorders", nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &o)
	return o, err
}

// do sends body as JSON and decodes a 2xx response into out. Error responses
// come back as *apperr.Error carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func responseError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		payload.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return apperr.New(kindForStatus(resp.StatusCode), payload.Message)
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusUnauthorized:
		return apperr.Unauthenticated
	case http.StatusForbidden:
		return apperr.Forbidden
	case http.StatusNotFound:
		return apperr.NotFound
	case http.StatusBadRequest:
		return apperr.InvalidArgument
	default:
		return apperr.Internal
	}
}
