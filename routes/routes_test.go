package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/cart"
	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
	"github.com/ayushmanmishra18/storefront-api/internal/testdb"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type inboxMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *inboxMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *inboxMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mailer *inboxMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Open(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	issuer := auth.NewIssuer("test-secret", auth.DefaultTokenTTL)
	mailer := &inboxMailer{codes: map[string]string{}}

	r := gin.New()
	SetupRoutes(r, Deps{
		DB:       db,
		Accounts: auth.NewAccounts(db, issuer, auth.NewDBOTPStore(db), mailer),
		Gate:     auth.NewGate(db, issuer),
		Carts:    cart.New(db),
		Feed:     orderControllers.NewHub(logger),
		Metrics:  middleware.NewMetrics(prometheus.NewRegistry()),
		Logger:   logger,
	})
	return &testServer{t: t, router: r, mailer: mailer}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, v any) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) registerUser(name, email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"name": name, "email": email, "password": "pw"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/verifyOTP", "", gin.H{"email": email, "otp": s.mailer.code(email)})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	s.decode(w, &out)
	return out.Token
}

func (s *testServer) registerAdmin(name, email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/admin/register", "", gin.H{"name": name, "email": email, "password": "pw"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	s.decode(w, &out)
	return out.Token
}

func TestShoeScenario(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin("Root", "root@x.com")

	w := s.do(http.MethodPost, "/products", adminToken, gin.H{"name": "Shoe", "price": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var shoe struct {
		ID string `json:"id"`
	}
	s.decode(w, &shoe)

	userToken := s.registerUser("A", "a@x.com")

	w = s.do(http.MethodPost, "/cart/add", userToken, gin.H{"productId": shoe.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cartView struct {
		Items []struct {
			Product struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"product"`
			Quantity int `json:"quantity"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	s.decode(w, &cartView)
	require.Len(t, cartView.Items, 1)
	assert.Equal(t, 100.0, cartView.Total)

	// checkout submits the cart view as order items
	items := []gin.H{}
	for _, it := range cartView.Items {
		items = append(items, gin.H{"name": it.Product.Name, "qty": it.Quantity, "price": it.Product.Price})
	}
	w = s.do(http.MethodPost, "/orders", userToken, gin.H{"orderItems": items, "totalPrice": cartView.Total})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		ID         string  `json:"id"`
		TotalPrice float64 `json:"totalPrice"`
		IsPaid     bool    `json:"isPaid"`
		OrderItems []struct {
			Name  string  `json:"name"`
			Qty   int     `json:"qty"`
			Price float64 `json:"price"`
		} `json:"orderItems"`
	}
	s.decode(w, &order)
	assert.Equal(t, 100.0, order.TotalPrice)
	assert.False(t, order.IsPaid)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "Shoe", order.OrderItems[0].Name)
	assert.Equal(t, 2, order.OrderItems[0].Qty)
	assert.Equal(t, 50.0, order.OrderItems[0].Price)

	w = s.do(http.MethodGet, "/orders/myorders", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), order.ID)

	w = s.do(http.MethodGet, "/orders/"+order.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	strangerToken := s.registerUser("B", "b@x.com")
	w = s.do(http.MethodGet, "/orders/"+order.ID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"productCount":1,"orderCount":1,"userCount":2}`, w.Body.String())

	w = s.do(http.MethodPost, "/payment", userToken, gin.H{"orderId": order.ID, "amount": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"paymentId":"mock_`)

	w = s.do(http.MethodPost, "/payment", strangerToken, gin.H{"orderId": order.ID, "amount": 100})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin("Root", "root@x.com")
	userToken := s.registerUser("A", "a@x.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"cart without token", http.MethodGet, "/cart", "", http.StatusUnauthorized},
		{"cart with garbage token", http.MethodGet, "/cart", "garbage", http.StatusUnauthorized},
		{"cart as admin", http.MethodGet, "/cart", adminToken, http.StatusForbidden},
		{"cart as user", http.MethodGet, "/cart", userToken, http.StatusOK},
		{"dashboard as user", http.MethodGet, "/admin/dashboard", userToken, http.StatusForbidden},
		{"dashboard as admin", http.MethodGet, "/admin/dashboard", adminToken, http.StatusOK},
		{"create product as user", http.MethodPost, "/products", userToken, http.StatusForbidden},
		{"list users as admin", http.MethodGet, "/admin/users", adminToken, http.StatusOK},
		{"list admins as admin", http.MethodGet, "/admin/admins", adminToken, http.StatusOK},
		{"all orders as admin", http.MethodGet, "/admin/orders", adminToken, http.StatusOK},
		{"profile as user", http.MethodGet, "/auth/profile", userToken, http.StatusOK},
		{"profile without token", http.MethodGet, "/auth/profile", "", http.StatusUnauthorized},
		{"first admin", http.MethodPost, "/admin/first-admin", "", http.StatusBadRequest},
		{"products are public", http.MethodGet, "/products", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/admin/dashboard"`)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"name": "A", "email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"email must be a valid email"}`, w.Body.String())

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"name": "A", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"User registered successfully. OTP sent to email.","otpSent":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Please verify your email before logging in"}`, w.Body.String())

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"name": "A", "email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	code := s.mailer.code("a@x.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	w = s.do(http.MethodPost, "/auth/verifyOTP", "", gin.H{"email": "a@x.com", "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/verifyOTP", "", gin.H{"email": "ghost@x.com", "otp": code})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/auth/verifyOTP", "", gin.H{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]any
	s.decode(w, &login)
	assert.NotContains(t, login, "isAdmin")
	token := login["token"].(string)

	w = s.do(http.MethodPut, "/auth/update-password", token, gin.H{"currentPassword": "pw", "newPassword": "pw2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAdmin":false`)
	assert.NotContains(t, w.Body.String(), "password")

	adminToken := s.registerAdmin("Root", "root@x.com")
	w = s.do(http.MethodGet, "/auth/profile", adminToken, nil)
	assert.Contains(t, w.Body.String(), `"isAdmin":true`)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "root@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAdmin":true`)
}

func TestMetricsKey(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := gin.New()
	SetupRoutes(r, Deps{
		Gate:       auth.NewGate(testdb.Open(t), auth.NewIssuer("test-secret", 0)),
		Metrics:    middleware.NewMetrics(prometheus.NewRegistry()),
		Logger:     logger,
		MetricsKey: "scrape-key",
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(middleware.APIKeyHeader, "scrape-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}
