package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/cart"
	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
	"github.com/ayushmanmishra18/storefront-api/middleware"
)

// Deps is everything the handlers need. Now defaults to time.Now.
type Deps struct {
	DB       *gorm.DB
	Accounts *auth.Accounts
	Gate     *auth.Gate
	Carts    *cart.Aggregate
	Feed     *orderControllers.Hub
	Metrics  *middleware.Metrics
	Logger   *slog.Logger
	Now      func() time.Time

	// MetricsKey, when set, is required in X-API-KEY to read /metrics.
	MetricsKey string
}

// SetupRoutes is the single entry-point that installs the shared middleware
// and every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	r.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Instrument())
		metrics := []gin.HandlerFunc{gin.WrapH(d.Metrics.Handler())}
		if d.MetricsKey != "" {
			metrics = append([]gin.HandlerFunc{middleware.ValidateAPIKey(d.MetricsKey)}, metrics...)
		}
		r.GET("/metrics", metrics...)
	}
	r.Use(middleware.ErrorHandler(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 1️⃣ Public + token-protected auth routes
	SetupAuthRoutes(r, d)

	// 2️⃣ Catalog
	SetupProductRoutes(r, d)

	// 3️⃣ Cart and payment (user token)
	SetupUserRoutes(r, d)

	// 4️⃣ Orders
	SetupOrderRoutes(r, d)

	// 5️⃣ Admin
	SetupAdminRoutes(r, d)
}
