// Package api assembles the HTTP surface of the ordering backend: the public
// storefront endpoints, the authenticated B2B endpoints, and the admin
// back-office, together with the middleware chain and background services.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	adminapi "github.com/freshgreens/ordering-backend/internal/api/admin"
	"github.com/freshgreens/ordering-backend/internal/api/b2b"
	"github.com/freshgreens/ordering-backend/internal/api/storefront"
	"github.com/freshgreens/ordering-backend/internal/config"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/jobs"
	"github.com/freshgreens/ordering-backend/internal/middleware"
	"github.com/freshgreens/ordering-backend/internal/orders"
	"github.com/freshgreens/ordering-backend/internal/safego"
	"github.com/freshgreens/ordering-backend/internal/storage"
)

// Version information, overridden at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// BackgroundServices holds the long-running goroutines started by NewRouter
// so main can stop them during graceful shutdown.
type BackgroundServices struct {
	InviteSweeper *jobs.InviteSweeper

	cancel       context.CancelFunc
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background services.
func (b *BackgroundServices) Shutdown() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.InviteSweeper != nil {
		b.InviteSweeper.Stop()
	}
	for _, rl := range b.rateLimiters {
		rl.Stop()
	}
}

// NewRouter builds the Gin engine with all routes, middleware, and background
// services wired up. The caller owns the database handle; everything started
// here is stopped through the returned BackgroundServices.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices, error) {
	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	// Repositories. The sqlx wrapper shares the same underlying pool.
	sqlxDB := sqlx.NewDb(db, "postgres")
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	catalogRepo := repositories.NewCatalogRepository(sqlxDB)
	inviteRepo := repositories.NewInviteRepository(sqlxDB)

	orderSvc := orders.NewService(orderRepo, catalogRepo)

	// Background services.
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := jobs.NewInviteSweeper(inviteRepo, cfg.Invites.SweepIntervalHours)
	safego.Go(func() { sweeper.Start(ctx) })

	bg := &BackgroundServices{
		InviteSweeper: sweeper,
		cancel:        cancel,
	}

	// Middleware chain. Order matters: the request ID must exist before the
	// logger runs, and metrics should observe every request including those
	// rejected by CORS or rate limiting.
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware(cfg))
	r.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Rate limiters. The auth limiter is deliberately tight: login and
	// Telegram sign-in are the brute-force surface.
	authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	generalLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	uploadLimiter := middleware.NewRateLimiter(middleware.UploadRateLimitConfig())
	bg.rateLimiters = []*middleware.RateLimiter{authLimiter, generalLimiter, uploadLimiter}

	// Operational endpoints, outside all rate limiting.
	r.GET("/health", healthCheckHandler(db))
	r.GET("/ready", readinessHandler(db, storageBackend))
	r.GET("/version", versionHandler())

	// Locally stored product photos are served straight from disk.
	if cfg.Storage.DefaultBackend == "local" && cfg.Storage.Local.ServeDirectly {
		r.StaticFS("/files", gin.Dir(cfg.Storage.Local.BasePath, false))
	}

	authHandlers := storefront.NewAuthHandlers(cfg, userRepo)
	catalogHandlers := storefront.NewCatalogHandlers(sqlxDB)
	storefrontOrders := storefront.NewOrderHandlers(orderSvc)

	b2bOrders := b2b.NewOrderHandlers(orderSvc)
	orgHandlers := b2b.NewOrganizationHandlers(orgRepo, userRepo)
	inviteHandlers := b2b.NewInviteHandlers(cfg, inviteRepo)

	adminAuth := adminapi.NewAuthHandlers(cfg)
	adminOrders := adminapi.NewOrderHandlers(orderSvc, orderRepo)
	adminCategories := adminapi.NewCategoryHandlers(catalogRepo)
	adminProducts := adminapi.NewProductHandlers(catalogRepo, storageBackend)
	adminCSV := adminapi.NewCSVHandlers(catalogRepo)
	adminStats := adminapi.NewStatsHandler(sqlxDB)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(generalLimiter))
	{
		// Public surface: sign-in and catalog browsing.
		v1.POST("/auth/telegram", middleware.RateLimitMiddleware(authLimiter), authHandlers.TelegramLoginHandler())
		v1.GET("/categories", catalogHandlers.ListCategoriesHandler())
		v1.GET("/products", catalogHandlers.ListProductsHandler())
		v1.GET("/products/:id", catalogHandlers.GetProductHandler())

		// Everything below requires a signed-in user.
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(userRepo))
		{
			authed.POST("/orders", storefrontOrders.CreateOrderHandler())
			authed.GET("/my-orders", storefrontOrders.MyOrdersHandler())

			authed.GET("/organization", orgHandlers.GetMyOrganizationHandler())
			authed.POST("/organization", orgHandlers.CreateOrganizationHandler())
			authed.PUT("/organization", orgHandlers.UpdateOrganizationHandler())

			authed.POST("/organization/invites", inviteHandlers.CreateInviteHandler())
			authed.GET("/organization/invites", inviteHandlers.ListInvitesHandler())
			authed.POST("/invites/validate", inviteHandlers.ValidateInviteHandler())
			authed.POST("/invites/join", inviteHandlers.JoinHandler())

			b2bGroup := authed.Group("/b2b")
			{
				b2bGroup.POST("/orders", b2bOrders.CreateDraftHandler())
				b2bGroup.GET("/orders", b2bOrders.ListOrdersHandler())
				b2bGroup.GET("/orders/:id", b2bOrders.GetOrderHandler())
				b2bGroup.POST("/orders/:id/items", b2bOrders.AddItemHandler())
				b2bGroup.DELETE("/orders/:id/items/:item_id", b2bOrders.RemoveItemHandler())
				b2bGroup.POST("/orders/:id/submit", b2bOrders.SubmitOrderHandler())
			}
		}

		// Back-office.
		v1.POST("/admin/login", middleware.RateLimitMiddleware(authLimiter), adminAuth.LoginHandler())

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/orders", adminOrders.ListOrdersHandler())
			admin.GET("/orders/:id", adminOrders.GetOrderHandler())
			admin.DELETE("/orders/:id", adminOrders.DeleteOrderHandler())

			admin.GET("/categories", adminCategories.ListCategoriesHandler())
			admin.POST("/categories", adminCategories.CreateCategoryHandler())
			admin.PUT("/categories/:id", adminCategories.UpdateCategoryHandler())
			admin.DELETE("/categories/:id", adminCategories.DeleteCategoryHandler())

			admin.POST("/products", adminProducts.CreateProductHandler())
			admin.PUT("/products/:id", adminProducts.UpdateProductHandler())
			admin.DELETE("/products/:id", adminProducts.DeleteProductHandler())
			admin.POST("/products/:id/photo", middleware.RateLimitMiddleware(uploadLimiter), adminProducts.UploadPhotoHandler())

			admin.POST("/catalog/import", middleware.RateLimitMiddleware(uploadLimiter), adminCSV.ImportProductsHandler())
			admin.GET("/catalog/export", adminCSV.ExportProductsHandler())

			admin.GET("/stats/dashboard", adminStats.DashboardHandler())
		}
	}

	return r, bg, nil
}

// healthCheckHandler reports process liveness and database reachability.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// readinessHandler reports whether the instance can serve traffic: the
// database must answer and the storage backend must respond to a probe.
func readinessHandler(db *sql.DB, backend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "database unreachable",
			})
			return
		}

		// Any answer proves the backend is reachable; the probe object does
		// not need to exist.
		if _, err := backend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "storage backend unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// versionHandler reports build information.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"commit":     Commit,
			"build_date": BuildDate,
		})
	}
}

// LoggerMiddleware emits one structured log line per request.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID := c.GetString(middleware.RequestIDKey)
		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		slog.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", status),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", requestID),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware applies the configured origin allowlist. Requests from
// unlisted origins get no CORS headers and the browser blocks the response.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.Security.CORS.AllowedOrigins))
	allowAll := false
	for _, origin := range cfg.Security.CORS.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
