package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giovannicg/INMEDT/internal/auth"
	"github.com/giovannicg/INMEDT/internal/importer"
	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/health"
	"github.com/giovannicg/INMEDT/pkg/middleware"
)

// Services bundles the application services the router exposes.
type Services struct {
	User         *service.UserService
	Catalog      *service.CatalogService
	AdminCatalog *service.AdminCatalogService
	Cart         *service.CartService
	Checkout     *service.CheckoutService
	Order        *service.OrderService
	Favorite     *service.FavoriteService
	Address      *service.AddressService
	Media        *service.MediaService
	Importer     *importer.Importer
}

// RouterConfig holds router-level dependencies and settings.
type RouterConfig struct {
	JWTManager    *auth.JWTManager
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig

	// ImageDir is the directory static product images are served from.
	// Empty disables the static route.
	ImageDir string

	// PprofAllowedCIDRs restricts the pprof endpoints to matching client IPs.
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(services Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("inmedt"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("inmedt"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)

	// Static product images
	if cfg.ImageDir != "" {
		fs := http.StripPrefix("/static/images/", http.FileServer(http.Dir(cfg.ImageDir)))
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(86400))
			r.Get("/static/images/*", fs.ServeHTTP)
		})
	}

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWTManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(services.User, cfg.Logger)
	userHandler := NewUserHandler(services.User, cfg.Logger)
	catalogHandler := NewCatalogHandler(services.Catalog, cfg.Logger)
	adminHandler := NewAdminCatalogHandler(services.AdminCatalog, cfg.Logger)
	cartHandler := NewCartHandler(services.Cart, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(services.Checkout, cfg.Logger)
	orderHandler := NewOrderHandler(services.Order, cfg.Logger)
	favoriteHandler := NewFavoriteHandler(services.Favorite, cfg.Logger)
	addressHandler := NewAddressHandler(services.Address, cfg.Logger)
	mediaHandler := NewMediaHandler(services.Media, cfg.Logger)
	importHandler := NewImportHandler(services.Importer, cfg.Logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/google", authHandler.GoogleSignIn)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// Public catalog endpoints
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.CacheControl(60))

		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)
	})

	// Profile, address, and favorite endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetProfile)
		r.Put("/me", userHandler.UpdateProfile)

		r.Get("/me/addresses", addressHandler.List)
		r.Post("/me/addresses", addressHandler.Create)
		r.Get("/me/addresses/{id}", addressHandler.Get)
		r.Put("/me/addresses/{id}", addressHandler.Update)
		r.Delete("/me/addresses/{id}", addressHandler.Delete)
		r.Post("/me/addresses/{id}/default", addressHandler.SetDefault)

		r.Get("/me/favorites", favoriteHandler.List)
		r.Post("/me/favorites/{productId}", favoriteHandler.Add)
		r.Delete("/me/favorites/{productId}", favoriteHandler.Remove)
		r.Get("/me/favorites/{productId}", favoriteHandler.Exists)
	})

	// Cart and checkout endpoints (auth required)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{id}", cartHandler.UpdateItem)
		r.Delete("/items/{id}", cartHandler.RemoveItem)
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", checkoutHandler.Checkout)
		r.Post("/quote", checkoutHandler.Quote)
	})

	// Customer order endpoints (auth required)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/", orderHandler.ListMyOrders)
		r.Get("/{id}", orderHandler.GetMyOrder)
		r.Post("/{id}/cancel", orderHandler.CancelMyOrder)
	})

	// Admin endpoints (admin role required)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole("admin"))

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/categories", adminHandler.ListCategories)
			r.Post("/categories", adminHandler.CreateCategory)
			r.Put("/categories/{id}", adminHandler.UpdateCategory)
			r.Delete("/categories/{id}", adminHandler.DeleteCategory)

			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Get("/products/{id}", adminHandler.GetProduct)
			r.Put("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)

			r.Post("/products/{id}/variants", adminHandler.CreateVariant)
			r.Put("/variants/{id}", adminHandler.UpdateVariant)
			r.Delete("/variants/{id}", adminHandler.DeleteVariant)

			r.Post("/variants/{id}/sale-units", adminHandler.CreateSaleUnit)
			r.Put("/sale-units/{id}", adminHandler.UpdateSaleUnit)
			r.Delete("/sale-units/{id}", adminHandler.DeleteSaleUnit)

			r.Post("/catalog/import", importHandler.ImportCatalog)

			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Put("/orders/{id}/status", orderHandler.UpdateStatus)
			r.Put("/orders/{id}/shipping", orderHandler.UpdateShippingInfo)

			r.Get("/users", userHandler.ListUsers)
			r.Put("/users/{id}/active", userHandler.SetUserActive)
		})

		// Image uploads are multipart, so they skip the JSON content type check.
		r.Post("/products/{id}/image", mediaHandler.SetMainImage)
		r.Post("/products/{id}/gallery", mediaHandler.AddGalleryImage)
		r.Delete("/products/{id}/gallery/{key}", mediaHandler.RemoveGalleryImage)
	})

	return r
}
