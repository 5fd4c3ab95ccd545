package router

import (
	"net/http"

	"bistro/internal/handler"
	"bistro/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	basketHandler *handler.BasketHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Basket routes: opening the basket and its line items
	mux.HandleFunc("/api/basket", basketHandler.GetOrCreate)
	mux.HandleFunc("/api/basket/", basketHandler.Items)

	// Order routes: detail view and submission
	mux.HandleFunc("/api/orders/", orderHandler.Route)

	// Staff listing routes
	mux.HandleFunc("/api/admin/orders", adminHandler.ListOrders)
	mux.HandleFunc("/api/admin/users/", adminHandler.ListUserOrders)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
