package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order submission and the order detail view.
type OrderHandler struct {
	checkout service.CheckoutService
	listing  service.ListingService
	baskets  service.BasketService
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(
	checkout service.CheckoutService,
	listing service.ListingService,
	baskets service.BasketService,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		listing:  listing,
		baskets:  baskets,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// submitRequest is the payload for finalizing a basket.
type submitRequest struct {
	Bonuses     decimal.Decimal   `json:"bonuses"`
	PaymentType model.PaymentType `json:"paymentType"`
}

// orderResponse is the order detail view.
type orderResponse struct {
	Order  model.Order           `json:"order"`
	Lines  []model.LineItem      `json:"lines"`
	Dishes map[string]model.Dish `json:"dishes"`
}

// Route dispatches /api/orders/{orderId}[/submit] requests.
func (h *OrderHandler) Route(w http.ResponseWriter, r *http.Request) {
	orderID, action, ok := parseOrderPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order path", h.logger)
		return
	}

	switch {
	case r.Method == http.MethodGet && action == "":
		h.getOrder(w, r, orderID)
	case r.Method == http.MethodPost && action == "submit":
		h.submit(w, r, orderID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	order, err := h.listing.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	lines, dishes, err := h.baskets.ListLines(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Order: *order, Lines: lines, Dishes: dishes})
}

func (h *OrderHandler) submit(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	order, err := h.checkout.Submit(r.Context(), orderID, req.Bonuses, req.PaymentType)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// parseOrderPath extracts the order ID and optional action from
// /api/orders/{orderId}[/submit].
func parseOrderPath(path string) (uuid.UUID, string, bool) {
	rest, found := strings.CutPrefix(path, "/api/orders/")
	if !found {
		return uuid.Nil, "", false
	}

	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) < 1 || len(parts) > 2 {
		return uuid.Nil, "", false
	}

	orderID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", false
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	return orderID, action, true
}
