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

// BasketHandler handles basket-related HTTP requests.
type BasketHandler struct {
	baskets service.BasketService
	pricing service.PricingService
	logger  zerolog.Logger
}

// NewBasketHandler creates a new basket handler.
func NewBasketHandler(baskets service.BasketService, pricing service.PricingService, logger zerolog.Logger) *BasketHandler {
	return &BasketHandler{
		baskets: baskets,
		pricing: pricing,
		logger:  logger.With().Str("handler", "basket").Logger(),
	}
}

// basketRequest is the payload for opening a basket.
type basketRequest struct {
	CustomerID uuid.UUID `json:"customerId"`
}

// lineRequest is the payload for adding or updating a line item.
type lineRequest struct {
	DishID      string `json:"dishId"`
	AmountGrams int    `json:"amountGrams"`
}

// linesResponse is the basket contents view: lines plus the referenced
// dishes keyed by dish ID, and a live quote for the current contents.
type linesResponse struct {
	Lines  []model.LineItem      `json:"lines"`
	Dishes map[string]model.Dish `json:"dishes"`
	Quote  model.Quote           `json:"quote"`
}

// GetOrCreate handles POST /api/basket requests.
func (h *BasketHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req basketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.CustomerID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "customer ID is required", h.logger)
		return
	}

	basket, err := h.baskets.GetOrCreateBasket(r.Context(), req.CustomerID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// Items dispatches /api/basket/{orderId}/items[/{dishId}] requests.
func (h *BasketHandler) Items(w http.ResponseWriter, r *http.Request) {
	orderID, dishID, ok := parseItemsPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid basket path", h.logger)
		return
	}

	switch {
	case r.Method == http.MethodGet && dishID == "":
		h.listLines(w, r, orderID)
	case r.Method == http.MethodPut && dishID == "":
		h.upsertLine(w, r, orderID)
	case r.Method == http.MethodDelete && dishID != "":
		h.removeLine(w, r, orderID, dishID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *BasketHandler) listLines(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	lines, dishes, err := h.baskets.ListLines(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	// Quote with no bonus request: gross price of the current contents.
	quote, err := h.pricing.NewTotal(r.Context(), orderID, decimal.Zero)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, linesResponse{Lines: lines, Dishes: dishes, Quote: quote})
}

func (h *BasketHandler) upsertLine(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.DishID == "" {
		writeError(w, http.StatusBadRequest, "dish ID is required", h.logger)
		return
	}

	item, err := h.baskets.AddOrUpdateLine(r.Context(), orderID, req.DishID, req.AmountGrams)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *BasketHandler) removeLine(w http.ResponseWriter, r *http.Request, orderID uuid.UUID, dishID string) {
	if err := h.baskets.RemoveLine(r.Context(), orderID, dishID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseItemsPath extracts the order ID and optional dish ID from
// /api/basket/{orderId}/items[/{dishId}].
func parseItemsPath(path string) (uuid.UUID, string, bool) {
	rest, found := strings.CutPrefix(path, "/api/basket/")
	if !found {
		return uuid.Nil, "", false
	}

	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[1] != "items" {
		return uuid.Nil, "", false
	}

	orderID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", false
	}

	dishID := ""
	if len(parts) == 3 {
		if parts[2] == "" {
			return uuid.Nil, "", false
		}
		dishID = parts[2]
	}

	return orderID, dishID, true
}
