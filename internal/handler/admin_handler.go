package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultWindowSize bounds a listing request that omits max_pos.
const defaultWindowSize = 20

// AdminHandler serves the staff listing endpoints.
type AdminHandler struct {
	listing service.ListingService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(listing service.ListingService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		listing: listing,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// listingResponse is one page of the admin order listing plus the total
// match count for page arithmetic.
type listingResponse struct {
	Total  int64                 `json:"total"`
	MinPos int64                 `json:"minPos"`
	MaxPos int64                 `json:"maxPos"`
	Rows   []model.OrderWithUser `json:"rows"`
}

// userOrdersResponse is one page of a single user's orders.
type userOrdersResponse struct {
	Total  int64         `json:"total"`
	MinPos int64         `json:"minPos"`
	MaxPos int64         `json:"maxPos"`
	Rows   []model.Order `json:"rows"`
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	minPos, maxPos, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination window", h.logger)
		return
	}

	filter, err := parseListingFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", h.logger)
		return
	}

	total, err := h.listing.CountOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	rows, err := h.listing.FindOrdersWithUsers(r.Context(), minPos, maxPos, filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listingResponse{Total: total, MinPos: minPos, MaxPos: maxPos, Rows: rows})
}

// ListUserOrders handles GET /api/admin/users/{userId}/orders requests.
func (h *AdminHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := parseUserOrdersPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user path", h.logger)
		return
	}

	minPos, maxPos, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination window", h.logger)
		return
	}

	filter, err := parseOrderFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", h.logger)
		return
	}

	total, err := h.listing.CountUserOrders(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	rows, err := h.listing.FindUserOrders(r.Context(), userID, minPos, maxPos, filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, userOrdersResponse{Total: total, MinPos: minPos, MaxPos: maxPos, Rows: rows})
}

// parseWindow reads the half-open [min_pos, max_pos) window from the
// query. Range semantics (ordering, negativity) are validated by the
// listing service; only syntax is checked here.
func parseWindow(q url.Values) (int64, int64, error) {
	minPos := int64(0)
	if v := q.Get("min_pos"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		minPos = parsed
	}

	maxPos := minPos + defaultWindowSize
	if v := q.Get("max_pos"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		maxPos = parsed
	}

	return minPos, maxPos, nil
}

// parseOrderFilter reads the order-side filter from the query.
func parseOrderFilter(q url.Values) (model.OrderFilter, error) {
	var f model.OrderFilter

	for _, s := range splitParam(q.Get("states")) {
		f.States = append(f.States, model.OrderState(s))
	}
	for _, p := range splitParam(q.Get("payment_types")) {
		f.PaymentTypes = append(f.PaymentTypes, model.PaymentType(p))
	}

	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MaxPrice = &d
	}

	return f, nil
}

// parseListingFilter reads both filter sides from the query.
func parseListingFilter(q url.Values) (model.ListingFilter, error) {
	orderFilter, err := parseOrderFilter(q)
	if err != nil {
		return model.ListingFilter{}, err
	}

	userFilter := model.UserFilter{
		Login:      q.Get("login"),
		Mail:       q.Get("mail"),
		Phone:      q.Get("phone"),
		CardNumber: q.Get("card"),
	}
	for _, s := range splitParam(q.Get("user_statuses")) {
		userFilter.Statuses = append(userFilter.Statuses, model.UserStatus(s))
	}
	for _, role := range splitParam(q.Get("user_roles")) {
		userFilter.Roles = append(userFilter.Roles, model.UserRole(role))
	}

	return model.ListingFilter{Order: orderFilter, User: userFilter}, nil
}

// splitParam splits a comma-separated query value, dropping empties.
func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseUserOrdersPath extracts the user ID from
// /api/admin/users/{userId}/orders.
func parseUserOrdersPath(path string) (uuid.UUID, bool) {
	rest, found := strings.CutPrefix(path, "/api/admin/users/")
	if !found {
		return uuid.Nil, false
	}

	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "orders" {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}
