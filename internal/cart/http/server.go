// Package http exposes the cart store over REST. Each visitor gets a
// cart_session cookie; the cart's slot key is derived from it, so two browser
// tabs of one visitor share a cart while different visitors never do.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"softhub/internal/cart/app"
	"softhub/internal/cart/domain"
	"softhub/internal/notify"
)

const sessionCookie = "cart_session"

// StoreFactory builds a cart store bound to one slot key.
type StoreFactory func(key string) *app.Store

// Server caches one store per slot key so concurrent requests of the same
// session serialize on the same store mutex.
type Server struct {
	keyPrefix string
	factory   StoreFactory
	center    *notify.Center
	log       *slog.Logger

	mu     sync.Mutex
	stores map[string]*app.Store
}

func NewServer(keyPrefix string, factory StoreFactory, center *notify.Center, log *slog.Logger) *Server {
	return &Server{
		keyPrefix: keyPrefix,
		factory:   factory,
		center:    center,
		log:       log,
		stores:    make(map[string]*app.Store),
	}
}

// Register mounts the cart and notification routes.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/cart", s.getCart).Methods(nethttp.MethodGet)
	r.HandleFunc("/cart", s.clearCart).Methods(nethttp.MethodDelete)
	r.HandleFunc("/cart/count", s.getCount).Methods(nethttp.MethodGet)
	r.HandleFunc("/cart/items", s.addItem).Methods(nethttp.MethodPost)
	r.HandleFunc("/cart/items/{id}", s.setQuantity).Methods(nethttp.MethodPut)
	r.HandleFunc("/cart/items/{id}", s.removeItem).Methods(nethttp.MethodDelete)
	r.HandleFunc("/notifications", s.listNotifications).Methods(nethttp.MethodGet)
}

func (s *Server) store(w nethttp.ResponseWriter, r *nethttp.Request) *app.Store {
	var sid string
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		sid = c.Value
	} else {
		sid = uuid.NewString()
		nethttp.SetCookie(w, &nethttp.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
		})
	}

	key := s.keyPrefix + ":" + sid

	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[key]
	if !ok {
		store = s.factory(key)
		store.Subscribe(s.center.CartChanged)
		s.stores[key] = store
	}
	return store
}

type cartResponse struct {
	Items   []domain.LineItem `json:"items"`
	Summary summaryResponse   `json:"summary"`
}

type summaryResponse struct {
	ItemCount int    `json:"itemCount"`
	Subtotal  string `json:"subtotal"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
}

func toCartResponse(cart domain.Cart, sum domain.Summary) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartResponse{
		Items: items,
		Summary: summaryResponse{
			ItemCount: sum.ItemCount,
			Subtotal:  sum.Subtotal.String(),
			Tax:       sum.Tax.String(),
			Total:     sum.Total.String(),
		},
	}
}

// getCart returns the visitor's cart with its aggregates.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartResponse
// @Router /cart [get]
func (s *Server) getCart(w nethttp.ResponseWriter, r *nethttp.Request) {
	store := s.store(w, r)
	writeJSON(w, nethttp.StatusOK, toCartResponse(store.Load(r.Context()), store.Summary(r.Context())))
}

// getCount returns the badge value; the client hides the badge at 0.
// @Summary Cart item count
// @Produce json
// @Success 200 {object} map[string]int
// @Router /cart/count [get]
func (s *Server) getCount(w nethttp.ResponseWriter, r *nethttp.Request) {
	store := s.store(w, r)
	writeJSON(w, nethttp.StatusOK, map[string]int{"count": store.ItemCount(r.Context())})
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	// Quantity defaults to 1 when omitted. An explicit value below 1 is
	// rejected by the store. The detail-page spinner clamps to [1,10] on the
	// client; the store itself has no upper bound.
	Quantity *int `json:"quantity"`
}

// addItem adds a product to the cart.
// @Summary Add item
// @Accept json
// @Produce json
// @Param item body addItemRequest true "Product and quantity"
// @Success 201 {object} cartResponse
// @Failure 404 {object} errorBody
// @Router /cart/items [post]
func (s *Server) addItem(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, badRequest("invalid body"))
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	store := s.store(w, r)
	cart, err := store.AddItem(r.Context(), req.ProductID, qty)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusCreated, toCartResponse(cart, store.Summary(r.Context())))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// setQuantity sets a line item's quantity; values below 1 remove the item.
// @Summary Set item quantity
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body setQuantityRequest true "New quantity"
// @Success 200 {object} cartResponse
// @Failure 404 {object} errorBody
// @Router /cart/items/{id} [put]
func (s *Server) setQuantity(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, badRequest("invalid product id"))
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, badRequest("invalid body"))
		return
	}

	store := s.store(w, r)
	cart, err := store.SetQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, toCartResponse(cart, store.Summary(r.Context())))
}

// removeItem removes a line item.
// @Summary Remove item
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} cartResponse
// @Failure 404 {object} errorBody
// @Router /cart/items/{id} [delete]
func (s *Server) removeItem(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, badRequest("invalid product id"))
		return
	}

	store := s.store(w, r)
	cart, err := store.RemoveItem(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, toCartResponse(cart, store.Summary(r.Context())))
}

// clearCart deletes the visitor's cart entirely.
// @Summary Clear cart
// @Success 204
// @Router /cart [delete]
func (s *Server) clearCart(w nethttp.ResponseWriter, r *nethttp.Request) {
	store := s.store(w, r)
	if err := store.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}

// listNotifications returns the toasts that have not yet self-dismissed.
// @Summary Active notifications
// @Produce json
// @Success 200 {array} notify.Notification
// @Router /notifications [get]
func (s *Server) listNotifications(w nethttp.ResponseWriter, r *nethttp.Request) {
	active := s.center.Active()
	if active == nil {
		active = []notify.Notification{}
	}
	writeJSON(w, nethttp.StatusOK, active)
}

type httpError struct {
	status int
	code   string
	msg    string
}

func (e httpError) Error() string { return e.msg }

func badRequest(msg string) error {
	return httpError{status: nethttp.StatusBadRequest, code: "INVALID_ARGUMENT", msg: msg}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w nethttp.ResponseWriter, err error) {
	status, code := nethttp.StatusInternalServerError, "INTERNAL"

	var he httpError
	switch {
	case errors.As(err, &he):
		status, code = he.status, he.code
	case errors.Is(err, app.ErrNotFound):
		status, code = nethttp.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, app.ErrInvalidQuantity):
		status, code = nethttp.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, app.ErrPersistence):
		status, code = nethttp.StatusServiceUnavailable, "UNAVAILABLE"
		s.log.Error("cart persistence error", slog.Any("err", err))
	default:
		s.log.Error("cart handler error", slog.Any("err", err))
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()
	writeJSON(w, status, body)
}

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
