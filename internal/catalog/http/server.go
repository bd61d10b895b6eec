// Package http exposes the product catalog over REST.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	nethttp "net/http"
	"strconv"

	"github.com/gorilla/mux"

	"softhub/internal/catalog/app"
	"softhub/internal/catalog/domain"
)

type Server struct {
	svc *app.Service
	log *slog.Logger
}

func NewServer(svc *app.Service, log *slog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Register mounts the catalog routes on the given router.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/products", s.listProducts).Methods(nethttp.MethodGet)
	r.HandleFunc("/products/{id}", s.getProduct).Methods(nethttp.MethodGet)
	r.HandleFunc("/categories", s.listCategories).Methods(nethttp.MethodGet)
}

type productResponse struct {
	domain.Product
	PriceFormatted string `json:"priceFormatted"`
}

func toResponse(p domain.Product) productResponse {
	return productResponse{Product: p, PriceFormatted: domain.FormatPrice(p.Price)}
}

// listProducts lists the catalog, optionally filtered by category.
// @Summary List products
// @Produce json
// @Param category query string false "Category filter (exact match)"
// @Success 200 {array} productResponse
// @Router /products [get]
func (s *Server) listProducts(w nethttp.ResponseWriter, r *nethttp.Request) {
	var (
		products []domain.Product
		err      error
	)

	if category := r.URL.Query().Get("category"); category != "" {
		products, err = s.svc.ListByCategory(r.Context(), category)
	} else {
		products, err = s.svc.ListProducts(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}
	writeJSON(w, nethttp.StatusOK, out)
}

// getProduct returns one product with its full detail fields.
// @Summary Get product
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} productResponse
// @Failure 404 {object} errorBody
// @Router /products/{id} [get]
func (s *Server) getProduct(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, app.ErrInvalidInput)
		return
	}

	p, err := s.svc.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, toResponse(p))
}

// listCategories returns the distinct category names.
// @Summary List categories
// @Produce json
// @Success 200 {array} string
// @Router /categories [get]
func (s *Server) listCategories(w nethttp.ResponseWriter, r *nethttp.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, nethttp.StatusOK, cats)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w nethttp.ResponseWriter, err error) {
	status, code := nethttp.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, app.ErrNotFound):
		status, code = nethttp.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, app.ErrInvalidInput):
		status, code = nethttp.StatusBadRequest, "INVALID_ARGUMENT"
	default:
		s.log.Error("catalog handler error", slog.Any("err", err))
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
