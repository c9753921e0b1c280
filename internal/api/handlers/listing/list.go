package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Apiverse/internal/api/handlers"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/metrics"
)

// ListHandler serves the listing collection and single listings
type ListHandler struct {
	service listings.Service
	metrics *metrics.Metrics
}

// NewListHandler creates a new list handler. m may be nil.
func NewListHandler(service listings.Service, m *metrics.Metrics) *ListHandler {
	return &ListHandler{
		service: service,
		metrics: m,
	}
}

// HandleList returns the full collection
// GET /listings?sort=fresh|popular
//
// Without sort the collection is in creation order.
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req := listings.ListRequest{Sort: listings.Sort(r.URL.Query().Get("sort"))}

	items, err := h.service.ListListings(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.metrics.ObserveList(string(req.Sort), len(items))

	handlers.WriteJSON(w, http.StatusOK, listings.ListResponse{Listings: items})
}

// HandleGet returns one listing
// GET /listings/{id}
func (h *ListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, listing)
}
