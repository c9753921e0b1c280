package listing

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"Apiverse/internal/api/handlers"
	"Apiverse/internal/api/middleware"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
	"Apiverse/internal/metrics"
)

// ToggleHandler is the HTTP side of the single counter write path
type ToggleHandler struct {
	service upvotes.Service
	metrics *metrics.Metrics
}

// NewToggleHandler creates a new toggle handler. m may be nil.
func NewToggleHandler(service upvotes.Service, m *metrics.Metrics) *ToggleHandler {
	return &ToggleHandler{
		service: service,
		metrics: m,
	}
}

// HandleLike applies +1
// POST /listings/{id}/like
//
// Response: { "upvoteCount": n }
func (h *ToggleHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, upvotes.DirectionLike)
}

// HandleUnlike applies -1, floored at zero
// POST /listings/{id}/unlike
//
// Response: { "upvoteCount": n }
func (h *ToggleHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, upvotes.DirectionUnlike)
}

func (h *ToggleHandler) toggle(w http.ResponseWriter, r *http.Request, direction upvotes.Direction) {
	start := time.Now()

	listingID := chi.URLParam(r, "id")
	if listingID == "" {
		h.metrics.ObserveToggle(string(direction), metrics.OutcomeInvalid, time.Since(start))
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "listing id is required")
		return
	}

	// Identity is injected by the auth middleware; the service re-checks it
	resp, err := h.service.Toggle(r.Context(), upvotes.ToggleRequest{
		ListingID: listingID,
		Identity:  middleware.GetIdentity(r),
		Direction: direction,
	})
	if err != nil {
		h.metrics.ObserveToggle(string(direction), toggleOutcome(err), time.Since(start))
		handleServiceError(w, err)
		return
	}

	outcome := metrics.OutcomeApplied
	if !resp.Changed {
		outcome = metrics.OutcomeNoop
	}
	h.metrics.ObserveToggle(string(direction), outcome, time.Since(start))

	handlers.WriteJSON(w, http.StatusOK, resp)
}

func toggleOutcome(err error) string {
	switch {
	case errors.Is(err, upvotes.ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, listings.ErrListingNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, upvotes.ErrInvalidDirection), errors.Is(err, upvotes.ErrInvalidListing):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
