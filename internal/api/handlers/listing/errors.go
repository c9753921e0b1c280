package listing

import (
	"errors"
	"log"
	"net/http"

	"Apiverse/internal/api/handlers"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

// handleServiceError converts service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upvotes.ErrUnauthorized):
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
	case errors.Is(err, listings.ErrListingNotFound):
		handlers.WriteError(w, http.StatusNotFound, "ListingNotFound", "Listing not found")
	case errors.Is(err, upvotes.ErrInvalidDirection):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Direction must be 'like' or 'unlike'")
	case errors.Is(err, upvotes.ErrInvalidListing):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid listing id")
	case errors.Is(err, listings.ErrInvalidSort):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "sort must be 'fresh' or 'popular'")
	case listings.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		// Internal server error - log the actual error for debugging
		log.Printf("Listing handler error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
