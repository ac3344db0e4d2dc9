package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BookingCanceller is the minimal interface needed to cancel a booking.
type BookingCanceller interface {
	Cancel(ctx context.Context, bookingID, userID string) error
}

// HandleCancelBooking returns an HTTP handler for cancelling bookings.
func HandleCancelBooking(svc BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		if err := svc.Cancel(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
