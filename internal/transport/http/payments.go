package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/FlySkyFall/tourism-crimea/internal/payment"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BookingPayer is the minimal interface needed to pay for a booking.
type BookingPayer interface {
	Pay(ctx context.Context, bookingID, userID string, card payment.Card) (domain.Booking, error)
}

// HandlePayBooking returns an HTTP handler for the payment attempt.
func HandlePayBooking(svc BookingPayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		var req payRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidCard, "invalid card details")
			return
		}

		booking, err := svc.Pay(r.Context(), chi.URLParam(r, "id"), userID, payment.Card{
			Number: req.CardNumber,
			Holder: req.CardHolder,
			Expiry: req.Expiry,
			CVV:    req.CVV,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toBookingResponse(booking))
	}
}

type payRequest struct {
	CardNumber string `json:"card_number" validate:"required,len=16,numeric"`
	CardHolder string `json:"card_holder" validate:"required,min=2"`
	Expiry     string `json:"expiry" validate:"required,datetime=01/06"`
	CVV        string `json:"cvv" validate:"required,len=3,numeric"`
}
