package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/app"
	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/go-chi/chi/v5"
)

const userIDHeader = "X-User-ID"

const dateLayout = "2006-01-02"

// BookingCreator is the minimal interface needed to create a booking.
type BookingCreator interface {
	Create(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error)
}

// BookingReader is the minimal interface needed to read bookings back.
type BookingReader interface {
	Get(ctx context.Context, bookingID, userID string) (domain.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

// HandleCreateBooking returns an HTTP handler for creating bookings.
func HandleCreateBooking(svc BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in, err := req.toInput(userID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
			return
		}

		booking, err := svc.Create(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toBookingResponse(booking))
	}
}

// HandleGetBooking returns an HTTP handler for reading one booking.
func HandleGetBooking(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		booking, err := svc.Get(r.Context(), chi.URLParam(r, "id"), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toBookingResponse(booking))
	}
}

// HandleListBookings returns an HTTP handler listing the caller's bookings.
func HandleListBookings(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}

		bookings, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, toBookingResponse(b))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codeUserRequired, "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

type createBookingRequest struct {
	TourID       string `json:"tour_id"`
	HotelID      string `json:"hotel_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Participants int    `json:"participants"`
	RoomType     string `json:"room_type"`
}

func (r createBookingRequest) toInput(userID string) (app.CreateBookingInput, error) {
	in := app.CreateBookingInput{
		UserID:       userID,
		TourID:       r.TourID,
		HotelID:      r.HotelID,
		Participants: r.Participants,
		RoomType:     domain.RoomType(r.RoomType),
	}

	var err error
	if in.StartDate, err = time.Parse(dateLayout, r.StartDate); err != nil {
		return app.CreateBookingInput{}, err
	}
	if r.EndDate != "" {
		if in.EndDate, err = time.Parse(dateLayout, r.EndDate); err != nil {
			return app.CreateBookingInput{}, err
		}
	}
	return in, nil
}

type bookingResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TourID        string    `json:"tour_id,omitempty"`
	HotelID       string    `json:"hotel_id,omitempty"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Participants  int       `json:"participants"`
	RoomType      string    `json:"room_type,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalPrice    int64     `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		TourID:        b.TourID,
		HotelID:       b.HotelID,
		StartDate:     b.StartDate.Format(dateLayout),
		EndDate:       b.EndDate.Format(dateLayout),
		Participants:  b.Participants,
		RoomType:      string(b.RoomType),
		Status:        string(b.State.Status()),
		PaymentStatus: string(b.State.PaymentStatus()),
		TotalPrice:    b.TotalPrice,
		CreatedAt:     b.CreatedAt,
	}
}
