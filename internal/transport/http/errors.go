package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeUserRequired          = "user_required"
	codeInvalidID             = "invalid_id"
	codeInvalidCard           = "invalid_card"
	codeInvalidParticipants   = "invalid_participants"
	codeInvalidDateRange      = "invalid_date_range"
	codeResourceRequired      = "resource_required"
	codeOutsideSeason         = "outside_season"
	codeRoomTypeRequired      = "room_type_required"
	codeRoomTypeNotApplicable = "room_type_not_applicable"
	codeRoomTypeNotOffered    = "room_type_not_offered"
	codeActiveBookingExists   = "active_booking_exists"
	codeTourNotFound          = "tour_not_found"
	codeHotelNotFound         = "hotel_not_found"
	codeBookingNotFound       = "booking_not_found"
	codeBookingNotPayable     = "booking_not_payable"
	codeBookingNotCancellable = "booking_not_cancellable"
	codeInsufficientCapacity  = "insufficient_capacity"
	codePaymentDeclined       = "payment_declined"
	codeCommitRace            = "commit_race"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps service errors onto HTTP statuses and stable
// error codes. Unknown errors become opaque 500s.
func writeDomainError(w http.ResponseWriter, err error) {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		writeError(w, http.StatusConflict, codeInsufficientCapacity, capErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidParticipants):
		writeError(w, http.StatusBadRequest, codeInvalidParticipants, err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
	case errors.Is(err, domain.ErrResourceRequired):
		writeError(w, http.StatusBadRequest, codeResourceRequired, err.Error())
	case errors.Is(err, domain.ErrOutsideSeason):
		writeError(w, http.StatusBadRequest, codeOutsideSeason, err.Error())
	case errors.Is(err, domain.ErrRoomTypeRequired):
		writeError(w, http.StatusBadRequest, codeRoomTypeRequired, err.Error())
	case errors.Is(err, domain.ErrRoomTypeNotApplicable):
		writeError(w, http.StatusBadRequest, codeRoomTypeNotApplicable, err.Error())
	case errors.Is(err, domain.ErrRoomTypeNotOffered):
		writeError(w, http.StatusBadRequest, codeRoomTypeNotOffered, err.Error())
	case errors.Is(err, domain.ErrTourNotFound):
		writeError(w, http.StatusNotFound, codeTourNotFound, err.Error())
	case errors.Is(err, domain.ErrHotelNotFound):
		writeError(w, http.StatusNotFound, codeHotelNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrActiveBookingExists):
		writeError(w, http.StatusConflict, codeActiveBookingExists, err.Error())
	case errors.Is(err, domain.ErrBookingNotPayable):
		writeError(w, http.StatusConflict, codeBookingNotPayable, err.Error())
	case errors.Is(err, domain.ErrBookingNotCancellable):
		writeError(w, http.StatusConflict, codeBookingNotCancellable, err.Error())
	case errors.Is(err, domain.ErrInsufficientCapacity):
		writeError(w, http.StatusConflict, codeInsufficientCapacity, err.Error())
	case errors.Is(err, domain.ErrCommitRace):
		writeError(w, http.StatusConflict, codeCommitRace, err.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, codePaymentDeclined, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
