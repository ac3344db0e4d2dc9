package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTourNotFound    = errors.New("tour not found")
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidID       = errors.New("invalid id")

	ErrResourceRequired      = errors.New("exactly one of tour id or hotel id required")
	ErrInvalidParticipants   = errors.New("invalid participant count")
	ErrInvalidDateRange      = errors.New("check-out must be after check-in")
	ErrOutsideSeason         = errors.New("start date outside tour season")
	ErrRoomTypeRequired      = errors.New("room type required for this accommodation")
	ErrRoomTypeNotApplicable = errors.New("room type not applicable for this accommodation")
	ErrRoomTypeNotOffered    = errors.New("room type not offered by this hotel")

	ErrActiveBookingExists    = errors.New("user already has an active booking")
	ErrBookingNotPayable      = errors.New("booking cannot be paid in its current state")
	ErrBookingNotCancellable  = errors.New("booking cannot be cancelled")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrCommitRace             = errors.New("inventory commit lost to a concurrent booking")
	ErrCorruptState           = errors.New("booking state is corrupt")
	ErrCalendarEntryNotFound  = errors.New("calendar entry not found")
	ErrPaymentDeclined        = errors.New("payment declined")
)

// CapacityError names the first calendar day that cannot fit a request.
// It matches ErrInsufficientCapacity under errors.Is.
type CapacityError struct {
	Date      time.Time
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity on %s: %d available", e.Date.Format(time.DateOnly), e.Available)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}
