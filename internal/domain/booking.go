package domain

import "time"

// Booking is a user's claim on a tour departure or a hotel stay. Dates are
// inclusive on both ends: a hotel guest occupies a slot on the check-out day
// as well, matching the nights+1 pricing rule. RoomType and TotalPrice are
// snapshots taken at creation time and do not track later resource changes.
type Booking struct {
	ID           string
	UserID       string
	TourID       string
	HotelID      string
	StartDate    time.Time
	EndDate      time.Time
	Participants int
	RoomType     RoomType
	State        BookingState
	TotalPrice   int64
	CreatedAt    time.Time
}

// IsTour reports whether the booking is for a tour departure rather than a
// plain hotel stay. Tour bookings may still carry a HotelID when the tour's
// accommodation occupies hotel rooms.
func (b Booking) IsTour() bool {
	return b.TourID != ""
}

// CalendarBacked reports whether the booking consumes per-day calendar
// slots. Group tours without accommodation derive their capacity from
// confirmed bookings instead and never touch the calendar.
func (b Booking) CalendarBacked() bool {
	return b.HotelID != ""
}

// Overlaps reports whether the booking's inclusive date range intersects
// [from, to].
func (b Booking) Overlaps(from, to time.Time) bool {
	return !b.EndDate.Before(from) && !b.StartDate.After(to)
}
