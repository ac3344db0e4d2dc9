package app

import (
	"context"
	"errors"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

// AvailabilityBookingStore is the slice of booking persistence the
// availability view needs: confirmed bookings overlapping a range, used
// to derive group-tour capacity.
type AvailabilityBookingStore interface {
	ListConfirmedForTour(ctx context.Context, tourID string, from, to time.Time) ([]domain.Booking, error)
}

// DayAvailability is one day of the public availability calendar.
type DayAvailability struct {
	Date           time.Time
	AvailableSlots int
}

// AvailabilityService answers "how many slots are free on each day" for
// both hotels (calendar-backed) and tours (calendar-backed via their
// hotel, or derived from confirmed bookings for group tours).
type AvailabilityService struct {
	tours     TourStore
	hotels    HotelStore
	bookings  AvailabilityBookingStore
	allocator *Allocator
}

func NewAvailabilityService(
	tours TourStore,
	hotels HotelStore,
	bookings AvailabilityBookingStore,
	allocator *Allocator,
) *AvailabilityService {
	return &AvailabilityService{
		tours:     tours,
		hotels:    hotels,
		bookings:  bookings,
		allocator: allocator,
	}
}

// Resource resolves resourceID as a hotel first, then as a tour, and
// returns per-day availability over [from, to]. Missing calendar days are
// materialized at static capacity on read.
func (s *AvailabilityService) Resource(ctx context.Context, resourceID string, from, to time.Time) ([]DayAvailability, error) {
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}

	hotel, err := s.hotels.GetHotel(ctx, resourceID)
	if err == nil {
		return s.calendarDays(ctx, hotel.ID, from, to, hotel.Capacity)
	}
	if !errors.Is(err, domain.ErrHotelNotFound) {
		return nil, err
	}

	tour, err := s.tours.GetTour(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if tour.RequiresRoom() && tour.HotelID != "" {
		defaultSlots := tour.CapacityLimit()
		if h, err := s.hotels.GetHotel(ctx, tour.HotelID); err == nil {
			defaultSlots = h.Capacity
		}
		return s.calendarDays(ctx, tour.HotelID, from, to, defaultSlots)
	}
	return s.groupDays(ctx, tour, from, to)
}

func (s *AvailabilityService) calendarDays(ctx context.Context, resourceID string, from, to time.Time, defaultSlots int) ([]DayAvailability, error) {
	entries, err := s.allocator.Materialize(ctx, resourceID, from, to, defaultSlots)
	if err != nil {
		return nil, err
	}
	days := make([]DayAvailability, 0, len(entries))
	for _, e := range entries {
		days = append(days, DayAvailability{Date: e.Date, AvailableSlots: e.AvailableSlots})
	}
	return days, nil
}

// groupDays derives per-day slots for group tours by subtracting the
// participants of confirmed overlapping departures from the group size.
// There is no stored counter for these tours.
func (s *AvailabilityService) groupDays(ctx context.Context, tour domain.Tour, from, to time.Time) ([]DayAvailability, error) {
	confirmed, err := s.bookings.ListConfirmedForTour(ctx, tour.ID, from, to)
	if err != nil {
		return nil, err
	}

	var days []DayAvailability
	for _, day := range domain.DaysBetween(from, to) {
		booked := 0
		for _, b := range confirmed {
			if b.Overlaps(day, day) {
				booked += b.Participants
			}
		}
		slots := tour.MaxGroupSize - booked
		if slots < 0 {
			slots = 0
		}
		days = append(days, DayAvailability{Date: day, AvailableSlots: slots})
	}
	return days, nil
}
