package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/clock"
	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/FlySkyFall/tourism-crimea/internal/payment"
	"github.com/FlySkyFall/tourism-crimea/internal/pricing"
)

type TourStore interface {
	GetTour(ctx context.Context, id string) (domain.Tour, error)
}

type HotelStore interface {
	GetHotel(ctx context.Context, id string) (domain.Hotel, error)
}

type BookingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, b domain.Booking) error
	Get(ctx context.Context, id string) (domain.Booking, error)
	GetForUpdate(ctx context.Context, id string) (domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdateState(ctx context.Context, id string, state domain.BookingState) error
	SumConfirmedForTour(ctx context.Context, tourID string, from, to time.Time) (int, error)
}

// UserStore is the user-profile collaborator: the cross-user exclusion
// check and the booking summary mirrored into the profile.
type UserStore interface {
	HasActiveBooking(ctx context.Context, userID string, now time.Time) (bool, error)
	MirrorBooking(ctx context.Context, b domain.Booking) error
	UpdateMirroredState(ctx context.Context, bookingID string, state domain.BookingState) error
	RemoveMirror(ctx context.Context, bookingID string) error
}

// BookingService owns the booking state machine: it creates pending
// bookings after a soft availability check, commits inventory on payment
// and releases it on cancellation.
type BookingService struct {
	tours     TourStore
	hotels    HotelStore
	bookings  BookingStore
	users     UserStore
	allocator *Allocator
	gateway   payment.Gateway
	clock     clock.Clock
	logger    *log.Logger
}

func NewBookingService(
	tours TourStore,
	hotels HotelStore,
	bookings BookingStore,
	users UserStore,
	allocator *Allocator,
	gateway payment.Gateway,
	clk clock.Clock,
	logger *log.Logger,
) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	return &BookingService{
		tours:     tours,
		hotels:    hotels,
		bookings:  bookings,
		users:     users,
		allocator: allocator,
		gateway:   gateway,
		clock:     clk,
		logger:    logger,
	}
}

type CreateBookingInput struct {
	UserID       string
	TourID       string
	HotelID      string
	StartDate    time.Time
	EndDate      time.Time
	Participants int
	RoomType     domain.RoomType
}

// Create validates the request, runs the soft availability check and
// persists a pending booking with its price snapshot. No inventory is
// decremented here; pending bookings only hold a soft claim.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if in.Participants < 1 {
		return domain.Booking{}, domain.ErrInvalidParticipants
	}
	if (in.TourID == "") == (in.HotelID == "") {
		return domain.Booking{}, domain.ErrResourceRequired
	}

	now := s.clock.Now()
	start := domain.Day(in.StartDate)
	var result domain.Booking

	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		active, err := s.users.HasActiveBooking(txCtx, in.UserID, now)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrActiveBookingExists
		}

		var booking domain.Booking
		if in.TourID != "" {
			booking, err = s.planTour(txCtx, in, start)
		} else {
			booking, err = s.planHotelStay(txCtx, in, start)
		}
		if err != nil {
			return err
		}

		booking.ID = newID()
		booking.UserID = in.UserID
		booking.State = domain.StatePendingUnpaid
		booking.CreatedAt = now

		if err := s.bookings.Create(txCtx, booking); err != nil {
			return err
		}
		if err := s.users.MirrorBooking(txCtx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

func (s *BookingService) planTour(ctx context.Context, in CreateBookingInput, start time.Time) (domain.Booking, error) {
	tour, err := s.tours.GetTour(ctx, in.TourID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !tour.InSeason(start) {
		return domain.Booking{}, domain.ErrOutsideSeason
	}
	if in.Participants < tour.MinGroupSize || in.Participants > tour.CapacityLimit() {
		return domain.Booking{}, domain.ErrInvalidParticipants
	}

	var hotel *domain.Hotel
	if tour.RequiresRoom() {
		if !domain.ValidRoomType(in.RoomType) {
			return domain.Booking{}, domain.ErrRoomTypeRequired
		}
		if tour.HotelID != "" {
			h, err := s.hotels.GetHotel(ctx, tour.HotelID)
			if err != nil {
				return domain.Booking{}, err
			}
			if !h.OffersRoomType(in.RoomType) {
				return domain.Booking{}, domain.ErrRoomTypeNotOffered
			}
			hotel = &h
		}
	} else if in.RoomType != "" {
		return domain.Booking{}, domain.ErrRoomTypeNotApplicable
	}

	end := start.AddDate(0, 0, tour.DurationDays-1)

	switch {
	case tour.RequiresRoom() && tour.HotelID != "":
		defaultSlots := hotel.Capacity
		if defaultSlots == 0 {
			defaultSlots = tour.CapacityLimit()
		}
		if _, err := s.allocator.Plan(ctx, tour.HotelID, start, end, in.Participants, defaultSlots); err != nil {
			return domain.Booking{}, err
		}
	case tour.GroupCapacityOnly():
		booked, err := s.bookings.SumConfirmedForTour(ctx, tour.ID, start, end)
		if err != nil {
			return domain.Booking{}, err
		}
		if booked+in.Participants > tour.MaxGroupSize {
			return domain.Booking{}, &domain.CapacityError{Date: start, Available: tour.MaxGroupSize - booked}
		}
	}

	roomType := in.RoomType
	hotelID := ""
	if tour.RequiresRoom() {
		hotelID = tour.HotelID
	} else {
		roomType = ""
	}

	return domain.Booking{
		TourID:       tour.ID,
		HotelID:      hotelID,
		StartDate:    start,
		EndDate:      end,
		Participants: in.Participants,
		RoomType:     roomType,
		TotalPrice:   pricing.TourQuote(tour, hotel, in.Participants, roomType, start),
	}, nil
}

func (s *BookingService) planHotelStay(ctx context.Context, in CreateBookingInput, checkIn time.Time) (domain.Booking, error) {
	hotel, err := s.hotels.GetHotel(ctx, in.HotelID)
	if err != nil {
		return domain.Booking{}, err
	}
	if in.EndDate.IsZero() {
		return domain.Booking{}, domain.ErrInvalidDateRange
	}
	checkOut := domain.Day(in.EndDate)
	if !checkOut.After(checkIn) {
		return domain.Booking{}, domain.ErrInvalidDateRange
	}
	if !domain.ValidRoomType(in.RoomType) {
		return domain.Booking{}, domain.ErrRoomTypeRequired
	}
	if !hotel.OffersRoomType(in.RoomType) {
		return domain.Booking{}, domain.ErrRoomTypeNotOffered
	}
	if in.Participants > hotel.Capacity {
		return domain.Booking{}, domain.ErrInvalidParticipants
	}

	// The check-out day occupies a slot too, keeping capacity in step
	// with the nights+1 price.
	if _, err := s.allocator.Plan(ctx, hotel.ID, checkIn, checkOut, in.Participants, hotel.Capacity); err != nil {
		return domain.Booking{}, err
	}

	return domain.Booking{
		HotelID:      hotel.ID,
		StartDate:    checkIn,
		EndDate:      checkOut,
		Participants: in.Participants,
		RoomType:     in.RoomType,
		TotalPrice:   pricing.HotelQuote(hotel, in.RoomType, in.Participants, checkIn, checkOut),
	}, nil
}

// Pay runs a payment attempt for the booking. On gateway approval the
// reserved days are committed with atomic conditional decrements; if that
// commit loses to a concurrent booking, the partial decrements are
// compensated and the payment is recorded as failed. Declined and raced
// payments leave the booking pending so the user can resubmit.
func (s *BookingService) Pay(ctx context.Context, bookingID, userID string, card payment.Card) (domain.Booking, error) {
	var result domain.Booking
	var payErr error

	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.bookings.GetForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return domain.ErrBookingNotFound
		}
		if !b.State.CanPay() {
			return domain.ErrBookingNotPayable
		}

		approved, err := s.gateway.Attempt(txCtx, card)
		if err != nil {
			return fmt.Errorf("payment attempt: %w", err)
		}
		if !approved {
			if err := s.setState(txCtx, &b, domain.StatePaymentFailed); err != nil {
				return err
			}
			result, payErr = b, domain.ErrPaymentDeclined
			return nil
		}

		if b.CalendarBacked() {
			if err := s.allocator.Commit(txCtx, calendarIntent(b)); err != nil {
				if !errors.Is(err, domain.ErrCommitRace) {
					return err
				}
				if err := s.setState(txCtx, &b, domain.StatePaymentFailed); err != nil {
					return err
				}
				result, payErr = b, domain.ErrCommitRace
				return nil
			}
		}

		if err := s.setState(txCtx, &b, domain.StateConfirmed); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, payErr
}

// Cancel cancels a pending booking. Confirmed bookings are terminal for
// the user and cannot be self-cancelled. A pending booking whose payment
// completed still holds committed inventory and is released first.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID string) error {
	return s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.bookings.GetForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return domain.ErrBookingNotFound
		}
		if !b.State.CanCancel() {
			return domain.ErrBookingNotCancellable
		}

		if b.State.Committed() && b.CalendarBacked() {
			if err := s.allocator.Release(txCtx, calendarIntent(b)); err != nil {
				return err
			}
		}
		return s.setState(txCtx, &b, domain.StateCancelled)
	})
}

// Get returns the user's booking or ErrBookingNotFound.
func (s *BookingService) Get(ctx context.Context, bookingID, userID string) (domain.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.UserID != userID {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

// ListForUser returns all of the user's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) setState(ctx context.Context, b *domain.Booking, to domain.BookingState) error {
	if !b.State.CanTransition(to) {
		return fmt.Errorf("booking %s: transition %s -> %s: %w", b.ID, b.State, to, domain.ErrCorruptState)
	}
	if err := s.bookings.UpdateState(ctx, b.ID, to); err != nil {
		return err
	}
	if err := s.users.UpdateMirroredState(ctx, b.ID, to); err != nil {
		return err
	}
	b.State = to
	return nil
}
