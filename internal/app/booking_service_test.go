package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/clock"
	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/FlySkyFall/tourism-crimea/internal/payment"
)

var (
	testNow   = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	testStart = time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
)

func testHotel() domain.Hotel {
	return domain.Hotel{
		ID:        "hotel-1",
		Name:      "Primorskaya",
		Rating:    4.5,
		Capacity:  10,
		RoomTypes: []domain.RoomType{domain.RoomStandard, domain.RoomStandardWithAC, domain.RoomLuxury},
		BasePrice: 5000,
	}
}

func testTour() domain.Tour {
	return domain.Tour{
		ID:            "tour-1",
		Title:         "Health retreat",
		Type:          domain.TourTypePassive,
		DurationDays:  3,
		BasePrice:     10000,
		Accommodation: domain.AccommodationHotel,
		HotelID:       "hotel-1",
		SeasonStart:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SeasonEnd:     time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		MinGroupSize:  1,
		MaxGroupSize:  20,
		HotelCapacity: 10,
		Discounts: domain.Discounts{
			Group: domain.GroupDiscount{Enabled: true, MinParticipants: 5, Percentage: 10},
		},
	}
}

func groupTour() domain.Tour {
	t := testTour()
	t.ID = "tour-2"
	t.Type = domain.TourTypeActive
	t.Accommodation = domain.AccommodationNone
	t.HotelID = ""
	t.MaxGroupSize = 8
	return t
}

type testEnv struct {
	svc      *BookingService
	cal      *fakeCalendar
	bookings *fakeBookingStore
	users    *fakeUsers
}

func newTestEnv(gateway payment.Gateway) testEnv {
	tours := newFakeTours(testTour(), groupTour())
	hotels := newFakeHotels(testHotel())
	bookings := newFakeBookingStore(tours)
	users := newFakeUsers(bookings)
	cal := newFakeCalendar()
	allocator := NewAllocator(cal, nil)

	svc := NewBookingService(tours, hotels, bookings, users, allocator, gateway, clock.NewFixed(testNow), nil)
	return testEnv{svc: svc, cal: cal, bookings: bookings, users: users}
}

func mustCreate(t *testing.T, env testEnv, in CreateBookingInput) domain.Booking {
	t.Helper()
	b, err := env.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestBookingServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("tour booking is pending with a price snapshot", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		b := mustCreate(t, env, CreateBookingInput{
			UserID:       "u1",
			TourID:       "tour-1",
			StartDate:    testStart,
			Participants: 6,
			RoomType:     domain.RoomLuxury,
		})

		if b.State != domain.StatePendingUnpaid {
			t.Fatalf("expected pending/pending, got %s", b.State)
		}
		if wantEnd := testStart.AddDate(0, 0, 2); !b.EndDate.Equal(wantEnd) {
			t.Fatalf("expected end %s, got %s", wantEnd.Format(time.DateOnly), b.EndDate.Format(time.DateOnly))
		}
		// 6 participants at 10000, 10% group discount, luxury markup 1.30.
		if want := int64(math.Round(10000 * 6 * 0.9 * 1.30)); b.TotalPrice != want {
			t.Fatalf("expected price %d, got %d", want, b.TotalPrice)
		}
		// Soft claim only: days exist at full capacity.
		for _, day := range domain.DaysBetween(b.StartDate, b.EndDate) {
			if n, ok := env.cal.at("hotel-1", day); !ok || n != 10 {
				t.Fatalf("expected %s at 10 slots, got %d (exists=%v)", day.Format(time.DateOnly), n, ok)
			}
		}
		if _, ok := env.users.mirrors[b.ID]; !ok {
			t.Fatalf("expected booking mirrored to user profile")
		}
	})

	t.Run("start outside season rejected", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID:       "u1",
			TourID:       "tour-1",
			StartDate:    time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
			Participants: 2,
			RoomType:     domain.RoomStandard,
		})
		if !errors.Is(err, domain.ErrOutsideSeason) {
			t.Fatalf("expected ErrOutsideSeason, got %v", err)
		}
	})

	t.Run("room type rules", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
		})
		if !errors.Is(err, domain.ErrRoomTypeRequired) {
			t.Fatalf("expected ErrRoomTypeRequired, got %v", err)
		}

		_, err = env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "tour-2", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})
		if !errors.Is(err, domain.ErrRoomTypeNotApplicable) {
			t.Fatalf("expected ErrRoomTypeNotApplicable, got %v", err)
		}
	})

	t.Run("second active booking rejected", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", HotelID: "hotel-1", StartDate: testStart,
			EndDate: testStart.AddDate(0, 0, 2), Participants: 1,
			RoomType: domain.RoomStandard,
		})
		if !errors.Is(err, domain.ErrActiveBookingExists) {
			t.Fatalf("expected ErrActiveBookingExists, got %v", err)
		}
	})

	t.Run("insufficient day reported with availability", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		short := testStart.AddDate(0, 0, 1)
		env.cal.set("hotel-1", short, 1)

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})
		var capErr *domain.CapacityError
		if !errors.As(err, &capErr) {
			t.Fatalf("expected CapacityError, got %v", err)
		}
		if !capErr.Date.Equal(short) || capErr.Available != 1 {
			t.Fatalf("expected day %s with 1 slot, got %s with %d",
				short.Format(time.DateOnly), capErr.Date.Format(time.DateOnly), capErr.Available)
		}
	})

	t.Run("group tour capacity derived from confirmed bookings", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		env.bookings.bookings["b-existing"] = domain.Booking{
			ID: "b-existing", UserID: "other", TourID: "tour-2",
			StartDate: testStart, EndDate: testStart.AddDate(0, 0, 2),
			Participants: 6, State: domain.StateConfirmed,
		}

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "tour-2", StartDate: testStart, Participants: 3,
		})
		if !errors.Is(err, domain.ErrInsufficientCapacity) {
			t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
		}

		if _, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "tour-2", StartDate: testStart, Participants: 2,
		}); err != nil {
			t.Fatalf("expected 2 participants to fit, got %v", err)
		}
	})

	t.Run("hotel stay validations and nights+1 price", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", HotelID: "hotel-1", StartDate: testStart, EndDate: testStart,
			Participants: 1, RoomType: domain.RoomStandard,
		})
		if !errors.Is(err, domain.ErrInvalidDateRange) {
			t.Fatalf("expected ErrInvalidDateRange, got %v", err)
		}

		_, err = env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", HotelID: "hotel-1", StartDate: testStart,
			EndDate: testStart.AddDate(0, 0, 2), Participants: 11,
			RoomType: domain.RoomStandard,
		})
		if !errors.Is(err, domain.ErrInvalidParticipants) {
			t.Fatalf("expected ErrInvalidParticipants, got %v", err)
		}

		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", HotelID: "hotel-1", StartDate: testStart,
			EndDate: testStart.AddDate(0, 0, 2), Participants: 2,
			RoomType: domain.RoomStandard,
		})
		// Check-in D, check-out D+2: three billable nights.
		if want := int64(5000 * 3 * 2); b.TotalPrice != want {
			t.Fatalf("expected price %d, got %d", want, b.TotalPrice)
		}
	})

	t.Run("unknown resources", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		_, err := env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", TourID: "missing", StartDate: testStart, Participants: 1,
		})
		if !errors.Is(err, domain.ErrTourNotFound) {
			t.Fatalf("expected ErrTourNotFound, got %v", err)
		}

		_, err = env.svc.Create(context.Background(), CreateBookingInput{
			UserID: "u1", StartDate: testStart, Participants: 1,
		})
		if !errors.Is(err, domain.ErrResourceRequired) {
			t.Fatalf("expected ErrResourceRequired, got %v", err)
		}
	})
}

func TestBookingServicePay(t *testing.T) {
	t.Parallel()

	card := payment.Card{Number: "4242424242424242", Holder: "IVAN PETROV", Expiry: "12/27", CVV: "123"}

	t.Run("approved payment commits inventory and confirms", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 3,
			RoomType: domain.RoomStandard,
		})

		paid, err := env.svc.Pay(context.Background(), b.ID, "u1", card)
		if err != nil {
			t.Fatalf("pay: %v", err)
		}
		if paid.State != domain.StateConfirmed {
			t.Fatalf("expected confirmed/completed, got %s", paid.State)
		}
		for _, day := range domain.DaysBetween(b.StartDate, b.EndDate) {
			if n, _ := env.cal.at("hotel-1", day); n != 7 {
				t.Fatalf("expected 7 slots on %s, got %d", day.Format(time.DateOnly), n)
			}
		}
		if env.users.mirrors[b.ID] != domain.StateConfirmed {
			t.Fatalf("expected mirror updated to confirmed")
		}
	})

	t.Run("declined payment leaves inventory untouched", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: false})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 3,
			RoomType: domain.RoomStandard,
		})

		failed, err := env.svc.Pay(context.Background(), b.ID, "u1", card)
		if !errors.Is(err, domain.ErrPaymentDeclined) {
			t.Fatalf("expected ErrPaymentDeclined, got %v", err)
		}
		if failed.State != domain.StatePaymentFailed {
			t.Fatalf("expected pending/failed, got %s", failed.State)
		}
		for _, day := range domain.DaysBetween(b.StartDate, b.EndDate) {
			if n, _ := env.cal.at("hotel-1", day); n != 10 {
				t.Fatalf("expected slots untouched on %s, got %d", day.Format(time.DateOnly), n)
			}
		}
	})

	t.Run("commit race compensates and fails the payment", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})

		// A concurrent commit drains the last day between check and pay.
		env.cal.set("hotel-1", b.EndDate, 1)

		failed, err := env.svc.Pay(context.Background(), b.ID, "u1", card)
		if !errors.Is(err, domain.ErrCommitRace) {
			t.Fatalf("expected ErrCommitRace, got %v", err)
		}
		if failed.State != domain.StatePaymentFailed {
			t.Fatalf("expected pending/failed, got %s", failed.State)
		}
		// Net capacity change is zero for the raced booking.
		if n, _ := env.cal.at("hotel-1", b.StartDate); n != 10 {
			t.Fatalf("expected first day back to 10, got %d", n)
		}
	})

	t.Run("failed payment can be retried", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 1,
			RoomType: domain.RoomStandard,
		})
		if err := env.bookings.UpdateState(context.Background(), b.ID, domain.StatePaymentFailed); err != nil {
			t.Fatalf("seed failed state: %v", err)
		}

		paid, err := env.svc.Pay(context.Background(), b.ID, "u1", card)
		if err != nil {
			t.Fatalf("retry pay: %v", err)
		}
		if paid.State != domain.StateConfirmed {
			t.Fatalf("expected confirmed after retry, got %s", paid.State)
		}
	})

	t.Run("confirmed booking cannot be paid again", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 1,
			RoomType: domain.RoomStandard,
		})
		if _, err := env.svc.Pay(context.Background(), b.ID, "u1", card); err != nil {
			t.Fatalf("pay: %v", err)
		}

		if _, err := env.svc.Pay(context.Background(), b.ID, "u1", card); !errors.Is(err, domain.ErrBookingNotPayable) {
			t.Fatalf("expected ErrBookingNotPayable, got %v", err)
		}
	})

	t.Run("another user's booking is invisible", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 1,
			RoomType: domain.RoomStandard,
		})

		if _, err := env.svc.Pay(context.Background(), b.ID, "u2", card); !errors.Is(err, domain.ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})
}

func TestBookingServiceCancel(t *testing.T) {
	t.Parallel()

	card := payment.Card{Number: "4242424242424242", Holder: "IVAN PETROV", Expiry: "12/27", CVV: "123"}

	t.Run("pending unpaid cancels without touching inventory", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})

		if err := env.svc.Cancel(context.Background(), b.ID, "u1"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, _ := env.bookings.Get(context.Background(), b.ID)
		if got.State != domain.StateCancelled {
			t.Fatalf("expected cancelled, got %s", got.State)
		}
		if n, _ := env.cal.at("hotel-1", b.StartDate); n != 10 {
			t.Fatalf("expected slots untouched, got %d", n)
		}
	})

	t.Run("confirmed booking cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})
		if _, err := env.svc.Pay(context.Background(), b.ID, "u1", card); err != nil {
			t.Fatalf("pay: %v", err)
		}

		if err := env.svc.Cancel(context.Background(), b.ID, "u1"); !errors.Is(err, domain.ErrBookingNotCancellable) {
			t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
		}
	})

	t.Run("pending booking with completed payment releases inventory", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})

		// Legacy-reachable state: payment completed without the status
		// advancing. Inventory was committed for it.
		start := testStart
		end := testStart.AddDate(0, 0, 2)
		for _, day := range domain.DaysBetween(start, end) {
			env.cal.set("hotel-1", day, 8)
		}
		env.bookings.bookings["b-legacy"] = domain.Booking{
			ID: "b-legacy", UserID: "u1", HotelID: "hotel-1",
			StartDate: start, EndDate: end, Participants: 2,
			RoomType: domain.RoomStandard, State: domain.StatePendingPaid,
		}

		if err := env.svc.Cancel(context.Background(), "b-legacy", "u1"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		for _, day := range domain.DaysBetween(start, end) {
			if n, _ := env.cal.at("hotel-1", day); n != 10 {
				t.Fatalf("expected release back to 10 on %s, got %d", day.Format(time.DateOnly), n)
			}
		}
	})

	t.Run("cancelling twice is rejected", func(t *testing.T) {
		env := newTestEnv(payment.Static{Approve: true})
		b := mustCreate(t, env, CreateBookingInput{
			UserID: "u1", TourID: "tour-1", StartDate: testStart, Participants: 2,
			RoomType: domain.RoomStandard,
		})

		if err := env.svc.Cancel(context.Background(), b.ID, "u1"); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		if err := env.svc.Cancel(context.Background(), b.ID, "u1"); !errors.Is(err, domain.ErrBookingNotCancellable) {
			t.Fatalf("expected second cancel rejected, got %v", err)
		}
	})
}
