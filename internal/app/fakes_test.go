package app

import (
	"context"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

// In-memory fakes shared by the app-layer tests.

type fakeCalendar struct {
	slots  map[string]int
	failOn map[string]error
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		slots:  make(map[string]int),
		failOn: make(map[string]error),
	}
}

func calKey(resourceID string, day time.Time) string {
	return resourceID + "|" + domain.Day(day).Format(time.DateOnly)
}

func (f *fakeCalendar) set(resourceID string, day time.Time, slots int) {
	f.slots[calKey(resourceID, day)] = slots
}

func (f *fakeCalendar) at(resourceID string, day time.Time) (int, bool) {
	n, ok := f.slots[calKey(resourceID, day)]
	return n, ok
}

func (f *fakeCalendar) GetOrCreate(_ context.Context, resourceID string, day time.Time, defaultSlots int) (domain.CalendarEntry, error) {
	key := calKey(resourceID, day)
	if _, ok := f.slots[key]; !ok {
		f.slots[key] = defaultSlots
	}
	return domain.CalendarEntry{
		ResourceID:     resourceID,
		Date:           domain.Day(day),
		AvailableSlots: f.slots[key],
	}, nil
}

func (f *fakeCalendar) AdjustSlots(_ context.Context, resourceID string, day time.Time, delta int) error {
	key := calKey(resourceID, day)
	if err, ok := f.failOn[key]; ok {
		return err
	}
	current, ok := f.slots[key]
	if !ok {
		return domain.ErrCalendarEntryNotFound
	}
	if current+delta < 0 {
		return &domain.CapacityError{Date: domain.Day(day), Available: current}
	}
	f.slots[key] = current + delta
	return nil
}

func (f *fakeCalendar) Range(_ context.Context, resourceID string, from, to time.Time) ([]domain.CalendarEntry, error) {
	var entries []domain.CalendarEntry
	for _, day := range domain.DaysBetween(from, to) {
		if n, ok := f.slots[calKey(resourceID, day)]; ok {
			entries = append(entries, domain.CalendarEntry{ResourceID: resourceID, Date: day, AvailableSlots: n})
		}
	}
	return entries, nil
}

type fakeTours struct {
	tours map[string]domain.Tour
}

func newFakeTours(tours ...domain.Tour) *fakeTours {
	m := make(map[string]domain.Tour, len(tours))
	for _, t := range tours {
		m[t.ID] = t
	}
	return &fakeTours{tours: m}
}

func (f *fakeTours) GetTour(_ context.Context, id string) (domain.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return domain.Tour{}, domain.ErrTourNotFound
	}
	return t, nil
}

type fakeHotels struct {
	hotels map[string]domain.Hotel
}

func newFakeHotels(hotels ...domain.Hotel) *fakeHotels {
	m := make(map[string]domain.Hotel, len(hotels))
	for _, h := range hotels {
		m[h.ID] = h
	}
	return &fakeHotels{hotels: m}
}

func (f *fakeHotels) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrHotelNotFound
	}
	return h, nil
}

type fakeBookingStore struct {
	bookings map[string]domain.Booking
	// tour durations back the effective-end-date join in ListExpired.
	tours map[string]domain.Tour
}

func newFakeBookingStore(tours *fakeTours) *fakeBookingStore {
	m := make(map[string]domain.Tour)
	if tours != nil {
		m = tours.tours
	}
	return &fakeBookingStore{
		bookings: make(map[string]domain.Booking),
		tours:    m,
	}
}

func (f *fakeBookingStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeBookingStore) Create(_ context.Context, b domain.Booking) error {
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookingStore) Get(_ context.Context, id string) (domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingStore) GetForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	return f.Get(ctx, id)
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateState(_ context.Context, id string, state domain.BookingState) error {
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.State = state
	f.bookings[id] = b
	return nil
}

func (f *fakeBookingStore) Delete(_ context.Context, id string) error {
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookingStore) SumConfirmedForTour(_ context.Context, tourID string, from, to time.Time) (int, error) {
	total := 0
	for _, b := range f.bookings {
		if b.TourID == tourID && b.State == domain.StateConfirmed && b.Overlaps(from, to) {
			total += b.Participants
		}
	}
	return total, nil
}

func (f *fakeBookingStore) ListConfirmedForTour(_ context.Context, tourID string, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.TourID == tourID && b.State == domain.StateConfirmed && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListExpired(_ context.Context, now time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.State == domain.StateCancelled {
			continue
		}
		effectiveEnd := b.EndDate
		if b.IsTour() {
			if t, ok := f.tours[b.TourID]; ok {
				effectiveEnd = b.StartDate.AddDate(0, 0, t.DurationDays)
			}
		}
		if !effectiveEnd.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeUsers struct {
	store   *fakeBookingStore
	mirrors map[string]domain.BookingState
}

func newFakeUsers(store *fakeBookingStore) *fakeUsers {
	return &fakeUsers{store: store, mirrors: make(map[string]domain.BookingState)}
}

func (f *fakeUsers) HasActiveBooking(_ context.Context, userID string, now time.Time) (bool, error) {
	for _, b := range f.store.bookings {
		if b.UserID == userID && b.State.Active() && !b.EndDate.Before(domain.Day(now)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) MirrorBooking(_ context.Context, b domain.Booking) error {
	f.mirrors[b.ID] = b.State
	return nil
}

func (f *fakeUsers) UpdateMirroredState(_ context.Context, bookingID string, state domain.BookingState) error {
	f.mirrors[bookingID] = state
	return nil
}

func (f *fakeUsers) RemoveMirror(_ context.Context, bookingID string) error {
	delete(f.mirrors, bookingID)
	return nil
}
