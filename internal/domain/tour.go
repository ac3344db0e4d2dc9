package domain

import "time"

type TourType string

const (
	TourTypeActive    TourType = "active"
	TourTypePassive   TourType = "passive"
	TourTypeCamping   TourType = "camping"
	TourTypeExcursion TourType = "excursion"
	TourTypeHealth    TourType = "health"
)

type AccommodationType string

const (
	AccommodationHotel      AccommodationType = "hotel"
	AccommodationSanatorium AccommodationType = "sanatorium"
	AccommodationCamping    AccommodationType = "camping"
	AccommodationRetreat    AccommodationType = "retreat"
	AccommodationNone       AccommodationType = "none"
)

// GroupDiscount applies when a party reaches the configured size.
type GroupDiscount struct {
	Enabled         bool
	MinParticipants int
	Percentage      float64
}

// SeasonalDiscount applies when the booking date falls inside its window.
type SeasonalDiscount struct {
	Enabled    bool
	StartDate  time.Time
	EndDate    time.Time
	Percentage float64
}

// HotDealDiscount applies only to tours flagged as hot deals.
type HotDealDiscount struct {
	Enabled    bool
	Percentage float64
}

type Discounts struct {
	Group    GroupDiscount
	Seasonal SeasonalDiscount
	HotDeal  HotDealDiscount
}

// Tour is a bookable multi-day trip, optionally backed by a hotel whose
// room calendar limits how many participants can travel on each date.
type Tour struct {
	ID            string
	Title         string
	Type          TourType
	DurationDays  int
	BasePrice     int64
	Accommodation AccommodationType
	HotelID       string
	SeasonStart   time.Time
	SeasonEnd     time.Time
	MinGroupSize  int
	MaxGroupSize  int
	HotelCapacity int
	IsHotDeal     bool
	Discounts     Discounts
}

// RequiresRoom reports whether bookings for this tour must pick a room type.
func (t Tour) RequiresRoom() bool {
	return t.Accommodation == AccommodationHotel || t.Accommodation == AccommodationSanatorium
}

// GroupCapacityOnly reports whether capacity is derived from confirmed
// overlapping bookings instead of a hotel calendar. This is the case for
// tours that carry their own group (no hotel rooms to run out of).
func (t Tour) GroupCapacityOnly() bool {
	return t.Accommodation == AccommodationNone &&
		t.Type != TourTypePassive && t.Type != TourTypeHealth
}

// CapacityLimit is the static upper bound on participants for one booking.
// Passive and health tours are bounded by the rooms reserved at the hotel,
// everything else by the group size.
func (t Tour) CapacityLimit() int {
	if t.Type == TourTypePassive || t.Type == TourTypeHealth {
		return t.HotelCapacity
	}
	return t.MaxGroupSize
}

// InSeason reports whether the start date falls inside the tour's season.
func (t Tour) InSeason(start time.Time) bool {
	return !start.Before(t.SeasonStart) && !start.After(t.SeasonEnd)
}
