// Package pricing computes booking totals. All functions are pure: the
// same inputs always produce the same integer price, so a booking can be
// re-priced idempotently and tests can assert exact values.
package pricing

import (
	"math"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
)

// TourQuote prices a tour booking. The three discount rules are evaluated
// independently and the largest applicable percentage wins; discounts are
// never cumulative. The room-type markup, when the tour's accommodation
// requires a room, is applied after the discount.
func TourQuote(tour domain.Tour, hotel *domain.Hotel, participants int, roomType domain.RoomType, date time.Time) int64 {
	total := float64(tour.BasePrice) * float64(participants)

	if pct := discountPercent(tour, participants, date); pct > 0 {
		total *= 1 - pct/100
	}

	if tour.RequiresRoom() && roomType != "" && hotel != nil {
		total *= roomMarkup(roomType, hotel.Rating)
	}

	return int64(math.Round(total))
}

// HotelQuote prices a hotel stay. The stay bills nights+1: the check-out
// day counts as a night, mirroring the inclusive capacity range so price
// and inventory cover the same days.
func HotelQuote(hotel domain.Hotel, roomType domain.RoomType, participants int, checkIn, checkOut time.Time) int64 {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	base := float64(hotel.BasePrice) * roomMarkup(roomType, hotel.Rating)
	return int64(math.Round(base * float64(nights+1) * float64(participants)))
}

func discountPercent(tour domain.Tour, participants int, date time.Time) float64 {
	var pct float64

	group := tour.Discounts.Group
	if group.Enabled && participants >= group.MinParticipants {
		pct = math.Max(pct, group.Percentage)
	}

	seasonal := tour.Discounts.Seasonal
	if seasonal.Enabled && !date.Before(seasonal.StartDate) && !date.After(seasonal.EndDate) {
		pct = math.Max(pct, seasonal.Percentage)
	}

	hotDeal := tour.Discounts.HotDeal
	if hotDeal.Enabled && tour.IsHotDeal {
		pct = math.Max(pct, hotDeal.Percentage)
	}

	return pct
}

func roomMarkup(roomType domain.RoomType, rating float64) float64 {
	switch roomType {
	case domain.RoomStandardWithAC:
		return 1.10
	case domain.RoomLuxury:
		if rating > 4 {
			return 1.30
		}
		return 1.20
	default:
		return 1.0
	}
}
