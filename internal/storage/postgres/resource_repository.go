package postgres

import (
	"context"
	"fmt"

	"github.com/FlySkyFall/tourism-crimea/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceRepository reads the bookable catalog: tours and hotels.
// Catalog administration is out of scope, so the repository is read-only.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) GetTour(ctx context.Context, id string) (domain.Tour, error) {
	const query = `
SELECT id, title, tour_type, duration_days, base_price, accommodation_type,
       COALESCE(hotel_id::text, ''), season_start, season_end,
       min_group_size, max_group_size, COALESCE(hotel_capacity, 0), is_hot_deal,
       group_discount_enabled, group_discount_min_participants, group_discount_percentage,
       seasonal_discount_enabled, COALESCE(seasonal_discount_start, 'epoch'::date),
       COALESCE(seasonal_discount_end, 'epoch'::date), seasonal_discount_percentage,
       hot_deal_discount_enabled, hot_deal_discount_percentage
FROM tours
WHERE id = $1`

	var t domain.Tour
	err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Type, &t.DurationDays, &t.BasePrice, &t.Accommodation,
		&t.HotelID, &t.SeasonStart, &t.SeasonEnd,
		&t.MinGroupSize, &t.MaxGroupSize, &t.HotelCapacity, &t.IsHotDeal,
		&t.Discounts.Group.Enabled, &t.Discounts.Group.MinParticipants, &t.Discounts.Group.Percentage,
		&t.Discounts.Seasonal.Enabled, &t.Discounts.Seasonal.StartDate,
		&t.Discounts.Seasonal.EndDate, &t.Discounts.Seasonal.Percentage,
		&t.Discounts.HotDeal.Enabled, &t.Discounts.HotDeal.Percentage,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Tour{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Tour{}, domain.ErrTourNotFound
		}
		return domain.Tour{}, fmt.Errorf("get tour: %w", err)
	}
	return t, nil
}

func (r *ResourceRepository) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	const query = `
SELECT id, name, rating, capacity, room_types, base_price
FROM hotels
WHERE id = $1`

	var h domain.Hotel
	var roomTypes []string
	err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&h.ID, &h.Name, &h.Rating, &h.Capacity, &roomTypes, &h.BasePrice,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hotel{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hotel{}, domain.ErrHotelNotFound
		}
		return domain.Hotel{}, fmt.Errorf("get hotel: %w", err)
	}

	h.RoomTypes = make([]domain.RoomType, 0, len(roomTypes))
	for _, rt := range roomTypes {
		h.RoomTypes = append(h.RoomTypes, domain.RoomType(rt))
	}
	return h, nil
}
