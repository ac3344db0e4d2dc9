package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/FlySkyFall/tourism-crimea/internal/app"
	"github.com/go-chi/chi/v5"
)

// AvailabilityReader is the minimal interface needed to answer
// availability queries.
type AvailabilityReader interface {
	Resource(ctx context.Context, resourceID string, from, to time.Time) ([]app.DayAvailability, error)
}

// HandleAvailability returns an HTTP handler for the per-day availability
// of one resource over a date range.
func HandleAvailability(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "from must be a YYYY-MM-DD date")
			return
		}
		to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "to must be a YYYY-MM-DD date")
			return
		}

		days, err := svc.Resource(r.Context(), chi.URLParam(r, "resourceID"), from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]dayAvailabilityResponse, 0, len(days))
		for _, d := range days {
			resp = append(resp, dayAvailabilityResponse{
				Date:           d.Date.Format(dateLayout),
				AvailableSlots: d.AvailableSlots,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type dayAvailabilityResponse struct {
	Date           string `json:"date"`
	AvailableSlots int    `json:"available_slots"`
}
