package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// ExpiredSweeper is the minimal interface needed to trigger a sweep.
type ExpiredSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HandleSweep returns an HTTP handler that releases and removes expired
// bookings on demand. The same sweep also runs on a background ticker.
func HandleSweep(svc ExpiredSweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		swept, err := svc.Sweep(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sweepResponse{Swept: swept})
	}
}

type sweepResponse struct {
	Swept int `json:"swept"`
}
