package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterServices bundles the service interfaces the router dispatches to.
type RouterServices struct {
	Bookings interface {
		BookingCreator
		BookingReader
		BookingPayer
		BookingCanceller
	}
	Availability AvailabilityReader
	Sweeper      ExpiredSweeper
}

// NewRouter wires all endpoints onto a chi router.
func NewRouter(svcs RouterServices) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthHandler)

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", HandleCreateBooking(svcs.Bookings))
		r.Get("/", HandleListBookings(svcs.Bookings))
		r.Get("/{id}", HandleGetBooking(svcs.Bookings))
		r.Post("/{id}/payment", HandlePayBooking(svcs.Bookings))
		r.Post("/{id}/cancel", HandleCancelBooking(svcs.Bookings))
	})

	r.Get("/availability/{resourceID}", HandleAvailability(svcs.Availability))
	r.Post("/admin/sweep", HandleSweep(svcs.Sweeper))

	return r
}
