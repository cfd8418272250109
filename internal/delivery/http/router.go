package http

import (
	"net/http"

	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	doctorHandler      *handler.DoctorHandler
	profileHandler     *handler.ProfileHandler
	bookingHandler     *handler.BookingHandler
	appointmentHandler *handler.AppointmentHandler
	streamHandler      *handler.StreamHandler
	metricsHandler     http.Handler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	profileHandler *handler.ProfileHandler,
	bookingHandler *handler.BookingHandler,
	appointmentHandler *handler.AppointmentHandler,
	streamHandler *handler.StreamHandler,
	metricsHandler http.Handler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		doctorHandler:      doctorHandler,
		profileHandler:     profileHandler,
		bookingHandler:     bookingHandler,
		appointmentHandler: appointmentHandler,
		streamHandler:      streamHandler,
		metricsHandler:     metricsHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Prometheus scrape endpoint, outside the API prefix
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/doctor/login", r.authHandler.DoctorLogin).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Signed-out callers get the auth root stack
	authOptional := api.PathPrefix("/auth").Subrouter()
	authOptional.Use(r.authMiddleware.Identify)
	authOptional.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Everything below needs a session
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Doctor directory
	protected.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/search", r.doctorHandler.SearchDoctors).Methods(http.MethodGet)
	protected.Handle("/doctors/me", middleware.RequireDoctor(http.HandlerFunc(r.doctorHandler.UpdateMyProfile))).Methods(http.MethodPut)
	protected.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Profile
	protected.HandleFunc("/profile", r.profileHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", r.profileHandler.UpdateProfile).Methods(http.MethodPut)

	// Booking workflow (patient side)
	patient := protected.NewRoute().Subrouter()
	patient.Use(middleware.RequireRole(entity.RolePatient))
	patient.HandleFunc("/bookings/options", r.bookingHandler.GetOptions).Methods(http.MethodGet)
	patient.HandleFunc("/checkout/preview", r.bookingHandler.PreviewCheckout).Methods(http.MethodPost)
	patient.HandleFunc("/bookings", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	patient.HandleFunc("/bookings", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	patient.HandleFunc("/bookings/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPost)
	patient.HandleFunc("/stream/bookings", r.streamHandler.MyBookings).Methods(http.MethodGet)

	// Either side of a booking; after the patient routes so /bookings/options wins
	protected.HandleFunc("/bookings/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)

	// Doctor panel
	doctor := protected.NewRoute().Subrouter()
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments", r.appointmentHandler.GetAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)
	doctor.HandleFunc("/stream/appointments", r.streamHandler.Appointments).Methods(http.MethodGet)

	// Snapshot streams (websocket)
	protected.HandleFunc("/stream/doctors", r.streamHandler.Doctors).Methods(http.MethodGet)

	return r.router
}

// Handler wraps the routes in CORS. Preflight requests never match a route's method, so
// router-level middleware would not see them.
func (r *Router) Handler() http.Handler {
	return r.corsMiddleware.Handle(r.Setup())
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
