package http

import (
	"net/http"

	"clinic-calendar/internal/delivery/http/handler"
	"clinic-calendar/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router           *mux.Router
	healthHandler    *handler.HealthHandler
	authHandler      *handler.AuthHandler
	calendarHandler  *handler.CalendarHandler
	socketHandler    *handler.CalendarSocketHandler
	doctorHandler    *handler.DoctorHandler
	patientHandler   *handler.PatientHandler
	receptionHandler *handler.ReceptionHandler
	auditLogHandler  *handler.AuditLogHandler
	authMiddleware   *middleware.AuthMiddleware
	corsMiddleware   *middleware.CORSMiddleware
}

func NewRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	calendarHandler *handler.CalendarHandler,
	socketHandler *handler.CalendarSocketHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	receptionHandler *handler.ReceptionHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		healthHandler:    healthHandler,
		authHandler:      authHandler,
		calendarHandler:  calendarHandler,
		socketHandler:    socketHandler,
		doctorHandler:    doctorHandler,
		patientHandler:   patientHandler,
		receptionHandler: receptionHandler,
		auditLogHandler:  auditLogHandler,
		authMiddleware:   authMiddleware,
		corsMiddleware:   corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Calendar routes (any signed-in role, filtered per role by the usecase)
	calendar := api.PathPrefix("/calendar").Subrouter()
	calendar.Use(r.authMiddleware.Authenticate)
	calendar.HandleFunc("/events", r.calendarHandler.GetEvents).Methods(http.MethodGet)
	calendar.HandleFunc("/reload", r.calendarHandler.Reload).Methods(http.MethodPost)
	calendar.HandleFunc("/resources", r.calendarHandler.GetResources).Methods(http.MethodGet)
	calendar.HandleFunc("/state", r.calendarHandler.GetState).Methods(http.MethodGet)
	calendar.HandleFunc("/view", r.calendarHandler.SetView).Methods(http.MethodPut)
	calendar.HandleFunc("/filters/doctors", r.calendarHandler.SetDoctorFilter).Methods(http.MethodPut)
	calendar.HandleFunc("/filters/search", r.calendarHandler.SetSearch).Methods(http.MethodPut)
	calendar.HandleFunc("/interactions/date-click", r.calendarHandler.DateClick).Methods(http.MethodPost)
	calendar.HandleFunc("/interactions/select", r.calendarHandler.Select).Methods(http.MethodPost)
	calendar.HandleFunc("/interactions/event-click", r.calendarHandler.EventClick).Methods(http.MethodPost)
	calendar.HandleFunc("/interactions/event-drop", r.calendarHandler.EventDrop).Methods(http.MethodPost)
	calendar.HandleFunc("/interactions/event-resize", r.calendarHandler.EventResize).Methods(http.MethodPost)
	calendar.HandleFunc("/draft", r.calendarHandler.UpdateDraft).Methods(http.MethodPut)
	calendar.HandleFunc("/draft/save", r.calendarHandler.SaveDraft).Methods(http.MethodPost)
	calendar.HandleFunc("/draft/delete", r.calendarHandler.DeleteDraft).Methods(http.MethodPost)
	calendar.HandleFunc("/draft/cancel", r.calendarHandler.CancelDraft).Methods(http.MethodPost)
	calendar.HandleFunc("/annotations", r.calendarHandler.AddAnnotation).Methods(http.MethodPost)
	calendar.HandleFunc("/annotations/{id}", r.calendarHandler.RemoveAnnotation).Methods(http.MethodDelete)
	calendar.HandleFunc("/ws", r.socketHandler.Connect).Methods(http.MethodGet)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments", r.doctorHandler.GetAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/confirm", r.doctorHandler.Confirm).Methods(http.MethodPatch)
	doctor.HandleFunc("/appointments/{id}/complete", r.doctorHandler.Complete).Methods(http.MethodPatch)
	doctor.HandleFunc("/appointments/{id}/no-show", r.doctorHandler.MarkNoShow).Methods(http.MethodPatch)
	doctor.HandleFunc("/blocked-time", r.doctorHandler.BlockTime).Methods(http.MethodPost)
	doctor.HandleFunc("/blocked-time/{id}", r.doctorHandler.UpdateBlockedTime).Methods(http.MethodPut)
	doctor.HandleFunc("/blocked-time/{id}", r.doctorHandler.UnblockTime).Methods(http.MethodDelete)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/appointments", r.patientHandler.GetMyAppointments).Methods(http.MethodGet)
	patient.HandleFunc("/appointments", r.patientHandler.Book).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/eligibility", r.patientHandler.GetEligibility).Methods(http.MethodGet)
	patient.HandleFunc("/appointments/{id}/cancel", r.patientHandler.Cancel).Methods(http.MethodPatch)
	patient.HandleFunc("/appointments/{id}/reschedule", r.patientHandler.Reschedule).Methods(http.MethodPatch)

	// Front desk routes (receptionist or admin)
	reception := api.PathPrefix("/reception").Subrouter()
	reception.Use(r.authMiddleware.Authenticate)
	reception.Use(middleware.RequireFrontDesk)
	reception.HandleFunc("/appointments", r.receptionHandler.GetAppointments).Methods(http.MethodGet)
	reception.HandleFunc("/appointments", r.receptionHandler.Book).Methods(http.MethodPost)
	reception.HandleFunc("/appointments/{id}/confirm", r.receptionHandler.Confirm).Methods(http.MethodPatch)
	reception.HandleFunc("/appointments/{id}/cancel", r.receptionHandler.Cancel).Methods(http.MethodPatch)
	reception.HandleFunc("/appointments/{id}/reschedule", r.receptionHandler.Reschedule).Methods(http.MethodPatch)
	reception.HandleFunc("/check-conflict", r.receptionHandler.CheckConflict).Methods(http.MethodPost)
	reception.HandleFunc("/available-slots", r.receptionHandler.GetAvailableSlots).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests match no route above; this lets the CORS middleware answer them.
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}
