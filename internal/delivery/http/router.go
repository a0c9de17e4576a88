package http

import (
	"net/http"

	"smartcare/internal/delivery/http/handler"
	"smartcare/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router           *mux.Router
	patientHandler   *handler.PatientHandler
	bedHandler       *handler.BedHandler
	occupancyHandler *handler.OccupancyHandler
	loggerMiddleware *middleware.LoggerMiddleware
	corsMiddleware   *middleware.CORSMiddleware
	gatherer         prometheus.Gatherer
}

func NewRouter(
	patientHandler *handler.PatientHandler,
	bedHandler *handler.BedHandler,
	occupancyHandler *handler.OccupancyHandler,
	loggerMiddleware *middleware.LoggerMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	gatherer prometheus.Gatherer,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		patientHandler:   patientHandler,
		bedHandler:       bedHandler,
		occupancyHandler: occupancyHandler,
		loggerMiddleware: loggerMiddleware,
		corsMiddleware:   corsMiddleware,
		gatherer:         gatherer,
	}
}

func (r *Router) Setup() *mux.Router {
	// Prometheus scrape endpoint
	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Patients (static paths before /{sno})
	api.HandleFunc("/patients", r.patientHandler.AdmitPatient).Methods(http.MethodPost)
	api.HandleFunc("/patients", r.patientHandler.SearchPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients/import", r.patientHandler.ImportPatients).Methods(http.MethodPost)
	api.HandleFunc("/patients/export", r.patientHandler.ExportPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients/{sno:[0-9]+}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	api.HandleFunc("/patients/{sno:[0-9]+}", r.patientHandler.EditPatient).Methods(http.MethodPut)
	api.HandleFunc("/patients/{sno:[0-9]+}/discharge", r.patientHandler.DischargePatient).Methods(http.MethodPost)

	// Beds
	api.HandleFunc("/beds", r.bedHandler.ListBeds).Methods(http.MethodGet)
	api.HandleFunc("/beds", r.bedHandler.ProvisionBeds).Methods(http.MethodPost)

	// Occupancy and dashboard
	api.HandleFunc("/occupancy", r.occupancyHandler.GetOccupancy).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/overview", r.occupancyHandler.GetOverview).Methods(http.MethodGet)
	api.HandleFunc("/analytics/patients/{field}", r.occupancyHandler.GetDistribution).Methods(http.MethodGet)

	// Browser preflight: mux runs middleware only on matched routes
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(r.preflight)

	r.router.Use(r.loggerMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) preflight(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
