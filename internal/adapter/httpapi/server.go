// Package httpapi exposes the query API consumed by the guardian dashboard
// and SOS broadcast, plus the operational endpoints. Field names in the
// response bodies are part of the mobile client's display contract and may
// only ever be extended, never renamed.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/observability"
	"github.com/couchcryptid/crime-zone-api/internal/risk"
	"github.com/couchcryptid/crime-zone-api/internal/store"
	"github.com/couchcryptid/crime-zone-api/internal/zone"
)

// maxIngestBody caps the admin ingest endpoint's request body. The largest
// real export observed is well under a megabyte.
const maxIngestBody = 10 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Ingester runs one ingestion pass over a raw export body.
type Ingester interface {
	IngestBlock(ctx context.Context, source string, body []byte) (domain.ParseResult, error)
}

// Server exposes the query API and health/readiness/metrics endpoints.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	engine     *risk.Engine
	resolver   *zone.Resolver
	ingester   Ingester
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires all routes. The resolver may be nil when no registry
// loaded; zone-alert requests then fail with 503.
func NewServer(addr string, st *store.Store, engine *risk.Engine, resolver *zone.Resolver, ingester Ingester, ready ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    st,
		engine:   engine,
		resolver: resolver,
		ingester: ingester,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /cities", s.handleCities)
	mux.HandleFunc("GET /city/{name}", s.handleCity)
	mux.HandleFunc("GET /city-risks", s.handleCityRisks)
	mux.HandleFunc("POST /zone-alert", s.handleZoneAlert)
	mux.HandleFunc("POST /ingest", s.handleIngest)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// --- response shapes ---

type riskBody struct {
	Level domain.RiskLevel `json:"level"`
	Score float64          `json:"score"`
}

type statisticsBody struct {
	RecentCrimes int                 `json:"recentCrimes"`
	TopCrimes    []domain.CrimeCount `json:"topCrimes"`
	Trend        domain.Trend        `json:"trend"`
}

type cityBody struct {
	City       string         `json:"city"`
	Risk       riskBody       `json:"risk"`
	Statistics statisticsBody `json:"statistics"`
}

func toCityBody(p domain.CityRiskProfile) cityBody {
	topCrimes := p.TopCrimes
	if topCrimes == nil {
		topCrimes = []domain.CrimeCount{}
	}
	return cityBody{
		City: p.City,
		Risk: riskBody{Level: p.Level, Score: p.Score},
		Statistics: statisticsBody{
			RecentCrimes: p.RecentCrimes,
			TopCrimes:    topCrimes,
			Trend:        p.Trend,
		},
	}
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	cities := s.store.Cities()
	writeJSON(w, http.StatusOK, map[string]any{
		"cities":      cities,
		"totalCities": len(cities),
	})
}

func (s *Server) handleCity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	profile, err := s.engine.ProfileFor(name)
	if err != nil {
		if errors.Is(err, risk.ErrCityNotFound) {
			s.metrics.ProfileRequests.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, "city not found")
			return
		}
		s.logger.Error("profile lookup failed", "city", name, "error", err)
		writeError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	s.metrics.ProfileRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, toCityBody(profile))
}

func (s *Server) handleCityRisks(w http.ResponseWriter, _ *http.Request) {
	profiles := s.engine.AllProfiles()
	cities := make([]cityBody, 0, len(profiles))
	for _, p := range profiles {
		cities = append(cities, toCityBody(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalCities": len(cities),
		"cities":      cities,
	})
}

type zoneAlertRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type zoneAlertResponse struct {
	City       string         `json:"city"`
	Address    string         `json:"address,omitempty"`
	Alert      string         `json:"alert"`
	DistanceKm float64        `json:"distanceKm"`
	Risk       riskBody       `json:"risk"`
	Statistics statisticsBody `json:"statistics"`
}

func (s *Server) handleZoneAlert(w http.ResponseWriter, r *http.Request) {
	var req zoneAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		s.metrics.ZoneAlertRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	if s.resolver == nil {
		s.metrics.ZoneAlertRequests.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusServiceUnavailable, "no coordinate registry loaded")
		return
	}

	alert, err := s.resolver.Resolve(*req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, zone.ErrInvalidCoordinate):
			s.metrics.ZoneAlertRequests.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "invalid coordinate")
		case errors.Is(err, zone.ErrOutOfRange):
			s.metrics.ZoneAlertRequests.WithLabelValues("out_of_range").Inc()
			writeError(w, http.StatusNotFound, "no city within matching radius")
		case errors.Is(err, zone.ErrRegistryEmpty):
			s.metrics.ZoneAlertRequests.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusServiceUnavailable, "no coordinate data for any stored city")
		default:
			s.logger.Error("zone resolution failed", "error", err)
			writeError(w, http.StatusInternalServerError, "zone resolution failed")
		}
		return
	}

	s.metrics.ZoneAlertRequests.WithLabelValues("ok").Inc()
	body := toCityBody(alert.Profile)
	writeJSON(w, http.StatusOK, zoneAlertResponse{
		City:       alert.City,
		Address:    alert.Address,
		Alert:      alert.Alert,
		DistanceKm: alert.DistanceKm,
		Risk:       body.Risk,
		Statistics: body.Statistics,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	result, err := s.ingester.IngestBlock(r.Context(), "http", body)
	if err != nil {
		s.logger.Error("http ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	cities := result.Cities
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records":      len(result.Records),
		"droppedLines": result.DroppedLines,
		"cities":       cities,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
