package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/metrics"
	"wcl-enricher/internal/middleware"
	"wcl-enricher/internal/rpc/adminv1"
	"wcl-enricher/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	EnrichPath  = "/api/v1/players/enrich"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	maxRequestBody = 64 << 10
)

// Envelope wraps every REST response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	enricher Enricher
	logger   zerolog.Logger
}

// NewRouter wires the REST endpoints, the admin RPC service, health and
// metrics behind the request id and CORS middleware.
func NewRouter(enricher Enricher, admin *AdminServer, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	h := &Handler{enricher: enricher, logger: logger}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logger))
	r.Use(c.Handler)

	r.Get(HealthPath, h.health)
	r.Handle(MetricsPath, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))
	r.Post(EnrichPath, h.enrich)

	path, adminHandler := adminv1.NewAdminServiceHandler(admin)
	r.Mount(path, adminHandler)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "ok"})
}

func (h *Handler) enrich(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var req service.EnrichRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Debug().Err(err).Msg("invalid enrich request body")
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "request body must be a JSON object"})
		return
	}

	result, err := h.enricher.Enrich(r.Context(), req)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", status).Msg("enrich failed")
		}
		writeJSON(w, status, Envelope{Success: false, Message: domain.MessageOf(err)})
		return
	}

	w.Header().Set("X-Card-Source", string(result.Source))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: result.Message, Data: result.Card})
}

// StatusFor maps a domain error to its HTTP status. Degraded results never
// reach here: they are successes.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindServiceUnavailable, domain.KindConfigMissing:
		return http.StatusServiceUnavailable
	case domain.KindBadGateway:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
