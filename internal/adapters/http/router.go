package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ksrishi31-git/smart-document-organizer/internal/config"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
	"github.com/ksrishi31-git/smart-document-organizer/internal/observability/metrics"
)

const serviceName = "organizer-api"

type Router struct {
	organizer ports.DocumentOrganizer
	library   ports.DocumentLibrary
	catalog   domain.Catalog
	metrics   *metrics.HTTPServerMetrics

	maxUploadBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

func NewRouter(
	cfg config.Config,
	organizer ports.DocumentOrganizer,
	library ports.DocumentLibrary,
	catalog domain.Catalog,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	return &Router{
		organizer:        organizer,
		library:          library,
		catalog:          catalog,
		metrics:          httpMetrics,
		maxUploadBytes:   maxUpload,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: cfg.APIBackpressureWait,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("GET /v1/categories", rt.listCategories)
	mux.HandleFunc("POST /v1/classify", rt.classifyFile)

	mux.HandleFunc("POST /v1/users/{userID}/files", rt.organizeFiles)
	mux.HandleFunc("POST /v1/users/{userID}/files/async", rt.stageFiles)
	mux.HandleFunc("GET /v1/users/{userID}/files", rt.listUserFiles)
	mux.HandleFunc("GET /v1/users/{userID}/stats", rt.userStats)
	mux.HandleFunc("GET /v1/users/{userID}/categories/{category}/archive", rt.archiveCategory)
	mux.HandleFunc("DELETE /v1/users/{userID}", rt.deleteUser)

	mux.HandleFunc("GET /v1/files", rt.listAllFiles)
	mux.HandleFunc("GET /v1/files/{fileID}/content", rt.downloadFile)
	mux.HandleFunc("DELETE /v1/files/{fileID}", rt.deleteFile)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait, rt.reject)
	handler = rateLimitMiddleware(handler, newLimiter(rt.rateLimitRPS, rt.rateLimitBurst), rt.reject)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) reject(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": rt.catalog.Categories()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
