package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/x-liquidity/engine/internal/engine"
	"github.com/x-liquidity/engine/internal/logger"
	"github.com/x-liquidity/engine/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// callerHeader carries the authenticated caller identity. Authentication
// itself happens upstream (gateway or facilitator); the engine only compares
// this identity against stored ones.
const callerHeader = "X-Caller-Address"

// WebServer exposes the policy engine operations over HTTP.
type WebServer struct {
	router *mux.Router
	engine *engine.Engine
	port   string
}

// NewWebServer creates a new web server instance.
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		engine: eng,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes.
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	ws.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := ws.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/positions", ws.handleCreatePosition).Methods("POST")
	api.HandleFunc("/positions/{id}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/positions/{id}/status", ws.handleSetPositionStatus).Methods("POST")
	api.HandleFunc("/positions/{id}/accruals", ws.handleAccrueFees).Methods("POST")
	api.HandleFunc("/positions/{id}/fees/collect", ws.handleCollectFees).Methods("POST")
	api.HandleFunc("/positions/{id}/decisions", ws.handleCreateDecision).Methods("POST")

	api.HandleFunc("/decisions/{id}", ws.handleGetDecision).Methods("GET")
	api.HandleFunc("/decisions/{id}/approve", ws.handleApproveDecision).Methods("POST")
	api.HandleFunc("/decisions/{id}/execute", ws.handleExecuteDecision).Methods("POST")
	api.HandleFunc("/decisions/{id}/reject", ws.handleRejectDecision).Methods("POST")
	api.HandleFunc("/decisions/{id}/cancel", ws.handleCancelDecision).Methods("POST")
	api.HandleFunc("/decisions/{id}/failure", ws.handleReportFailure).Methods("POST")

	api.HandleFunc("/payments/requirements", ws.handleGetPaymentRequirements).Methods("GET")
	api.HandleFunc("/payments/verify", ws.handleVerifyPayment).Methods("POST")
	api.HandleFunc("/payments/{id}", ws.handleGetPayment).Methods("GET")

	api.HandleFunc("/audit", ws.handleGetAuditLog).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "x-liquidity-policy-engine",
			"version": "1.0.0",
		},
		"engine_status": map[string]interface{}{
			"database_healthy": dbHealthy,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeJSONResponse writes a JSON response.
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response.
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeEngineError maps engine failures onto HTTP status codes following the
// error taxonomy: validation 400, policy 403, state conflicts 409, missing
// entities 404, everything else 500.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrNotFound):
		ws.writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidPriceRange),
		errors.Is(err, engine.ErrExceedsMaxPositionSize),
		errors.Is(err, engine.ErrExceedsMaxTradeSize),
		errors.Is(err, engine.ErrPaymentTooSmall),
		errors.Is(err, engine.ErrInvalidCurrency):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrPositionNotActive),
		errors.Is(err, engine.ErrRebalanceTooFrequent),
		errors.Is(err, engine.ErrHumanApprovalRequired),
		errors.Is(err, engine.ErrApprovalNotRequired),
		errors.Is(err, engine.ErrAlreadyApproved),
		errors.Is(err, engine.ErrInvalidApprover),
		errors.Is(err, engine.ErrSlippageTooHigh),
		errors.Is(err, engine.ErrInvalidFacilitator),
		errors.Is(err, engine.ErrUnauthorized):
		ws.writeErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrInvalidExecutionStatus),
		errors.Is(err, engine.ErrStaleDecision),
		errors.Is(err, engine.ErrNoFeesToCollect),
		errors.Is(err, engine.ErrInvalidStatusChange),
		errors.Is(err, engine.ErrRebalanceCountOverflow),
		errors.Is(err, state.ErrStaleState),
		errors.Is(err, state.ErrDuplicate):
		ws.writeErrorResponse(w, http.StatusConflict, err.Error())
	default:
		webLogger.Error().Err(err).Msg("Internal error")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// corsMiddleware adds CORS headers.
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+callerHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
