package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/HotpotFunds/HotpotFunds/internal/config"
	"github.com/HotpotFunds/HotpotFunds/internal/logger"
	"github.com/HotpotFunds/HotpotFunds/internal/sim"
	"github.com/HotpotFunds/HotpotFunds/internal/state"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the live fund state over HTTP as JSON.
type WebServer struct {
	router *mux.Router
	port   string
	world  *sim.World
	start  time.Time
}

// NewWebServer creates a new web server instance over the given world.
func NewWebServer(port string, world *sim.World) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		world:  world,
		start:  time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/funds", ws.handleGetFunds).Methods("GET")
	api.HandleFunc("/funds/{symbol}", ws.handleGetFund).Methods("GET")
	api.HandleFunc("/staking/{symbol}", ws.handleGetStaking).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
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

// baseTokenFor maps a fund symbol to its base-asset ledger. The native fund's
// idle balance lives on the wrapped ledger.
func (ws *WebServer) baseTokenFor(symbol string) *token.Token {
	switch symbol {
	case "DAI":
		return ws.world.DAI
	case "USDC":
		return ws.world.USDC
	case "USDT":
		return ws.world.USDT
	case "ETH":
		return ws.world.WETH.Token
	}
	return nil
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	hasErrors := false
	if config.DBEnabled {
		if err := state.TestDBConnection(); err != nil {
			dbHealthy = false
			hasErrors = true
		}
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
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
			"uptime_seconds":   int64(time.Since(ws.start).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "hotpot-funds",
			"version": "1.0.0",
		},
		"hotpot_status": map[string]interface{}{
			"database_enabled": config.DBEnabled,
			"database_healthy": dbHealthy,
			"funds_count":      len(ws.world.Funds()),
			"events_recorded":  ws.world.Log.Len(),
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetFunds returns a snapshot of every fund
func (ws *WebServer) handleGetFunds(w http.ResponseWriter, r *http.Request) {
	snapshots := make(map[string]state.FundSnapshot)
	for symbol, f := range ws.world.Funds() {
		snapshots[symbol] = state.CaptureFundSnapshot(symbol, f, ws.baseTokenFor(symbol), ws.world.UNI, ws.world.Factory)
	}

	response := map[string]interface{}{
		"funds": snapshots,
		"count": len(snapshots),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetFund returns a snapshot of one fund by base-asset symbol
func (ws *WebServer) handleGetFund(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	f, ok := ws.world.Funds()[symbol]
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "Unknown fund symbol")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK,
		state.CaptureFundSnapshot(symbol, f, ws.baseTokenFor(symbol), ws.world.UNI, ws.world.Factory))
}

// handleGetStaking returns the share-staking pool state for one fund
func (ws *WebServer) handleGetStaking(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	pool, ok := ws.world.StakingPools()[symbol]
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "Unknown staking pool symbol")
		return
	}

	response := map[string]interface{}{
		"address":                 pool.Address(),
		"rewards_token":           pool.RewardsToken(),
		"staking_token":           pool.StakingToken(),
		"total_supply":            pool.TotalSupply().String(),
		"reward_rate":             pool.RewardRate().String(),
		"rewards_duration":        pool.RewardsDuration(),
		"period_finish":           pool.PeriodFinish(),
		"reward_per_token":        pool.RewardPerToken().String(),
		"reward_for_duration":     pool.GetRewardForDuration().String(),
		"last_time_applicable":    pool.LastTimeRewardApplicable(),
		"reward_per_token_stored": pool.RewardPerTokenStored().String(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetEvents returns the most recent ledger events
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}
	emitter := types.Address(r.URL.Query().Get("emitter"))
	name := r.URL.Query().Get("name")

	events := ws.world.Log.Filter(emitter, name)
	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
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

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
