package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/tasks"
)

// RelayFailureMessage is the message and error of every failed relay response.
const RelayFailureMessage = "Failed to generate playlist"

// Envelope is the JSON body the relay answers with on failure.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

var failureEnvelope = Envelope{Success: false, Message: RelayFailureMessage, Error: RelayFailureMessage}

// RelayHandler forwards POST /api/generate to the upstream backend.
//
// A 2xx upstream result is passed through with status 200. Transport errors,
// non-2xx statuses and undecodable bodies all become 500 with the failure envelope.
type RelayHandler struct {
	upstream services.Caller
	recorder tasks.Recorder
	logger   *log.Logger
}

// NewRelayHandler creates a RelayHandler. recorder may be nil.
func NewRelayHandler(upstream services.Caller, recorder tasks.Recorder, logger *log.Logger) *RelayHandler {
	return &RelayHandler{upstream: upstream, recorder: recorder, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *RelayHandler) Routes() []string {
	return []string{services.GeneratePath}
}

// ServeHTTP relays one generate call.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result, err := h.upstream.Do(r.Context())
	elapsed := time.Since(start)

	if err != nil {
		h.logger.Error("error generating playlist", "error", err)
		h.record(models.Failed(RelayFailureMessage), elapsed)
		writeJSON(w, http.StatusInternalServerError, failureEnvelope)
		return
	}

	h.record(result, elapsed)
	writeJSON(w, http.StatusOK, result)
}

func (h *RelayHandler) record(result models.GenerationResult, d time.Duration) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.RecordRun(models.NewRun(models.SurfaceWeb, result, d)); err != nil {
		h.logger.Warn("failed to record run", "error", err)
	}
}

// HealthHandler answers GET /healthz.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (HealthHandler) Routes() []string {
	return []string{"/healthz"}
}

// ServeHTTP writes {"status":"ok"}.
func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
