// Package handlers provides the REST surface the UI layer invokes the sync
// engine through. No other path may mutate the conflict queue or sync log.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/models"
	syncpkg "github.com/rentnest/rentnest/backend/internal/sync"
	"github.com/rentnest/rentnest/backend/internal/sync/conflict"
)

// SyncHandler exposes sync operations over HTTP.
type SyncHandler struct {
	engine    syncpkg.Engine
	retry     *syncpkg.RetryController
	resources []string
}

// NewSyncHandler creates a SyncHandler. resources is the default set synced
// when a start request names none.
func NewSyncHandler(engine syncpkg.Engine, retry *syncpkg.RetryController, resources []string) *SyncHandler {
	return &SyncHandler{
		engine:    engine,
		retry:     retry,
		resources: resources,
	}
}

// Register mounts the handler's routes.
func (h *SyncHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/sync/start", h.StartSync)
	mux.HandleFunc("/sync/retry", h.Retry)
	mux.HandleFunc("/sync/status", h.Status)
	mux.HandleFunc("/sync/logs", h.Logs)
	mux.HandleFunc("/sync/conflicts", h.Conflicts)
	mux.HandleFunc("/sync/conflicts/resolve", h.ResolveConflict)
	mux.HandleFunc("/sync/conflicts/reject", h.RejectConflict)
	mux.HandleFunc("/sync/conflicts/clear", h.ClearConflicts)
}

// StartSync handles POST /sync/start.
// Body: {"resources": ["properties", ...]} (optional).
func (h *SyncHandler) StartSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Resources []string `json:"resources"`
	}
	if r.Body != nil {
		// An empty body means "sync everything".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	resources := req.Resources
	if len(resources) == 0 {
		resources = h.resources
	}

	result, err := h.retry.Start(r.Context(), resources)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Retry handles POST /sync/retry: another attempt of the last started pass.
func (h *SyncHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.retry.Retry(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Status handles GET /sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":            h.engine.Status(),
		"pending_conflicts": h.engine.PendingConflicts(),
		"retry_attempts":    h.retry.Attempts(),
	}
	if last := h.engine.LastSync(); last != nil {
		response["last_sync"] = last
	}
	if stats := h.engine.LastStats(); stats != nil {
		response["last_stats"] = stats
	}
	writeJSON(w, http.StatusOK, response)
}

// Logs handles GET /sync/logs.
func (h *SyncHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.engine.Logs()
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.SyncLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Conflicts handles GET /sync/conflicts: the queue snapshot plus suggested
// resolutions for the head conflict.
func (h *SyncHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"conflicts": h.engine.Conflicts(),
		"total":     h.engine.PendingConflicts(),
	}
	if current, ok := h.engine.CurrentConflict(); ok {
		response["current"] = current
		response["suggestions"] = conflict.SuggestResolutions(current)
	}
	writeJSON(w, http.StatusOK, response)
}

// ResolveConflict handles POST /sync/conflicts/resolve.
// Body: {"resolutions": {"rent": "remote", ...}}. Every conflicted field of
// the head conflict must be present.
func (h *SyncHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Resolutions conflict.Resolutions `json:"resolutions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engine.ResolveConflict(r.Context(), req.Resolutions); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resolved":          true,
		"pending_conflicts": h.engine.PendingConflicts(),
	})
}

// RejectConflict handles POST /sync/conflicts/reject.
func (h *SyncHandler) RejectConflict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.engine.RejectConflict(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rejected":          true,
		"pending_conflicts": h.engine.PendingConflicts(),
	})
}

// ClearConflicts handles POST /sync/conflicts/clear. Clearing silently
// accepts data loss on one side, so the request must carry an explicit
// {"confirm": true}.
func (h *SyncHandler) ClearConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Confirm {
		http.Error(w, "Clearing conflicts is irreversible; pass {\"confirm\": true}", http.StatusBadRequest)
		return
	}

	removed := h.engine.ClearConflicts()
	writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps engine error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrSyncInProgress:
		status = http.StatusConflict
	case apperrors.ErrEmptyQueue:
		status = http.StatusNotFound
	case apperrors.ErrIncompleteResolution, apperrors.ErrUnknownResolutionSource,
		apperrors.ErrInvalid, apperrors.ErrSyncNotConfigured:
		status = http.StatusBadRequest
	case apperrors.ErrRetryLimitExceeded:
		status = http.StatusTooManyRequests
	case apperrors.ErrRemote, apperrors.ErrRemoteNotFound, apperrors.ErrRemoteTimeout:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  apperrors.CodeOf(err),
	})
}
