// Package api exposes the store over a local JSON HTTP interface for the
// browser UI.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
)

const defaultMaxUploadBytes = 10 << 20

type Handler struct {
	store          *store.Store
	log            *zap.Logger
	now            func() time.Time
	maxUploadBytes int64
}

type Options struct {
	Logger         *zap.Logger
	Now            func() time.Time
	MaxUploadBytes int64
}

func NewHandler(s *store.Store, opts Options) *Handler {
	h := &Handler{
		store:          s,
		log:            opts.Logger,
		now:            opts.Now,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}
	return h
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Health)

	mux.HandleFunc("/api/tasks", h.TasksRoot)
	mux.HandleFunc("/api/tasks/", h.TasksSub)

	mux.HandleFunc("/api/documents", h.DocumentsRoot)
	mux.HandleFunc("/api/documents/upload", h.DocumentsUpload)
	mux.HandleFunc("/api/documents/", h.DocumentsSub)

	mux.HandleFunc("/api/folders", h.FoldersRoot)
	mux.HandleFunc("/api/folders/", h.FoldersSub)

	mux.HandleFunc("/api/calendar/stats", h.CalendarStats)
	mux.HandleFunc("/api/calendar/days", h.CalendarDays)
	mux.HandleFunc("/api/calendar.ics", h.CalendarICS)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"service":        "simple-schedule-organizer",
		"time":           h.now().UTC().Format(time.RFC3339),
		"persist_errors": h.store.PersistErrors(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// splitTail returns the path segments after prefix.
func splitTail(path, prefix string) []string {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if tail == "" {
		return nil
	}
	return strings.Split(tail, "/")
}
