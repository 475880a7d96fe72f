package api

import (
	"net/http"
	"strings"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

// /api/folders  (collection)
func (h *Handler) FoldersRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.Folders())

	case http.MethodPost:
		var in model.NewFolder
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, http.StatusBadRequest, "name is required")
			return
		}
		writeJSON(w, http.StatusCreated, h.store.AddFolder(in))

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/folders/{id}
func (h *Handler) FoldersSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/folders/")
	if len(parts) != 1 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		f, ok := h.store.Folder(id)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, f)

	case http.MethodPatch:
		var p model.FolderPatch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		f, ok := h.store.UpdateFolder(id, p)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, f)

	case http.MethodDelete:
		if !h.store.DeleteFolder(id) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
