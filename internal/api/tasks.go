package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/view"
)

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := filterTasks(h.store.Tasks(), r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return

	case http.MethodPost:
		var in model.NewTask
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		writeJSON(w, http.StatusCreated, h.store.AddTask(in))
		return

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
}

// filterTasks applies ?deadline=with|without, ?day=, and ?from=&to=.
func filterTasks(tasks []model.Task, r *http.Request) ([]model.Task, error) {
	q := r.URL.Query()

	switch strings.ToLower(strings.TrimSpace(q.Get("deadline"))) {
	case "", "any":
	case "with":
		tasks = view.WithDeadline(tasks)
	case "without":
		tasks = view.WithoutDeadline(tasks)
	default:
		return nil, errors.New("deadline must be with, without or any")
	}

	if raw := q.Get("day"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		tasks = view.OnDay(tasks, d)
	}

	if q.Get("from") != "" || q.Get("to") != "" {
		rng, err := parseRange(q.Get("from"), q.Get("to"))
		if err != nil {
			return nil, err
		}
		tasks = view.Between(tasks, rng)
	}
	return tasks, nil
}

// /api/tasks/{id}[/documents[/{docId}]]
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/tasks/")
	if len(parts) == 0 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		h.taskItem(w, r, id)
	case len(parts) == 2 && parts[1] == "documents":
		h.taskDocuments(w, r, id)
	case len(parts) == 3 && parts[1] == "documents":
		h.taskDocumentLink(w, r, id, parts[2])
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) taskItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		t, ok := h.store.Task(id)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPatch:
		var p model.TaskPatch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, ok := h.store.UpdateTask(id, p)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if !h.store.DeleteTask(id) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type taskDocumentsResponse struct {
	Attached  []documentSummary `json:"attached"`
	Available []documentSummary `json:"available"`
}

func (h *Handler) taskDocuments(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	t, ok := h.store.Task(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	docs := h.store.Documents()
	writeJSON(w, http.StatusOK, taskDocumentsResponse{
		Attached:  summarize(view.AttachedDocuments(t, docs)),
		Available: summarize(view.AvailableDocuments(t, docs)),
	})
}

func (h *Handler) taskDocumentLink(w http.ResponseWriter, r *http.Request, taskID, docID string) {
	if _, ok := h.store.Task(taskID); !ok {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		err := h.store.AttachDocumentToTask(taskID, docID)
		if errors.Is(err, store.ErrDocumentNotFound) {
			writeErr(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
	case http.MethodDelete:
		h.store.RemoveDocumentFromTask(taskID, docID)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	t, _ := h.store.Task(taskID)
	writeJSON(w, http.StatusOK, t)
}
