package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/view"
)

const maxCalendarDays = 366

// /api/calendar/stats
func (h *Handler) CalendarStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, view.Completion(h.store.Tasks()))
}

// /api/calendar/days?from=&to=  or  ?week=<date>  or  ?month=<date>
// With no parameters it returns the current week.
func (h *Handler) CalendarDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rng, err := h.calendarRange(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if rng.Len() > maxCalendarDays {
		writeErr(w, http.StatusBadRequest, "range too long")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"range": rng,
		"days":  view.Calendar(h.store.Tasks(), rng),
	})
}

func (h *Handler) calendarRange(r *http.Request) (view.Range, error) {
	q := r.URL.Query()
	switch {
	case q.Get("from") != "" || q.Get("to") != "":
		return parseRange(q.Get("from"), q.Get("to"))
	case q.Get("month") != "":
		d, err := model.ParseDate(q.Get("month"))
		if err != nil {
			return view.Range{}, err
		}
		return view.MonthOf(d), nil
	case q.Get("week") != "":
		d, err := model.ParseDate(q.Get("week"))
		if err != nil {
			return view.Range{}, err
		}
		return view.WeekOf(d), nil
	default:
		return view.WeekOf(model.Today(h.now())), nil
	}
}

// /api/calendar.ics
func (h *Handler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(view.CalendarICS(h.store.Tasks(), h.now())))
}

func parseRange(from, to string) (view.Range, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return view.Range{}, errors.New("from and to are both required")
	}
	f, err := model.ParseDate(from)
	if err != nil {
		return view.Range{}, err
	}
	t, err := model.ParseDate(to)
	if err != nil {
		return view.Range{}, err
	}
	if t.Before(f) {
		return view.Range{}, errors.New("to is before from")
	}
	return view.Range{From: f, To: t}, nil
}
