// Package view computes read-only projections over store snapshots for the
// calendar, task and document screens. Nothing here is stored.
package view

import (
	"sort"
	"time"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

func WithDeadline(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.HasDeadline() {
			out = append(out, t)
		}
	}
	return out
}

func WithoutDeadline(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.HasDeadline() {
			out = append(out, t)
		}
	}
	return out
}

// OnDay returns the tasks whose deadline is exactly day.
func OnDay(tasks []model.Task, day model.Date) []model.Task {
	out := []model.Task{}
	for _, t := range tasks {
		if t.Deadline != nil && t.Deadline.Equal(day) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByDay buckets deadline-bearing tasks by calendar day, keeping
// insertion order inside each bucket.
func GroupByDay(tasks []model.Task) map[model.Date][]model.Task {
	out := map[model.Date][]model.Task{}
	for _, t := range tasks {
		if t.Deadline == nil {
			continue
		}
		out[*t.Deadline] = append(out[*t.Deadline], t)
	}
	return out
}

// Range is an inclusive span of calendar days.
type Range struct {
	From model.Date `json:"from"`
	To   model.Date `json:"to"`
}

func (r Range) Contains(d model.Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Len is the number of days in the range, zero when it is inverted.
func (r Range) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	return r.To.DaysSince(r.From.Date) + 1
}

// Days lists every day in the range in order.
func (r Range) Days() []model.Date {
	if r.To.Before(r.From) {
		return nil
	}
	var out []model.Date
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// WeekOf returns the Sunday-to-Saturday week containing d.
func WeekOf(d model.Date) Range {
	start := d.AddDays(-int(d.Weekday()))
	return Range{From: start, To: start.AddDays(6)}
}

func MonthOf(d model.Date) Range {
	first := model.NewDate(d.Year, d.Month, 1)
	last := model.DateOf(first.In(time.UTC).AddDate(0, 1, -1))
	return Range{From: first, To: last}
}

// Between returns deadline-bearing tasks due inside r, ordered by deadline and
// then insertion order.
func Between(tasks []model.Task, r Range) []model.Task {
	out := []model.Task{}
	for _, t := range tasks {
		if t.Deadline != nil && r.Contains(*t.Deadline) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline.Before(*out[j].Deadline)
	})
	return out
}

// Day is one calendar cell: the date and what is due on it.
type Day struct {
	Date  model.Date   `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

func Calendar(tasks []model.Task, r Range) []Day {
	byDay := GroupByDay(tasks)
	days := r.Days()
	out := make([]Day, 0, len(days))
	for _, d := range days {
		ts := byDay[d]
		if ts == nil {
			ts = []model.Task{}
		}
		out = append(out, Day{Date: d, Tasks: ts})
	}
	return out
}
