package view

import (
	"strconv"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

type Stats struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      string `json:"rate"`
}

// Completion reports how many deadline-bearing tasks are done. Rate is a
// percentage with one decimal place, exact halves rounded up, and is "0.0"
// when there are none.
func Completion(tasks []model.Task) Stats {
	var st Stats
	for _, t := range tasks {
		if !t.HasDeadline() {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Rate = "0.0"
	if st.Total > 0 {
		// Percentage in tenths, halves rounded up.
		tenths := (2000*st.Completed + st.Total) / (2 * st.Total)
		st.Rate = strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10)
	}
	return st
}
