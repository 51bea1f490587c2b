package domain

import "math"

// Progress summarises completion of a task list.
type Progress struct {
	Total     int `json:"total_tasks"`
	Completed int `json:"completed_tasks"`
	Percent   int `json:"completion_percentage"`
}

// ProgressOf counts done tasks. Percent rounds half to even.
func ProgressOf(tasks []Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.RoundToEven(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}
