package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterPinned  Filter = "pinned"
	FilterDone    Filter = "done"
	FilterNotDone Filter = "notdone"
)

// ParseFilter accepts the filter names used by both front ends. An empty
// string selects FilterAll and "undone" is an alias of FilterNotDone.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "pinned":
		return FilterPinned, nil
	case "done":
		return FilterDone, nil
	case "notdone", "undone":
		return FilterNotDone, nil
	}
	return "", &ValidationError{Field: "filter", Message: fmt.Sprintf("unknown filter %q", s)}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterPinned:
		return t.Pinned
	case FilterDone:
		return t.Done
	case FilterNotDone:
		return !t.Done
	default:
		return true
	}
}

// Render returns the display projection of tasks: those matching f, pinned
// tasks first, otherwise in list order. The input is left untouched.
func Render(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pinned && !out[j].Pinned
	})
	return out
}

// WithTag keeps the tasks carrying tag. An empty tag keeps everything.
func WithTag(tasks []Task, tag string) []Task {
	if NormalizeTag(tag) == "" {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.HasTag(tag) {
			out = append(out, t)
		}
	}
	return out
}
