package domain

import (
	"slices"
	"strings"
	"time"
)

// DefaultColor is used when a task is created without a color.
const DefaultColor = "#ffffff"

// DueDateLayout is the wire and storage format of due dates.
const DueDateLayout = "2006-01-02"

// FixedTags is the tag vocabulary accepted by the API.
var FixedTags = []string{"personal", "office", "urgent", "shopping"}

// Task represents a single entry on a to-do list.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	Pinned    bool      `json:"pinned"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Tags      []string  `json:"tags,omitempty"`
	DueDate   string    `json:"dueDate,omitempty"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	if t.Tags != nil {
		t.Tags = slices.Clone(t.Tags)
	}
	return t
}

// HasTag reports whether the normalized tag is attached to t.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, NormalizeTag(tag))
}

// Touch moves UpdatedAt forward to now. It never moves it backwards.
func (t *Task) Touch(now time.Time) {
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

// AddTag attaches tag keeping Tags sorted. It returns false when the tag is
// already present.
func (t *Task) AddTag(tag string) bool {
	tag = NormalizeTag(tag)
	if slices.Contains(t.Tags, tag) {
		return false
	}
	t.Tags = append(t.Tags, tag)
	slices.Sort(t.Tags)
	return true
}

// RemoveTag detaches tag. It returns false when the tag was not present.
func (t *Task) RemoveTag(tag string) bool {
	i := slices.Index(t.Tags, NormalizeTag(tag))
	if i < 0 {
		return false
	}
	t.Tags = slices.Delete(t.Tags, i, i+1)
	if len(t.Tags) == 0 {
		t.Tags = nil
	}
	return true
}

// NormalizeTag trims and lower-cases a tag name.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// IsFixedTag reports whether tag belongs to FixedTags.
func IsFixedTag(tag string) bool {
	return slices.Contains(FixedTags, NormalizeTag(tag))
}

// ValidDueDate reports whether s is empty or a YYYY-MM-DD date.
func ValidDueDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DueDateLayout, s)
	return err == nil
}

// IndexOf returns the position of the task with the given id or -1.
func IndexOf(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

// CloneAll deep-copies a task list.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
