package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OjusAnilNaik/To-do-List/board"
	"github.com/OjusAnilNaik/To-do-List/domain"
)

// resolveTask turns a command line reference into a task id. A plain number
// is a position as printed by "todo list", "#N" is the id N and anything
// else is taken as an id.
func resolveTask(m *board.Manager, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if id, ok := strings.CutPrefix(ref, "#"); ok {
		if _, found := m.Task(id); found {
			return id, nil
		}
		return "", fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		listed := domain.Render(m.Tasks(), domain.FilterAll)
		if n < 1 || n > len(listed) {
			return "", fmt.Errorf("%w: no task at position %d", domain.ErrTaskNotFound, n)
		}
		return listed[n-1].ID, nil
	}
	if _, found := m.Task(ref); found {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
}

// positions maps task ids to the numbers shown by "todo list". They are
// stable under filtering so a filtered listing can still be acted on.
func positions(m *board.Manager) map[string]int {
	listed := domain.Render(m.Tasks(), domain.FilterAll)
	pos := make(map[string]int, len(listed))
	for i, t := range listed {
		pos[t.ID] = i + 1
	}
	return pos
}

func printTask(w io.Writer, pos int, t domain.Task, long bool) {
	check := "[ ]"
	if t.Done {
		check = "[x]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%3d %s %s", pos, check, t.Text)
	if t.Pinned {
		b.WriteString(" (pinned)")
	}
	for _, tag := range t.Tags {
		b.WriteString(" #" + tag)
	}
	if t.DueDate != "" {
		b.WriteString(" due " + t.DueDate)
	}
	if t.Color != "" && t.Color != domain.DefaultColor {
		b.WriteString(" color " + t.Color)
	}
	fmt.Fprintln(w, b.String())
	if long {
		fmt.Fprintf(w, "      id %s, created %s, updated %s\n", t.ID,
			domain.FormatDisplayTime(t.CreatedAt.Local()), domain.FormatDisplayTime(t.UpdatedAt.Local()))
	}
}
