package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		color  string
		emojis []int
	)
	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			for _, i := range emojis {
				var err error
				if text, err = domain.AppendEmoji(text, i); err != nil {
					return err
				}
			}
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			task, err := m.AddTask(cmd.Context(), text, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added %d: %s\n", positions(m)[task.ID], task.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", "", "task color (default "+domain.DefaultColor+")")
	cmd.Flags().IntSliceVarP(&emojis, "emoji", "e", nil, "append palette emoji by index (see \"todo emoji\")")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		filter string
		tag    string
		long   bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, pinned first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.SetFilter(cmd.Context(), filter); err != nil {
				return err
			}
			view := m.View()
			if tag != "" {
				view = domain.WithTag(view, tag)
			}
			if len(view) == 0 {
				fmt.Fprintln(out(cmd), "No tasks found.")
				return nil
			}
			pos := positions(m)
			for _, t := range view {
				printTask(out(cmd), pos[t.ID], t, long)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, pinned, done or notdone")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only tasks with this tag")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show ids and timestamps")
	return cmd
}

// taskCmd builds a command whose first argument names a task.
func taskCmd(a *app, use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, id string, rest []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTask(m, args[0])
			if err != nil {
				return err
			}
			return run(cmd, id, args[1:])
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return taskCmd(a, "done <task>", "Toggle a task's done mark", cobra.ExactArgs(1),
		func(cmd *cobra.Command, id string, _ []string) error {
			if err := a.manager.ToggleDone(cmd.Context(), id); err != nil {
				return err
			}
			t, _ := a.manager.Task(id)
			fmt.Fprintf(out(cmd), "%s: done=%t\n", t.Text, t.Done)
			return nil
		})
}

func newPinCmd(a *app) *cobra.Command {
	return taskCmd(a, "pin <task>", "Toggle a task's pin", cobra.ExactArgs(1),
		func(cmd *cobra.Command, id string, _ []string) error {
			if err := a.manager.TogglePin(cmd.Context(), id); err != nil {
				return err
			}
			t, _ := a.manager.Task(id)
			fmt.Fprintf(out(cmd), "%s: pinned=%t\n", t.Text, t.Pinned)
			return nil
		})
}

func newEditCmd(a *app) *cobra.Command {
	return taskCmd(a, "edit <task> <text>...", "Replace a task's text", cobra.MinimumNArgs(2),
		func(cmd *cobra.Command, id string, rest []string) error {
			return a.manager.EditText(cmd.Context(), id, strings.Join(rest, " "))
		})
}

func newColorCmd(a *app) *cobra.Command {
	return taskCmd(a, "color <task> <color>", "Set a task's color", cobra.ExactArgs(2),
		func(cmd *cobra.Command, id string, rest []string) error {
			return a.manager.SetColor(cmd.Context(), id, rest[0])
		})
}

func newRemoveCmd(a *app) *cobra.Command {
	cmd := taskCmd(a, "rm <task>", "Delete a task", cobra.ExactArgs(1),
		func(cmd *cobra.Command, id string, _ []string) error {
			t, _ := a.manager.Task(id)
			if err := a.manager.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted: %s\n", t.Text)
			return nil
		})
	cmd.Aliases = []string{"delete"}
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			n := len(m.Tasks())
			if !yes && n > 0 {
				return fmt.Errorf("refusing to delete %d tasks without --yes", n)
			}
			if err := m.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted %d tasks\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all tasks")
	return cmd
}

func newClearCompletedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every done task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			before := len(m.Tasks())
			if err := m.ClearCompleted(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted %d tasks\n", before-len(m.Tasks()))
			return nil
		},
	}
}

func newReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <task>...",
		Short: "Move the named tasks to the front in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				id, err := resolveTask(m, ref)
				if err != nil {
					// Unknown tasks are skipped by the manager.
					id = ref
				}
				ids = append(ids, id)
			}
			return m.Reorder(cmd.Context(), ids)
		},
	}
}

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage task tags",
	}
	cmd.AddCommand(
		taskCmd(a, "add <task> <tag>", "Attach a tag", cobra.ExactArgs(2),
			func(cmd *cobra.Command, id string, rest []string) error {
				return a.manager.AddTag(cmd.Context(), id, rest[0])
			}),
		taskCmd(a, "rm <task> <tag>", "Detach a tag", cobra.ExactArgs(2),
			func(cmd *cobra.Command, id string, rest []string) error {
				return a.manager.RemoveTag(cmd.Context(), id, rest[0])
			}),
		&cobra.Command{
			Use:   "list",
			Short: "Show the tags the API accepts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(out(cmd), strings.Join(domain.FixedTags, "\n"))
				return nil
			},
		},
	)
	return cmd
}

func newDueCmd(a *app) *cobra.Command {
	return taskCmd(a, "due <task> [YYYY-MM-DD]", "Set or clear a task's due date", cobra.RangeArgs(1, 2),
		func(cmd *cobra.Command, id string, rest []string) error {
			date := ""
			if len(rest) > 0 {
				date = rest[0]
			}
			return a.manager.SetDueDate(cmd.Context(), id, date)
		})
}
