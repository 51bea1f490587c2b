package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

func newDetailsCmd(a *app) *cobra.Command {
	return taskCmd(a, "details <task>", "Show timestamps and deadline status", cobra.ExactArgs(1),
		func(cmd *cobra.Command, id string, _ []string) error {
			w := out(cmd)
			if a.client != nil {
				d, err := a.client.TaskDetails(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Task:    %s\nCreated: %s\nUpdated: %s\n", d.Task, d.CreatedAtDisplay, d.UpdatedAtDisplay)
				printDeadline(w, d.DueDate, domain.Deadline{TimeRemaining: d.TimeRemaining, Warning: d.WarningMessage})
				printTags(w, d.Tags)
				return nil
			}

			t, _ := a.manager.Task(id)
			fmt.Fprintf(w, "Task:    %s\nCreated: %s\nUpdated: %s\n", t.Text,
				domain.FormatDisplayTime(t.CreatedAt.Local()), domain.FormatDisplayTime(t.UpdatedAt.Local()))
			printDeadline(w, t.DueDate, domain.DeadlineFor(t.DueDate, t.Done, time.Now()))
			printTags(w, t.Tags)
			return nil
		})
}

func printDeadline(w io.Writer, due string, d domain.Deadline) {
	if due == "" {
		return
	}
	fmt.Fprintf(w, "Due:     %s\n", due)
	if d.Warning != "" {
		fmt.Fprintf(w, "         %s\n", d.Warning)
	}
	if d.TimeRemaining != "" {
		fmt.Fprintf(w, "         %s\n", d.TimeRemaining)
	}
}

func printTags(w io.Writer, tags []string) {
	if len(tags) > 0 {
		fmt.Fprintf(w, "Tags:    %s\n", strings.Join(tags, ", "))
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			p := domain.ProgressOf(m.Tasks())
			if a.client != nil {
				if p, err = a.client.Stats(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintf(out(cmd), "%d of %d done (%d%%)\n", p.Completed, p.Total, p.Percent)
			return nil
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var theme domain.Theme
			switch {
			case len(args) == 0:
				theme, err = prefs.Theme(ctx)
			case args[0] == "toggle":
				theme, err = prefs.ToggleTheme(ctx)
			default:
				theme, err = domain.ParseTheme(args[0])
				if err == nil {
					err = prefs.SetTheme(ctx, theme)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), theme)
			return nil
		},
	}
}

func newEmojiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emoji",
		Short: "List the emoji palette used by add --emoji",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, e := range domain.Emojis {
				fmt.Fprintf(out(cmd), "%2d %s\n", i, e)
			}
			return nil
		},
	}
}
