package domain

// CommandType names a user action.
type CommandType string

const (
	CmdAddTask        CommandType = "add-task"
	CmdToggleDone     CommandType = "toggle-done"
	CmdTogglePin      CommandType = "toggle-pin"
	CmdEditText       CommandType = "edit-text"
	CmdSetColor       CommandType = "set-color"
	CmdDeleteTask     CommandType = "delete-task"
	CmdClearAll       CommandType = "clear-all"
	CmdClearCompleted CommandType = "clear-completed"
	CmdReorder        CommandType = "reorder"
	CmdAddTag         CommandType = "add-tag"
	CmdRemoveTag      CommandType = "remove-tag"
	CmdSetDueDate     CommandType = "set-due-date"
	CmdSetFilter      CommandType = "set-filter"
)

// Command is a single user action routed through the list manager and handed
// to the persistence adapter alongside the resulting list.
type Command struct {
	Type    CommandType
	TaskID  string
	Text    string
	Color   string
	Tag     string
	DueDate string
	Filter  string
	TaskIDs []string
}

// Mutates reports whether the command changes the task list.
func (c Command) Mutates() bool {
	return c.Type != CmdSetFilter
}
