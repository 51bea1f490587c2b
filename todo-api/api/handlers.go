package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/OjusAnilNaik/To-do-List/domain"
	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

const (
	maxBodySize    = 64 << 10
	userContextKey = "todo.user"
)

var errDuplicateTag = errors.New("duplicate tag")

// handler carries the dependencies shared by all routes.
type handler struct {
	store   Storage
	deduper Deduper
	events  *EventSender
	log     *log.Logger
	now     func() time.Time
}

// Register wires up all API routes on the provided Echo instance. deduper and
// events may be nil.
func Register(e *echo.Echo, store Storage, auth Authenticator, deduper Deduper, events *EventSender, logger *log.Logger) {
	h := &handler{store: store, deduper: deduper, events: events, log: logger, now: monotonicNow}

	e.GET("/healthz", healthz)

	mw := []echo.MiddlewareFunc{RequestMetrics(logger), requireUser(auth)}
	e.GET("/api/tasks", h.listTasks, mw...)
	e.POST("/api/tasks", h.createTask, mw...)
	e.POST("/api/reorder", h.reorder, mw...)
	e.GET("/api/task-details/:id", h.taskDetails, mw...)
	e.GET("/api/tags", listTags, mw...)
	e.POST("/api/tags/:id", h.addTag, mw...)
	e.DELETE("/api/tags/:id", h.removeTag, mw...)
	e.GET("/api/stats", h.stats, mw...)
	e.POST("/set-duedate/:id", h.setDueDate, mw...)
	e.POST("/edit/:id", h.edit, mw...)
	e.POST("/toggle/:id", h.toggle, mw...)
	e.POST("/pin/:id", h.pin, mw...)
	e.POST("/color/:id", h.color, mw...)
	e.POST("/delete/:id", h.delete, mw...)
	e.POST("/clear-completed", h.clearCompleted, mw...)
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func requireUser(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics := metricsFrom(c)
			start := time.Now()
			userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			metrics.ObserveAuth(time.Since(start))
			if err != nil {
				metrics.SetErrorStage("auth")
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: err.Error()})
			}
			metrics.SetUser(userID)
			c.Set(userContextKey, userID)
			return next(c)
		}
	}
}

func userFrom(c echo.Context) string {
	id, _ := c.Get(userContextKey).(string)
	return id
}

func reject(c echo.Context, status int, stage, msg string) error {
	metricsFrom(c).SetErrorStage(stage)
	return c.JSON(status, messageResponse{Message: msg})
}

// storageError maps a storage failure onto a response.
func (h *handler) storageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	case errors.Is(err, model.ErrConcurrencyConflict):
		return reject(c, http.StatusConflict, "conflict", "Task was modified concurrently, please retry")
	}
	h.log.WithField("user", userFrom(c)).WithError(err).Error("storage failure")
	return reject(c, http.StatusInternalServerError, "storage", "storage failure")
}

func (h *handler) timed(c echo.Context, fn func() error) error {
	start := time.Now()
	err := fn()
	metricsFrom(c).ObserveStorage(time.Since(start))
	return err
}

func taskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func decodeJSON(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(out)
}

func (h *handler) listTasks(c echo.Context) error {
	ctx := c.Request().Context()
	filterParam := c.QueryParam("filter")
	tag := domain.NormalizeTag(c.QueryParam("tag"))
	filter, err := domain.ParseFilter(filterParam)
	if err != nil {
		return reject(c, http.StatusBadRequest, "invalid_filter", err.Error())
	}

	var tasks []model.Task
	if err := h.timed(c, func() (err error) {
		tasks, err = h.store.ListTasks(ctx, userFrom(c))
		return err
	}); err != nil {
		return h.storageError(c, err)
	}

	if filterParam != "" || tag != "" {
		tasks = slices.DeleteFunc(tasks, func(t model.Task) bool {
			d := t.Domain()
			return !filter.Match(d) || (tag != "" && !d.HasTag(tag))
		})
		slices.SortStableFunc(tasks, func(a, b model.Task) int {
			switch {
			case a.Pinned && !b.Pinned:
				return -1
			case !a.Pinned && b.Pinned:
				return 1
			}
			return 0
		})
	}
	for i := range tasks {
		tasks[i] = tasks[i].Clone()
	}
	metricsFrom(c).SetTasksReturned(len(tasks))
	return c.JSON(http.StatusOK, tasks)
}

func (h *handler) createTask(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userFrom(c)

	var req createTaskRequest
	if err := decodeJSON(c, &req); err != nil {
		return reject(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	text := strings.TrimSpace(req.Task)
	if text == "" {
		return reject(c, http.StatusBadRequest, "validation", "Task text is required")
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = domain.DefaultColor
	}

	key := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if key != "" && h.deduper != nil {
		added, err := h.deduper.Add(ctx, userID, key)
		if err != nil {
			h.log.WithError(err).Warn("idempotency check failed, creating without it")
			key = ""
		} else if !added {
			return h.replayCreate(c, userID, key)
		}
	} else {
		key = ""
	}

	now := h.now()
	var created model.Task
	err := h.timed(c, func() (err error) {
		created, err = h.store.CreateTask(ctx, userID, model.Task{Text: text, Color: color, CreatedAt: now, UpdatedAt: now, Tags: []string{}})
		return err
	})
	if err != nil {
		if key != "" {
			if rerr := h.deduper.Remove(ctx, userID, key); rerr != nil {
				h.log.Errorf("dedupe rollback failed, err : %v, key: %s, user: %s", rerr, key, userID)
			}
		}
		return h.storageError(c, err)
	}
	if key != "" {
		if err := h.deduper.Resolve(ctx, userID, key, created.ID); err != nil {
			h.log.WithError(err).Warn("failed to record idempotency key")
		}
	}

	h.events.Send(model.Event{Type: model.TaskCreated, UserID: userID, TaskID: created.ID, Task: &created})
	return c.JSON(http.StatusCreated, created.Clone())
}

// replayCreate answers a repeated create with the task the first request made.
func (h *handler) replayCreate(c echo.Context, userID, key string) error {
	ctx := c.Request().Context()
	id, ok, err := h.deduper.Lookup(ctx, userID, key)
	if err != nil {
		return h.storageError(c, err)
	}
	if !ok {
		return reject(c, http.StatusConflict, "duplicate_in_flight", "A request with this Idempotency-Key is still in progress")
	}
	var task model.Task
	if err := h.timed(c, func() (err error) {
		task, err = h.store.GetTask(ctx, userID, id)
		return err
	}); err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, task.Clone())
}

func (h *handler) reorder(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userFrom(c)

	var req reorderRequest
	if err := decodeJSON(c, &req); err != nil {
		return reject(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	if len(req.TaskIDs) == 0 {
		return reject(c, http.StatusBadRequest, "validation", "No task IDs provided")
	}
	ids := make([]int64, 0, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return reject(c, http.StatusBadRequest, "validation", fmt.Sprintf("invalid task id %q", raw))
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	if err := h.timed(c, func() error { return h.store.Reorder(ctx, userID, ids) }); err != nil {
		return h.storageError(c, err)
	}
	h.events.Send(model.Event{Type: model.TasksReordered, UserID: userID, TaskIDs: ids})
	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}

func (h *handler) taskDetails(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := taskID(c)
	if !ok {
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	}
	var task model.Task
	if err := h.timed(c, func() (err error) {
		task, err = h.store.GetTask(ctx, userFrom(c), id)
		return err
	}); err != nil {
		return h.storageError(c, err)
	}

	deadline := domain.DeadlineFor(task.DueDate, task.Completed, h.now().Local())
	return c.JSON(http.StatusOK, taskDetailsResponse{
		Task:             task.Text,
		CreatedAtDisplay: displayTime(task.CreatedAt),
		UpdatedAtDisplay: displayTime(task.UpdatedAt),
		DueDate:          task.DueDate,
		WarningMessage:   deadline.Warning,
		TimeRemaining:    deadline.TimeRemaining,
		Tags:             task.Clone().Tags,
	})
}

func displayTime(t time.Time) string {
	if t.IsZero() {
		return domain.FormatDisplayTime(t)
	}
	return domain.FormatDisplayTime(t.Local())
}

func listTags(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.FixedTags)
}

// tagFromBody validates the tag named in the request body. When ok is false
// the response has already been written and err is its result.
func tagFromBody(c echo.Context) (tag string, ok bool, err error) {
	var req tagRequest
	if err := decodeJSON(c, &req); err != nil {
		return "", false, reject(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	tag = domain.NormalizeTag(req.TagName)
	if tag == "" {
		return "", false, reject(c, http.StatusBadRequest, "validation", "Tag name required")
	}
	if !domain.IsFixedTag(tag) {
		return "", false, reject(c, http.StatusBadRequest, "validation", fmt.Sprintf("Tag %q is not a valid predefined tag.", tag))
	}
	return tag, true, nil
}

func (h *handler) addTag(c echo.Context) error {
	id, ok := taskID(c)
	if !ok {
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	}
	tag, ok, err := tagFromBody(c)
	if !ok {
		return err
	}
	now := h.now()
	_, err = h.update(c, id, func(t *model.Task) error {
		if slices.Contains(t.Tags, tag) {
			return errDuplicateTag
		}
		t.Tags = append(t.Tags, tag)
		slices.Sort(t.Tags)
		t.Touch(now)
		return nil
	})
	if errors.Is(err, errDuplicateTag) {
		return reject(c, http.StatusConflict, "duplicate_tag", fmt.Sprintf("Tag %q already exists for this task.", tag))
	}
	if err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusCreated, statusResponse{Status: "added", Tag: tag})
}

func (h *handler) removeTag(c echo.Context) error {
	id, ok := taskID(c)
	if !ok {
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	}
	tag, ok, err := tagFromBody(c)
	if !ok {
		return err
	}
	now := h.now()
	_, err = h.update(c, id, func(t *model.Task) error {
		i := slices.Index(t.Tags, tag)
		if i < 0 {
			return model.ErrUnchanged
		}
		t.Tags = slices.Delete(t.Tags, i, i+1)
		t.Touch(now)
		return nil
	})
	if err != nil && !errors.Is(err, model.ErrUnchanged) {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "removed", Tag: tag})
}

func (h *handler) setDueDate(c echo.Context) error {
	due := strings.TrimSpace(c.FormValue("due_date"))
	if !domain.ValidDueDate(due) {
		return reject(c, http.StatusBadRequest, "validation", fmt.Sprintf("%q is not a YYYY-MM-DD date", due))
	}
	now := h.now()
	return h.mutate(c, func(t *model.Task) error {
		t.DueDate = due
		t.Touch(now)
		return nil
	})
}

func (h *handler) edit(c echo.Context) error {
	text := strings.TrimSpace(c.FormValue("new_task_text"))
	if text == "" {
		return reject(c, http.StatusBadRequest, "validation", "Task text is required")
	}
	now := h.now()
	return h.mutate(c, func(t *model.Task) error {
		t.Text = text
		t.Touch(now)
		return nil
	})
}

func (h *handler) toggle(c echo.Context) error {
	now := h.now()
	return h.mutate(c, func(t *model.Task) error {
		t.Completed = !t.Completed
		t.Touch(now)
		return nil
	})
}

func (h *handler) pin(c echo.Context) error {
	now := h.now()
	return h.mutate(c, func(t *model.Task) error {
		t.Pinned = !t.Pinned
		t.Touch(now)
		return nil
	})
}

func (h *handler) color(c echo.Context) error {
	color := strings.TrimSpace(c.FormValue("color"))
	if color == "" {
		return reject(c, http.StatusBadRequest, "validation", "Color is required")
	}
	now := h.now()
	return h.mutate(c, func(t *model.Task) error {
		t.Color = color
		t.Touch(now)
		return nil
	})
}

// mutate applies fn to the task named in the path and answers with a status.
func (h *handler) mutate(c echo.Context, fn func(*model.Task) error) error {
	id, ok := taskID(c)
	if !ok {
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	}
	if _, err := h.update(c, id, fn); err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}

func (h *handler) update(c echo.Context, id int64, fn func(*model.Task) error) (model.Task, error) {
	ctx := c.Request().Context()
	userID := userFrom(c)
	var task model.Task
	err := h.timed(c, func() (err error) {
		task, err = h.store.UpdateTask(ctx, userID, id, fn)
		return err
	})
	if err == nil {
		h.events.Send(model.Event{Type: model.TaskUpdated, UserID: userID, TaskID: id, Task: &task})
	}
	return task, err
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userFrom(c)
	id, ok := taskID(c)
	if !ok {
		return reject(c, http.StatusNotFound, "not_found", "Task not found")
	}
	if err := h.timed(c, func() error { return h.store.DeleteTask(ctx, userID, id) }); err != nil {
		return h.storageError(c, err)
	}
	h.events.Send(model.Event{Type: model.TaskDeleted, UserID: userID, TaskID: id})
	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}

func (h *handler) clearCompleted(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userFrom(c)
	var removed []int64
	err := h.timed(c, func() error {
		tasks, err := h.store.ListTasks(ctx, userID)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if !t.Completed {
				continue
			}
			if err := h.store.DeleteTask(ctx, userID, t.ID); err != nil && !errors.Is(err, model.ErrNotFound) {
				return err
			}
			removed = append(removed, t.ID)
		}
		return nil
	})
	if err != nil {
		return h.storageError(c, err)
	}
	if len(removed) > 0 {
		h.events.Send(model.Event{Type: model.CompletedCleared, UserID: userID, TaskIDs: removed})
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()
	var tasks []model.Task
	if err := h.timed(c, func() (err error) {
		tasks, err = h.store.ListTasks(ctx, userFrom(c))
		return err
	}); err != nil {
		return h.storageError(c, err)
	}
	all := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		all[i] = t.Domain()
	}
	return c.JSON(http.StatusOK, domain.ProgressOf(all))
}
