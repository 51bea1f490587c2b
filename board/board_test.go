package board

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

type memStore struct {
	tasks   []domain.Task
	saves   []domain.Command
	loadErr error
	saveErr error
}

func (s *memStore) Load(ctx context.Context) ([]domain.Task, error) {
	return domain.CloneAll(s.tasks), s.loadErr
}

func (s *memStore) Save(ctx context.Context, cmd domain.Command, tasks []domain.Task) ([]domain.Task, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saves = append(s.saves, cmd)
	s.tasks = domain.CloneAll(tasks)
	return tasks, nil
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, store *memStore) *Manager {
	t.Helper()
	tick := 0
	seq := 0
	logger, _ := test.NewNullLogger()
	m := New(store,
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("t%d", seq)
		}),
		WithLogger(logger),
	)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func viewIDs(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestBuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := newTestManager(t, store)

	task, err := m.AddTask(ctx, "Buy milk", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(m.Tasks()) != 1 || task.Done || task.Pinned {
		t.Fatalf("unexpected state after add: %#v", m.Tasks())
	}
	if task.Color != domain.DefaultColor {
		t.Fatalf("expected default color, got %q", task.Color)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on create")
	}

	if err := m.TogglePin(ctx, task.ID); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := m.SetFilter(ctx, "pinned"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := viewIDs(m.View()); !reflect.DeepEqual(got, []string{task.ID}) {
		t.Fatalf("pinned view: %v", got)
	}
	_ = m.SetFilter(ctx, "notdone")
	if got := viewIDs(m.View()); !reflect.DeepEqual(got, []string{task.ID}) {
		t.Fatalf("notdone view: %v", got)
	}

	if err := m.ToggleDone(ctx, task.ID); err != nil {
		t.Fatalf("done: %v", err)
	}
	_ = m.SetFilter(ctx, "done")
	if got := viewIDs(m.View()); !reflect.DeepEqual(got, []string{task.ID}) {
		t.Fatalf("done view: %v", got)
	}
	_ = m.SetFilter(ctx, "notdone")
	if got := m.View(); len(got) != 0 {
		t.Fatalf("notdone view should be empty, got %v", viewIDs(got))
	}

	if err := m.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(m.Tasks()) != 0 || len(store.tasks) != 0 {
		t.Fatalf("expected empty list after delete")
	}
}

func TestAddRejectsWhitespace(t *testing.T) {
	store := &memStore{}
	m := newTestManager(t, store)

	_, err := m.AddTask(context.Background(), " \t\n ", "#ff0000")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(m.Tasks()) != 0 || len(store.saves) != 0 {
		t.Fatalf("rejected add must not change or persist state")
	}
}

func TestAddsMinusDeletesEqualsLength(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &memStore{})
	rng := rand.New(rand.NewSource(7))

	adds, deletes := 0, 0
	for i := 0; i < 200; i++ {
		tasks := m.Tasks()
		if len(tasks) > 0 && rng.Intn(3) == 0 {
			victim := tasks[rng.Intn(len(tasks))]
			if err := m.DeleteTask(ctx, victim.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			deletes++
			continue
		}
		if _, err := m.AddTask(ctx, fmt.Sprintf("note %d", i), ""); err != nil {
			t.Fatalf("add: %v", err)
		}
		adds++
	}
	if got := len(m.Tasks()); got != adds-deletes {
		t.Fatalf("expected %d tasks, got %d", adds-deletes, got)
	}
}

func TestPinAndDoneTimestamps(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &memStore{})
	task, _ := m.AddTask(ctx, "water plants", "")

	last := task.UpdatedAt
	check := func(step string, wantBump bool) domain.Task {
		t.Helper()
		cur, ok := m.Task(task.ID)
		if !ok {
			t.Fatalf("%s: task missing", step)
		}
		if cur.UpdatedAt.Before(last) {
			t.Fatalf("%s: updatedAt went backwards", step)
		}
		if bumped := cur.UpdatedAt.After(last); bumped != wantBump {
			t.Fatalf("%s: bumped=%v want %v", step, bumped, wantBump)
		}
		if cur.UpdatedAt.Before(cur.CreatedAt) {
			t.Fatalf("%s: updatedAt before createdAt", step)
		}
		last = cur.UpdatedAt
		return cur
	}

	_ = m.TogglePin(ctx, task.ID)
	if cur := check("pin", true); !cur.Pinned {
		t.Fatalf("expected pinned")
	}
	_ = m.TogglePin(ctx, task.ID)
	if cur := check("unpin", true); cur.Pinned != task.Pinned {
		t.Fatalf("double toggle should restore pinned")
	}
	_ = m.ToggleDone(ctx, task.ID)
	check("done", false)
	_ = m.EditText(ctx, task.ID, "  water all plants ")
	if cur := check("edit", true); cur.Text != "water all plants" {
		t.Fatalf("unexpected text %q", cur.Text)
	}
	_ = m.SetColor(ctx, task.ID, "#00ff00")
	check("color", true)
}

func TestEditRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &memStore{})
	task, _ := m.AddTask(ctx, "draft", "")

	var verr *domain.ValidationError
	if err := m.EditText(ctx, task.ID, "   "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if cur, _ := m.Task(task.ID); cur.Text != "draft" {
		t.Fatalf("text changed on rejected edit: %q", cur.Text)
	}
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []domain.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	m := newTestManager(t, store)

	if err := m.Reorder(ctx, []string{"zzz", "c", "a", "c"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := viewIDs(m.Tasks()); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected order %v", got)
	}
	sent := store.saves[len(store.saves)-1]
	if !reflect.DeepEqual(sent.TaskIDs, []string{"c", "a"}) {
		t.Fatalf("store should receive only known ids, got %v", sent.TaskIDs)
	}

	saves := len(store.saves)
	if err := m.Reorder(ctx, []string{"nope"}); err != nil {
		t.Fatalf("reorder unknown: %v", err)
	}
	if len(store.saves) != saves {
		t.Fatalf("reorder without known ids must not persist")
	}
}

func TestReorderSwap(t *testing.T) {
	store := &memStore{tasks: []domain.Task{{ID: "a"}, {ID: "b"}}}
	m := newTestManager(t, store)
	if err := m.Reorder(context.Background(), []string{"b", "a"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := viewIDs(store.tasks); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("unexpected persisted order %v", got)
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := newTestManager(t, store)
	task, _ := m.AddTask(ctx, "report", "")

	if err := m.AddTag(ctx, task.ID, "  Office "); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if err := m.AddTag(ctx, task.ID, "office"); !errors.Is(err, domain.ErrDuplicateTag) {
		t.Fatalf("expected duplicate tag error, got %v", err)
	}
	if cur, _ := m.Task(task.ID); !reflect.DeepEqual(cur.Tags, []string{"office"}) {
		t.Fatalf("unexpected tags %v", cur.Tags)
	}
	if got := store.saves[len(store.saves)-1]; got.Tag != "office" {
		t.Fatalf("store should see normalized tag, got %q", got.Tag)
	}

	saves := len(store.saves)
	if err := m.RemoveTag(ctx, task.ID, "urgent"); err != nil {
		t.Fatalf("remove absent tag: %v", err)
	}
	if len(store.saves) != saves {
		t.Fatalf("removing an absent tag must not persist")
	}
	if err := m.RemoveTag(ctx, task.ID, "OFFICE"); err != nil {
		t.Fatalf("remove tag: %v", err)
	}
	if cur, _ := m.Task(task.ID); cur.Tags != nil {
		t.Fatalf("expected no tags, got %v", cur.Tags)
	}
}

func TestSetDueDate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &memStore{})
	task, _ := m.AddTask(ctx, "taxes", "")

	var verr *domain.ValidationError
	if err := m.SetDueDate(ctx, task.ID, "04/15/2025"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := m.SetDueDate(ctx, task.ID, "2025-04-15"); err != nil {
		t.Fatalf("set due date: %v", err)
	}
	if cur, _ := m.Task(task.ID); cur.DueDate != "2025-04-15" {
		t.Fatalf("unexpected due date %q", cur.DueDate)
	}
	if err := m.SetDueDate(ctx, task.ID, ""); err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if cur, _ := m.Task(task.ID); cur.DueDate != "" {
		t.Fatalf("due date not cleared")
	}
}

func TestUnknownTask(t *testing.T) {
	m := newTestManager(t, &memStore{})
	if err := m.TogglePin(context.Background(), "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestClearCompletedAndClearAll(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []domain.Task{{ID: "a", Done: true}, {ID: "b"}, {ID: "c", Done: true}}}
	m := newTestManager(t, store)

	if err := m.ClearCompleted(ctx); err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if got := viewIDs(m.Tasks()); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("unexpected tasks %v", got)
	}
	if err := m.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if len(m.Tasks()) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestSaveFailureKeepsLastKnownGoodList(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []domain.Task{{ID: "a", Text: "keep"}}}
	m := newTestManager(t, store)
	boom := &domain.NetworkError{Op: "save", Err: errors.New("offline")}
	store.saveErr = boom

	if _, err := m.AddTask(ctx, "lost", ""); !errors.Is(err, boom) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err := m.TogglePin(ctx, "a"); err == nil {
		t.Fatalf("expected pin to fail")
	}
	got := m.Tasks()
	if len(got) != 1 || got[0].Pinned || got[0].Text != "keep" {
		t.Fatalf("state changed after failed save: %#v", got)
	}
}

func TestSetFilterDoesNotPersist(t *testing.T) {
	store := &memStore{}
	m := newTestManager(t, store)
	if err := m.SetFilter(context.Background(), "done"); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if m.Filter() != domain.FilterDone || len(store.saves) != 0 {
		t.Fatalf("filter should only change the projection")
	}
	var verr *domain.ValidationError
	if err := m.SetFilter(context.Background(), "someday"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if m.Filter() != domain.FilterDone {
		t.Fatalf("rejected filter must not change the active one")
	}
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &memStore{loadErr: fmt.Errorf("decode: %w", domain.ErrStorageCorrupt)}
	m := New(store, WithLogger(logger))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("corrupt load should not fail: %v", err)
	}
	if len(m.Tasks()) != 0 {
		t.Fatalf("expected empty list")
	}
	if hook.LastEntry() == nil {
		t.Fatalf("expected corruption to be logged")
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	store := &memStore{tasks: []domain.Task{{ID: "a"}}}
	m := newTestManager(t, store)
	store.loadErr = &domain.NetworkError{Op: "load", Err: errors.New("timeout")}

	if err := m.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if len(m.Tasks()) != 1 {
		t.Fatalf("failed load must keep current list")
	}
}

type headFirstStore struct{ memStore }

func (s *headFirstStore) Save(ctx context.Context, cmd domain.Command, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) > 1 {
		last := tasks[len(tasks)-1]
		tasks = append([]domain.Task{last}, tasks[:len(tasks)-1]...)
	}
	return s.memStore.Save(ctx, cmd, tasks)
}

func TestAddTaskFindsCreatedTaskByID(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	seq := 0
	m := New(&headFirstStore{}, WithLogger(logger), WithIDs(func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}))

	if _, err := m.AddTask(ctx, "first", ""); err != nil {
		t.Fatalf("add first: %v", err)
	}
	task, err := m.AddTask(ctx, "second", "")
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if task.ID != "t2" || task.Text != "second" {
		t.Fatalf("expected the created task, got %#v", task)
	}
	if got := m.Tasks()[0].ID; got != "t2" {
		t.Fatalf("expected store order to be kept, got head %q", got)
	}
}
