package taskbus_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/taskstatus"
)

type memStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]taskbus.Task
	comments map[uuid.UUID][]taskbus.Comment
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    make(map[uuid.UUID]taskbus.Task),
		comments: make(map[uuid.UUID][]taskbus.Comment),
	}
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (taskbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, tsk taskbus.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[tsk.ID] = tsk
	return nil
}

func (m *memStore) Update(ctx context.Context, tsk taskbus.Task, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[tsk.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return taskbus.ErrConflict
	}
	m.tasks[tsk.ID] = tsk
	return nil
}

func (m *memStore) Delete(ctx context.Context, tsk taskbus.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, tsk.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, taskID uuid.UUID) (taskbus.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tsk, ok := m.tasks[taskID]
	if !ok {
		return taskbus.Task{}, taskbus.ErrNotFound
	}
	tsk.Comments = append([]taskbus.Comment{}, m.comments[taskID]...)
	return tsk, nil
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tsks []taskbus.Task
	for _, tsk := range m.tasks {
		if tsk.OwnerID == ownerID {
			tsk.Comments = append([]taskbus.Comment{}, m.comments[tsk.ID]...)
			tsks = append(tsks, tsk)
		}
	}
	return tsks, nil
}

func (m *memStore) CreateComment(ctx context.Context, cmt taskbus.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[cmt.TaskID]; !ok {
		return taskbus.ErrNotFound
	}
	m.comments[cmt.TaskID] = append(m.comments[cmt.TaskID], cmt)
	return nil
}

func (m *memStore) DeleteComments(ctx context.Context, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, taskID)
	return nil
}

// =============================================================================

func Test_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	core := taskbus.NewCore(newMemStore())

	tsk, err := core.Create(ctx, taskbus.NewTask{
		OwnerID: uuid.New(),
		Title:   "Send invoice",
	})
	if err != nil {
		t.Fatalf("Should be able to create a task: %s", err)
	}

	if tsk.Status != taskstatus.Pending {
		t.Errorf("got status %s, want %s", tsk.Status, taskstatus.Pending)
	}
	if tsk.ResponsibleID != uuid.Nil {
		t.Errorf("got responsible %s, want nobody", tsk.ResponsibleID)
	}
	if !tsk.CreatedAt.Equal(tsk.UpdatedAt) {
		t.Errorf("Should stamp both dates the same: %s %s", tsk.CreatedAt, tsk.UpdatedAt)
	}
}

func Test_UpdateVersion(t *testing.T) {
	ctx := context.Background()
	core := taskbus.NewCore(newMemStore())

	tsk, err := core.Create(ctx, taskbus.NewTask{OwnerID: uuid.New(), Title: "Call supplier"})
	if err != nil {
		t.Fatalf("Should be able to create a task: %s", err)
	}
	stale := tsk.UpdatedAt

	done := taskstatus.Completed
	upd, err := core.Update(ctx, tsk, taskbus.UpdateTask{Status: &done, Version: &stale})
	if err != nil {
		t.Fatalf("Should be able to update with the current version: %s", err)
	}
	if upd.Status != taskstatus.Completed {
		t.Errorf("got status %s, want %s", upd.Status, taskstatus.Completed)
	}
	if !upd.UpdatedAt.After(stale) {
		t.Errorf("Should move the version forward: %s <= %s", upd.UpdatedAt, stale)
	}

	title := "Call supplier again"
	_, err = core.Update(ctx, upd, taskbus.UpdateTask{Title: &title, Version: &stale})
	if !errors.Is(err, taskbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, taskbus.ErrConflict)
	}

	// A writer that loaded the old row loses the race at the store.
	_, err = core.Update(ctx, tsk, taskbus.UpdateTask{Title: &title})
	if !errors.Is(err, taskbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, taskbus.ErrConflict)
	}
}

func Test_Comments(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := taskbus.NewCore(store)

	tsk, err := core.Create(ctx, taskbus.NewTask{OwnerID: uuid.New(), Title: "Review contract"})
	if err != nil {
		t.Fatalf("Should be able to create a task: %s", err)
	}

	_, err = core.AddComment(ctx, taskbus.NewComment{TaskID: tsk.ID, UserID: uuid.New()})
	if !errors.Is(err, taskbus.ErrEmptyComment) {
		t.Errorf("got %v, want %v", err, taskbus.ErrEmptyComment)
	}

	for _, content := range []string{"first", "second"} {
		if _, err := core.AddComment(ctx, taskbus.NewComment{TaskID: tsk.ID, UserID: uuid.New(), UserName: "Ana", Content: content}); err != nil {
			t.Fatalf("Should be able to comment: %s", err)
		}
	}

	got, err := core.QueryByID(ctx, tsk.ID)
	if err != nil {
		t.Fatalf("Should be able to query the task: %s", err)
	}

	var contents []string
	for _, c := range got.Comments {
		contents = append(contents, c.Content)
	}
	if !slices.Equal(contents, []string{"first", "second"}) {
		t.Errorf("got comments %v, want [first second]", contents)
	}

	if err := core.Delete(ctx, got); err != nil {
		t.Fatalf("Should be able to delete the task: %s", err)
	}
	if len(store.comments[tsk.ID]) != 0 {
		t.Errorf("Should remove the comments with the task, %d left", len(store.comments[tsk.ID]))
	}
	if _, err := core.QueryByID(ctx, tsk.ID); !errors.Is(err, taskbus.ErrNotFound) {
		t.Errorf("got %v, want %v", err, taskbus.ErrNotFound)
	}
}

func Test_CountCompleted(t *testing.T) {
	tasks := []taskbus.Task{
		{Status: taskstatus.Completed},
		{Status: taskstatus.Pending},
		{Status: taskstatus.InProgress},
		{Status: taskstatus.Completed},
	}

	if n := taskbus.CountCompleted(tasks); n != 2 {
		t.Errorf("got %d, want 2", n)
	}
}
