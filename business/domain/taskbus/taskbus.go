// Package taskbus provides business access to tasks and their comments.
package taskbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/taskstatus"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("task not found")
	ErrConflict     = errors.New("task was changed by someone else")
	ErrEmptyComment = errors.New("comment needs content or an attachment")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, tsk Task) error
	Update(ctx context.Context, tsk Task, version time.Time) error
	Delete(ctx context.Context, tsk Task) error
	QueryByID(ctx context.Context, taskID uuid.UUID) (Task, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	CreateComment(ctx context.Context, cmt Comment) error
	DeleteComments(ctx context.Context, taskID uuid.UUID) error
}

// Core manages the set of APIs for task access.
type Core struct {
	storer Storer
}

// NewCore constructs a task core API for use.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create adds a new task. A task without a status starts as pending.
func (c *Core) Create(ctx context.Context, nt NewTask) (Task, error) {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.create")
	defer span.End()

	st := nt.Status
	if st.IsZero() {
		st = taskstatus.Pending
	}

	now := sqldb.Now()

	tsk := Task{
		ID:            uuid.New(),
		OwnerID:       nt.OwnerID,
		Title:         nt.Title,
		Description:   nt.Description,
		Status:        st,
		ResponsibleID: nt.ResponsibleID,
		Deadline:      nt.Deadline,
		Attachments:   nt.Attachments,
		Comments:      []Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := c.storer.Create(ctx, tsk); err != nil {
		return Task{}, fmt.Errorf("create: %w", err)
	}

	return tsk, nil
}

// Update modifies information about a task.
func (c *Core) Update(ctx context.Context, tsk Task, ut UpdateTask) (Task, error) {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.update")
	defer span.End()

	if ut.Version != nil && !ut.Version.Equal(tsk.UpdatedAt) {
		return Task{}, fmt.Errorf("version: taskID[%s]: %w", tsk.ID, ErrConflict)
	}

	if ut.Title != nil {
		tsk.Title = *ut.Title
	}

	if ut.Description != nil {
		tsk.Description = *ut.Description
	}

	if ut.Status != nil {
		tsk.Status = *ut.Status
	}

	if ut.ResponsibleID != nil {
		tsk.ResponsibleID = *ut.ResponsibleID
	}

	if ut.Deadline != nil {
		tsk.Deadline = ut.Deadline
	}

	if ut.Attachments != nil {
		tsk.Attachments = ut.Attachments
	}

	version := tsk.UpdatedAt
	tsk.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, tsk, version); err != nil {
		return Task{}, fmt.Errorf("update: %w", err)
	}

	return tsk, nil
}

// Delete removes the task together with its comments. Run it inside a
// transaction so both go or neither does.
func (c *Core) Delete(ctx context.Context, tsk Task) error {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.delete")
	defer span.End()

	if err := c.storer.DeleteComments(ctx, tsk.ID); err != nil {
		return fmt.Errorf("deletecomments: %w", err)
	}

	if err := c.storer.Delete(ctx, tsk); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// AddComment appends a comment to the task.
func (c *Core) AddComment(ctx context.Context, nc NewComment) (Comment, error) {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.addcomment")
	defer span.End()

	if nc.Content == "" && len(nc.Attachments) == 0 {
		return Comment{}, ErrEmptyComment
	}

	cmt := Comment{
		ID:          uuid.New(),
		TaskID:      nc.TaskID,
		UserID:      nc.UserID,
		UserName:    nc.UserName,
		Content:     nc.Content,
		Attachments: nc.Attachments,
		CreatedAt:   sqldb.Now(),
	}

	if err := c.storer.CreateComment(ctx, cmt); err != nil {
		return Comment{}, fmt.Errorf("createcomment: %w", err)
	}

	return cmt, nil
}

// QueryByID finds the task by the specified ID, comments included.
func (c *Core) QueryByID(ctx context.Context, taskID uuid.UUID) (Task, error) {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.querybyid")
	defer span.End()

	tsk, err := c.storer.QueryByID(ctx, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("query: taskID[%s]: %w", taskID, err)
	}

	return tsk, nil
}

// QueryByOwner returns the tenant's tasks, newest first, each with its
// comments in the order they were written.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	ctx, span := otel.AddSpan(ctx, "business.taskbus.querybyowner")
	defer span.End()

	tsks, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return tsks, nil
}
