// Package taskdb contains task related CRUD functionality.
package taskdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for task database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (taskbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create adds a Task to the database.
func (s *Store) Create(ctx context.Context, tsk taskbus.Task) error {
	const q = `
	INSERT INTO tasks
		(task_id, owner_id, title, description, status, responsible_id, deadline, attachments, created_at, updated_at)
	VALUES
		(:task_id, :owner_id, :title, :description, :status, :responsible_id, :deadline, :attachments, :created_at, :updated_at)`

	dbTsk, err := toDBTask(tsk)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbTsk); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a task in the database as long as nobody changed it since
// version.
func (s *Store) Update(ctx context.Context, tsk taskbus.Task, version time.Time) error {
	const q = `
	UPDATE
		tasks
	SET
		title = :title,
		description = :description,
		status = :status,
		responsible_id = :responsible_id,
		deadline = :deadline,
		attachments = :attachments,
		updated_at = :updated_at
	WHERE
		task_id = :task_id AND updated_at = :version`

	dbTsk, err := toDBTask(tsk)
	if err != nil {
		return err
	}

	data := struct {
		taskDB
		Version time.Time `db:"version"`
	}{
		taskDB:  dbTsk,
		Version: version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return taskbus.ErrConflict
	}

	return nil
}

// Delete removes the task identified by a given ID.
func (s *Store) Delete(ctx context.Context, tsk taskbus.Task) error {
	data := struct {
		ID string `db:"task_id"`
	}{
		ID: tsk.ID.String(),
	}

	const q = `DELETE FROM tasks WHERE task_id = :task_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// CreateComment adds a comment to a task.
func (s *Store) CreateComment(ctx context.Context, cmt taskbus.Comment) error {
	const q = `
	INSERT INTO task_comments
		(comment_id, task_id, user_id, user_name, content, attachments, created_at)
	VALUES
		(:comment_id, :task_id, :user_id, :user_name, :content, :attachments, :created_at)`

	dbCmt, err := toDBComment(cmt)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbCmt); err != nil {
		var fkErr sqldb.ErrDBForeignKey
		if errors.As(err, &fkErr) {
			return fmt.Errorf("namedexeccontext: %w", taskbus.ErrNotFound)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteComments removes every comment of a task.
func (s *Store) DeleteComments(ctx context.Context, taskID uuid.UUID) error {
	data := struct {
		ID string `db:"task_id"`
	}{
		ID: taskID.String(),
	}

	const q = `DELETE FROM task_comments WHERE task_id = :task_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the task identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, taskID uuid.UUID) (taskbus.Task, error) {
	data := struct {
		ID string `db:"task_id"`
	}{
		ID: taskID.String(),
	}

	const q = `
	SELECT
		task_id, owner_id, title, description, status, responsible_id, deadline, attachments, created_at, updated_at
	FROM
		tasks
	WHERE
		task_id = :task_id`

	var dbTsk taskDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTsk); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return taskbus.Task{}, fmt.Errorf("db: %w", taskbus.ErrNotFound)
		}
		return taskbus.Task{}, fmt.Errorf("db: %w", err)
	}

	const qc = `
	SELECT
		comment_id, task_id, user_id, user_name, content, attachments, created_at
	FROM
		task_comments
	WHERE
		task_id = :task_id
	ORDER BY
		created_at`

	var dbCmts []commentDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, qc, data, &dbCmts); err != nil {
		return taskbus.Task{}, fmt.Errorf("namedqueryslice: %w", err)
	}

	tsks, err := toBusTasks([]taskDB{dbTsk}, dbCmts)
	if err != nil {
		return taskbus.Task{}, err
	}

	return tsks[0], nil
}

// QueryByOwner retrieves the tenant's tasks, newest first, with their
// comments.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		task_id, owner_id, title, description, status, responsible_id, deadline, attachments, created_at, updated_at
	FROM
		tasks
	WHERE
		owner_id = :owner_id
	ORDER BY
		created_at DESC`

	var dbTsks []taskDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbTsks); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	const qc = `
	SELECT
		c.comment_id, c.task_id, c.user_id, c.user_name, c.content, c.attachments, c.created_at
	FROM
		task_comments AS c
	JOIN
		tasks AS t ON t.task_id = c.task_id
	WHERE
		t.owner_id = :owner_id
	ORDER BY
		c.created_at`

	var dbCmts []commentDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, qc, data, &dbCmts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusTasks(dbTsks, dbCmts)
}
