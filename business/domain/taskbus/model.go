package taskbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
	"github.com/jcpaschoal/jhgestor/business/types/taskstatus"
)

// Task represents a unit of work assigned inside a tenant. ResponsibleID is
// uuid.Nil when nobody is assigned.
type Task struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Title         string
	Description   string
	Status        taskstatus.Status
	ResponsibleID uuid.UUID
	Deadline      *time.Time
	Attachments   []attachment.Attachment
	Comments      []Comment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Comment is a note left on a task, kept in the order it was written.
type Comment struct {
	ID          uuid.UUID
	TaskID      uuid.UUID
	UserID      uuid.UUID
	UserName    string
	Content     string
	Attachments []attachment.Attachment
	CreatedAt   time.Time
}

// NewTask is what we require when adding a Task.
type NewTask struct {
	OwnerID       uuid.UUID
	Title         string
	Description   string
	Status        taskstatus.Status
	ResponsibleID uuid.UUID
	Deadline      *time.Time
	Attachments   []attachment.Attachment
}

// UpdateTask defines what information may be provided to modify an existing
// Task. Only the fields that are set are applied.
type UpdateTask struct {
	Title         *string
	Description   *string
	Status        *taskstatus.Status
	ResponsibleID *uuid.UUID
	Deadline      *time.Time
	Attachments   []attachment.Attachment
	Version       *time.Time
}

// NewComment is what we require when commenting on a Task.
type NewComment struct {
	TaskID      uuid.UUID
	UserID      uuid.UUID
	UserName    string
	Content     string
	Attachments []attachment.Attachment
}

// CountCompleted returns how many tasks are done.
func CountCompleted(tasks []Task) int {
	var n int
	for _, t := range tasks {
		if t.Status == taskstatus.Completed {
			n++
		}
	}
	return n
}
