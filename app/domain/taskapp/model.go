package taskapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
	"github.com/jcpaschoal/jhgestor/business/types/taskstatus"
)

// Comment is a note on a task.
type Comment struct {
	ID          string                  `json:"id"`
	TaskID      string                  `json:"taskId"`
	UserID      string                  `json:"userId"`
	UserName    string                  `json:"userName"`
	Content     string                  `json:"content"`
	Attachments []attachment.Attachment `json:"attachments"`
	DateCreated string                  `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (c Comment) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

func toAppComment(bus taskbus.Comment) Comment {
	return Comment{
		ID:          bus.ID.String(),
		TaskID:      bus.TaskID.String(),
		UserID:      bus.UserID.String(),
		UserName:    bus.UserName,
		Content:     bus.Content,
		Attachments: nonNil(bus.Attachments),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

// Task represents a unit of work of the tenant.
type Task struct {
	ID            string                  `json:"id"`
	OwnerID       string                  `json:"ownerId"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Status        string                  `json:"status"`
	ResponsibleID string                  `json:"responsibleId,omitempty"`
	Deadline      string                  `json:"deadline,omitempty"`
	Attachments   []attachment.Attachment `json:"attachments"`
	Comments      []Comment               `json:"comments"`
	DateCreated   string                  `json:"dateCreated"`
	DateUpdated   string                  `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (t Task) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

// ToAppTask converts a task for the wire.
func ToAppTask(bus taskbus.Task) Task {
	var responsible string
	if bus.ResponsibleID != uuid.Nil {
		responsible = bus.ResponsibleID.String()
	}

	var deadline string
	if bus.Deadline != nil {
		deadline = bus.Deadline.Format(time.RFC3339)
	}

	cmts := make([]Comment, len(bus.Comments))
	for i, c := range bus.Comments {
		cmts[i] = toAppComment(c)
	}

	return Task{
		ID:            bus.ID.String(),
		OwnerID:       bus.OwnerID.String(),
		Title:         bus.Title,
		Description:   bus.Description,
		Status:        bus.Status.String(),
		ResponsibleID: responsible,
		Deadline:      deadline,
		Attachments:   nonNil(bus.Attachments),
		Comments:      cmts,
		DateCreated:   bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:   bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppTasks converts a list of tasks.
func ToAppTasks(tsks []taskbus.Task) []Task {
	app := make([]Task, len(tsks))
	for i, tsk := range tsks {
		app[i] = ToAppTask(tsk)
	}
	return app
}

func nonNil(as []attachment.Attachment) []attachment.Attachment {
	if as == nil {
		return []attachment.Attachment{}
	}
	return as
}

func checkAttachments(as []attachment.Attachment) error {
	for i, a := range as {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("attachment[%d]: %w", i, err)
		}
	}
	return nil
}

func parseResponsible(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(value)
}

// =============================================================================

// NewTask defines the data needed to add a task.
type NewTask struct {
	Title         string                  `json:"title" validate:"required"`
	Description   string                  `json:"description"`
	Status        string                  `json:"status"`
	ResponsibleID string                  `json:"responsibleId" validate:"omitempty,uuid"`
	Deadline      string                  `json:"deadline"`
	Attachments   []attachment.Attachment `json:"attachments"`
}

// Decode implements the web.Decoder interface.
func (app *NewTask) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTask) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewTask(ownerID uuid.UUID, app NewTask) (taskbus.NewTask, error) {
	var st taskstatus.Status
	if app.Status != "" {
		s, err := taskstatus.Parse(app.Status)
		if err != nil {
			return taskbus.NewTask{}, fmt.Errorf("parse status: %w", err)
		}
		st = s
	}

	responsible, err := parseResponsible(app.ResponsibleID)
	if err != nil {
		return taskbus.NewTask{}, fmt.Errorf("parse responsible: %w", err)
	}

	var deadline *time.Time
	if app.Deadline != "" {
		d, err := time.Parse(time.RFC3339, app.Deadline)
		if err != nil {
			return taskbus.NewTask{}, fmt.Errorf("parse deadline: %w", err)
		}
		deadline = &d
	}

	if err := checkAttachments(app.Attachments); err != nil {
		return taskbus.NewTask{}, err
	}

	bus := taskbus.NewTask{
		OwnerID:       ownerID,
		Title:         app.Title,
		Description:   app.Description,
		Status:        st,
		ResponsibleID: responsible,
		Deadline:      deadline,
		Attachments:   app.Attachments,
	}

	return bus, nil
}

// =============================================================================

// UpdateTask defines the data needed to update a task.
type UpdateTask struct {
	Title         *string                 `json:"title"`
	Description   *string                 `json:"description"`
	Status        *string                 `json:"status"`
	ResponsibleID *string                 `json:"responsibleId"`
	Deadline      *string                 `json:"deadline"`
	Attachments   []attachment.Attachment `json:"attachments"`
	Version       *string                 `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateTask) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateTask) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateTask(app UpdateTask) (taskbus.UpdateTask, error) {
	var st *taskstatus.Status
	if app.Status != nil {
		s, err := taskstatus.Parse(*app.Status)
		if err != nil {
			return taskbus.UpdateTask{}, fmt.Errorf("parse status: %w", err)
		}
		st = &s
	}

	var responsible *uuid.UUID
	if app.ResponsibleID != nil {
		id, err := parseResponsible(*app.ResponsibleID)
		if err != nil {
			return taskbus.UpdateTask{}, fmt.Errorf("parse responsible: %w", err)
		}
		responsible = &id
	}

	var deadline *time.Time
	if app.Deadline != nil {
		d, err := time.Parse(time.RFC3339, *app.Deadline)
		if err != nil {
			return taskbus.UpdateTask{}, fmt.Errorf("parse deadline: %w", err)
		}
		deadline = &d
	}

	if err := checkAttachments(app.Attachments); err != nil {
		return taskbus.UpdateTask{}, err
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return taskbus.UpdateTask{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := taskbus.UpdateTask{
		Title:         app.Title,
		Description:   app.Description,
		Status:        st,
		ResponsibleID: responsible,
		Deadline:      deadline,
		Attachments:   app.Attachments,
		Version:       version,
	}

	return bus, nil
}

// =============================================================================

// NewComment defines the data needed to comment on a task.
type NewComment struct {
	Content     string                  `json:"content"`
	Attachments []attachment.Attachment `json:"attachments"`
}

// Decode implements the web.Decoder interface.
func (app *NewComment) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewComment) Validate() error {
	if app.Content == "" && len(app.Attachments) == 0 {
		return errs.NewFieldErrors("content", fmt.Errorf("content or attachments are required"))
	}
	return nil
}
