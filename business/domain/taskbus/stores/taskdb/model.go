package taskdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
	"github.com/jcpaschoal/jhgestor/business/types/taskstatus"
)

type taskDB struct {
	ID            uuid.UUID     `db:"task_id"`
	OwnerID       uuid.UUID     `db:"owner_id"`
	Title         string        `db:"title"`
	Description   string        `db:"description"`
	Status        string        `db:"status"`
	ResponsibleID uuid.NullUUID `db:"responsible_id"`
	Deadline      sql.NullTime  `db:"deadline"`
	Attachments   []byte        `db:"attachments"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func toDBTask(bus taskbus.Task) (taskDB, error) {
	atts, err := attachment.Marshal(bus.Attachments)
	if err != nil {
		return taskDB{}, err
	}

	db := taskDB{
		ID:            bus.ID,
		OwnerID:       bus.OwnerID,
		Title:         bus.Title,
		Description:   bus.Description,
		Status:        bus.Status.String(),
		ResponsibleID: uuid.NullUUID{UUID: bus.ResponsibleID, Valid: bus.ResponsibleID != uuid.Nil},
		Attachments:   atts,
		CreatedAt:     bus.CreatedAt.UTC(),
		UpdatedAt:     bus.UpdatedAt.UTC(),
	}

	if bus.Deadline != nil {
		db.Deadline = sql.NullTime{Time: bus.Deadline.UTC(), Valid: true}
	}

	return db, nil
}

func toBusTask(db taskDB, cmts []taskbus.Comment) (taskbus.Task, error) {
	st, err := taskstatus.Parse(db.Status)
	if err != nil {
		return taskbus.Task{}, fmt.Errorf("parse status: %w", err)
	}

	atts, err := attachment.Unmarshal(db.Attachments)
	if err != nil {
		return taskbus.Task{}, err
	}

	if cmts == nil {
		cmts = []taskbus.Comment{}
	}

	bus := taskbus.Task{
		ID:            db.ID,
		OwnerID:       db.OwnerID,
		Title:         db.Title,
		Description:   db.Description,
		Status:        st,
		ResponsibleID: db.ResponsibleID.UUID,
		Attachments:   atts,
		Comments:      cmts,
		CreatedAt:     db.CreatedAt.UTC(),
		UpdatedAt:     db.UpdatedAt.UTC(),
	}

	if db.Deadline.Valid {
		t := db.Deadline.Time.UTC()
		bus.Deadline = &t
	}

	return bus, nil
}

// =============================================================================

type commentDB struct {
	ID          uuid.UUID `db:"comment_id"`
	TaskID      uuid.UUID `db:"task_id"`
	UserID      uuid.UUID `db:"user_id"`
	UserName    string    `db:"user_name"`
	Content     string    `db:"content"`
	Attachments []byte    `db:"attachments"`
	CreatedAt   time.Time `db:"created_at"`
}

func toDBComment(bus taskbus.Comment) (commentDB, error) {
	atts, err := attachment.Marshal(bus.Attachments)
	if err != nil {
		return commentDB{}, err
	}

	db := commentDB{
		ID:          bus.ID,
		TaskID:      bus.TaskID,
		UserID:      bus.UserID,
		UserName:    bus.UserName,
		Content:     bus.Content,
		Attachments: atts,
		CreatedAt:   bus.CreatedAt.UTC(),
	}

	return db, nil
}

func toBusComment(db commentDB) (taskbus.Comment, error) {
	atts, err := attachment.Unmarshal(db.Attachments)
	if err != nil {
		return taskbus.Comment{}, err
	}

	bus := taskbus.Comment{
		ID:          db.ID,
		TaskID:      db.TaskID,
		UserID:      db.UserID,
		UserName:    db.UserName,
		Content:     db.Content,
		Attachments: atts,
		CreatedAt:   db.CreatedAt.UTC(),
	}

	return bus, nil
}

// toBusTasks joins the comments onto their tasks keeping both orders intact.
func toBusTasks(dbTsks []taskDB, dbCmts []commentDB) ([]taskbus.Task, error) {
	byTask := make(map[uuid.UUID][]taskbus.Comment, len(dbTsks))
	for _, dbCmt := range dbCmts {
		cmt, err := toBusComment(dbCmt)
		if err != nil {
			return nil, err
		}
		byTask[cmt.TaskID] = append(byTask[cmt.TaskID], cmt)
	}

	bus := make([]taskbus.Task, len(dbTsks))
	for i, dbTsk := range dbTsks {
		var err error
		bus[i], err = toBusTask(dbTsk, byTask[dbTsk.ID])
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
