package chatdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
	"github.com/lib/pq"
)

type messageDB struct {
	ID          uuid.UUID      `db:"message_id"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	SenderID    uuid.UUID      `db:"sender_id"`
	SenderName  string         `db:"sender_name"`
	ReceiverID  string         `db:"receiver_id"`
	Content     string         `db:"content"`
	Attachments []byte         `db:"attachments"`
	ReadBy      pq.StringArray `db:"read_by"`
	CreatedAt   time.Time      `db:"created_at"`
}

func toDBMessage(bus chatbus.Message) (messageDB, error) {
	atts, err := attachment.Marshal(bus.Attachments)
	if err != nil {
		return messageDB{}, err
	}

	db := messageDB{
		ID:          bus.ID,
		OwnerID:     bus.OwnerID,
		SenderID:    bus.SenderID,
		SenderName:  bus.SenderName,
		ReceiverID:  bus.ReceiverID,
		Content:     bus.Content,
		Attachments: atts,
		ReadBy:      pq.StringArray(bus.ReadBy),
		CreatedAt:   bus.CreatedAt.UTC(),
	}

	return db, nil
}

func toBusMessage(db messageDB) (chatbus.Message, error) {
	atts, err := attachment.Unmarshal(db.Attachments)
	if err != nil {
		return chatbus.Message{}, err
	}

	readBy := []string(db.ReadBy)
	if readBy == nil {
		readBy = []string{}
	}

	bus := chatbus.Message{
		ID:          db.ID,
		OwnerID:     db.OwnerID,
		SenderID:    db.SenderID,
		SenderName:  db.SenderName,
		ReceiverID:  db.ReceiverID,
		Content:     db.Content,
		Attachments: atts,
		ReadBy:      readBy,
		CreatedAt:   db.CreatedAt.UTC(),
	}

	return bus, nil
}

func toBusMessages(dbs []messageDB) ([]chatbus.Message, error) {
	bus := make([]chatbus.Message, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusMessage(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type groupDB struct {
	ID          uuid.UUID      `db:"group_id"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	CreatedBy   uuid.UUID      `db:"created_by"`
	Members     pq.StringArray `db:"members"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toDBGroup(bus chatbus.Group) groupDB {
	members := make(pq.StringArray, len(bus.Members))
	for i, m := range bus.Members {
		members[i] = m.String()
	}

	return groupDB{
		ID:          bus.ID,
		OwnerID:     bus.OwnerID,
		Name:        bus.Name,
		Description: bus.Description,
		CreatedBy:   bus.CreatedBy,
		Members:     members,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusGroup(db groupDB) (chatbus.Group, error) {
	members := make([]uuid.UUID, len(db.Members))
	for i, m := range db.Members {
		id, err := uuid.Parse(m)
		if err != nil {
			return chatbus.Group{}, fmt.Errorf("parse member[%s]: %w", m, err)
		}
		members[i] = id
	}

	bus := chatbus.Group{
		ID:          db.ID,
		OwnerID:     db.OwnerID,
		Name:        db.Name,
		Description: db.Description,
		CreatedBy:   db.CreatedBy,
		Members:     members,
		CreatedAt:   db.CreatedAt.UTC(),
		UpdatedAt:   db.UpdatedAt.UTC(),
	}

	return bus, nil
}

func toBusGroups(dbs []groupDB) ([]chatbus.Group, error) {
	bus := make([]chatbus.Group, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusGroup(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
