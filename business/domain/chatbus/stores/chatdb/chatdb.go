// Package chatdb contains chat related CRUD functionality.
package chatdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for chat database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (chatbus.Storer, error) {
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

// CreateMessage adds a Message to the database.
func (s *Store) CreateMessage(ctx context.Context, msg chatbus.Message) error {
	const q = `
	INSERT INTO messages
		(message_id, owner_id, sender_id, sender_name, receiver_id, content, attachments, read_by, created_at)
	VALUES
		(:message_id, :owner_id, :sender_id, :sender_name, :receiver_id, :content, :attachments, :read_by, :created_at)`

	dbMsg, err := toDBMessage(msg)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbMsg); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// MarkRead adds the reader to every message sent to the receiver that they
// have not read yet.
func (s *Store) MarkRead(ctx context.Context, ownerID uuid.UUID, receiverID string, readerID uuid.UUID) (int64, error) {
	data := struct {
		OwnerID    string `db:"owner_id"`
		ReceiverID string `db:"receiver_id"`
		ReaderID   string `db:"reader_id"`
	}{
		OwnerID:    ownerID.String(),
		ReceiverID: receiverID,
		ReaderID:   readerID.String(),
	}

	const q = `
	UPDATE
		messages
	SET
		read_by = array_append(read_by, :reader_id)
	WHERE
		owner_id = :owner_id AND
		receiver_id = :receiver_id AND
		NOT (:reader_id = ANY(read_by))`

	n, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return 0, fmt.Errorf("namedexeccontext: %w", err)
	}

	return n, nil
}

// DeleteMessagesTo removes every message sent to the receiver.
func (s *Store) DeleteMessagesTo(ctx context.Context, ownerID uuid.UUID, receiverID string) error {
	data := struct {
		OwnerID    string `db:"owner_id"`
		ReceiverID string `db:"receiver_id"`
	}{
		OwnerID:    ownerID.String(),
		ReceiverID: receiverID,
	}

	const q = `DELETE FROM messages WHERE owner_id = :owner_id AND receiver_id = :receiver_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryMessagesByOwner retrieves the tenant's messages, oldest first.
func (s *Store) QueryMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		message_id, owner_id, sender_id, sender_name, receiver_id, content, attachments, read_by, created_at
	FROM
		messages
	WHERE
		owner_id = :owner_id
	ORDER BY
		created_at`

	var dbMsgs []messageDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbMsgs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusMessages(dbMsgs)
}

// CreateGroup adds a Group to the database.
func (s *Store) CreateGroup(ctx context.Context, grp chatbus.Group) error {
	const q = `
	INSERT INTO chat_groups
		(group_id, owner_id, name, description, created_by, members, created_at, updated_at)
	VALUES
		(:group_id, :owner_id, :name, :description, :created_by, :members, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBGroup(grp)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// UpdateGroup replaces a group in the database as long as nobody changed it
// since version.
func (s *Store) UpdateGroup(ctx context.Context, grp chatbus.Group, version time.Time) error {
	const q = `
	UPDATE
		chat_groups
	SET
		name = :name,
		description = :description,
		members = :members,
		updated_at = :updated_at
	WHERE
		group_id = :group_id AND updated_at = :version`

	data := struct {
		groupDB
		Version time.Time `db:"version"`
	}{
		groupDB: toDBGroup(grp),
		Version: version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return chatbus.ErrConflict
	}

	return nil
}

// DeleteGroup removes the group identified by a given ID.
func (s *Store) DeleteGroup(ctx context.Context, grp chatbus.Group) error {
	data := struct {
		ID string `db:"group_id"`
	}{
		ID: grp.ID.String(),
	}

	const q = `DELETE FROM chat_groups WHERE group_id = :group_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryGroupByID finds the group identified by a given ID.
func (s *Store) QueryGroupByID(ctx context.Context, groupID uuid.UUID) (chatbus.Group, error) {
	data := struct {
		ID string `db:"group_id"`
	}{
		ID: groupID.String(),
	}

	const q = `
	SELECT
		group_id, owner_id, name, description, created_by, members, created_at, updated_at
	FROM
		chat_groups
	WHERE
		group_id = :group_id`

	var dbGrp groupDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbGrp); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return chatbus.Group{}, fmt.Errorf("db: %w", chatbus.ErrNotFound)
		}
		return chatbus.Group{}, fmt.Errorf("db: %w", err)
	}

	return toBusGroup(dbGrp)
}

// QueryGroupsByOwner retrieves the tenant's groups, newest first.
func (s *Store) QueryGroupsByOwner(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		group_id, owner_id, name, description, created_by, members, created_at, updated_at
	FROM
		chat_groups
	WHERE
		owner_id = :owner_id
	ORDER BY
		created_at DESC`

	var dbGrps []groupDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbGrps); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusGroups(dbGrps)
}
