// Package chatbus provides business access to chat messages and groups.
package chatbus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("group not found")
	ErrConflict     = errors.New("group was changed by someone else")
	ErrEmptyMessage = errors.New("message needs content or an attachment")
	ErrNoReceiver   = errors.New("message needs a receiver")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	CreateMessage(ctx context.Context, msg Message) error
	MarkRead(ctx context.Context, ownerID uuid.UUID, receiverID string, readerID uuid.UUID) (int64, error)
	DeleteMessagesTo(ctx context.Context, ownerID uuid.UUID, receiverID string) error
	QueryMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Message, error)
	CreateGroup(ctx context.Context, grp Group) error
	UpdateGroup(ctx context.Context, grp Group, version time.Time) error
	DeleteGroup(ctx context.Context, grp Group) error
	QueryGroupByID(ctx context.Context, groupID uuid.UUID) (Group, error)
	QueryGroupsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Group, error)
}

// Core manages the set of APIs for chat access.
type Core struct {
	storer Storer
}

// NewCore constructs a chat core API for use.
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

// Send stores a message. The sender has read their own message.
func (c *Core) Send(ctx context.Context, nm NewMessage) (Message, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.send")
	defer span.End()

	if nm.ReceiverID == "" {
		return Message{}, ErrNoReceiver
	}

	if nm.Content == "" && len(nm.Attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}

	msg := Message{
		ID:          uuid.New(),
		OwnerID:     nm.OwnerID,
		SenderID:    nm.SenderID,
		SenderName:  nm.SenderName,
		ReceiverID:  nm.ReceiverID,
		Content:     nm.Content,
		Attachments: nm.Attachments,
		ReadBy:      []string{nm.SenderID.String()},
		CreatedAt:   sqldb.Now(),
	}

	if err := c.storer.CreateMessage(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("createmessage: %w", err)
	}

	return msg, nil
}

// MarkRead records that the reader has seen every message sent to the
// receiver. It returns how many messages changed.
func (c *Core) MarkRead(ctx context.Context, ownerID uuid.UUID, receiverID string, readerID uuid.UUID) (int64, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.markread")
	defer span.End()

	n, err := c.storer.MarkRead(ctx, ownerID, receiverID, readerID)
	if err != nil {
		return 0, fmt.Errorf("markread: receiver[%s]: %w", receiverID, err)
	}

	return n, nil
}

// QueryMessagesByOwner returns every message of the tenant, oldest first.
func (c *Core) QueryMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Message, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.querymessagesbyowner")
	defer span.End()

	msgs, err := c.storer.QueryMessagesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return msgs, nil
}

// CreateGroup adds a new group. The creator is always a member.
func (c *Core) CreateGroup(ctx context.Context, ng NewGroup) (Group, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.creategroup")
	defer span.End()

	members := ng.Members
	if !slices.Contains(members, ng.CreatedBy) {
		members = append([]uuid.UUID{ng.CreatedBy}, members...)
	}

	now := sqldb.Now()

	grp := Group{
		ID:          uuid.New(),
		OwnerID:     ng.OwnerID,
		Name:        ng.Name,
		Description: ng.Description,
		CreatedBy:   ng.CreatedBy,
		Members:     members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.CreateGroup(ctx, grp); err != nil {
		return Group{}, fmt.Errorf("creategroup: %w", err)
	}

	return grp, nil
}

// UpdateGroup modifies information about a group.
func (c *Core) UpdateGroup(ctx context.Context, grp Group, ug UpdateGroup) (Group, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.updategroup")
	defer span.End()

	if ug.Version != nil && !ug.Version.Equal(grp.UpdatedAt) {
		return Group{}, fmt.Errorf("version: groupID[%s]: %w", grp.ID, ErrConflict)
	}

	if ug.Name != nil {
		grp.Name = *ug.Name
	}

	if ug.Description != nil {
		grp.Description = *ug.Description
	}

	if ug.Members != nil {
		grp.Members = ug.Members
		if !slices.Contains(grp.Members, grp.CreatedBy) {
			grp.Members = append([]uuid.UUID{grp.CreatedBy}, grp.Members...)
		}
	}

	version := grp.UpdatedAt
	grp.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.UpdateGroup(ctx, grp, version); err != nil {
		return Group{}, fmt.Errorf("updategroup: %w", err)
	}

	return grp, nil
}

// DeleteGroup removes the group and the conversation held in it. Run it
// inside a transaction.
func (c *Core) DeleteGroup(ctx context.Context, grp Group) error {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.deletegroup")
	defer span.End()

	if err := c.storer.DeleteMessagesTo(ctx, grp.OwnerID, grp.Receiver()); err != nil {
		return fmt.Errorf("deletemessagesto: %w", err)
	}

	if err := c.storer.DeleteGroup(ctx, grp); err != nil {
		return fmt.Errorf("deletegroup: %w", err)
	}

	return nil
}

// QueryGroupByID finds the group by the specified ID.
func (c *Core) QueryGroupByID(ctx context.Context, groupID uuid.UUID) (Group, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.querygroupbyid")
	defer span.End()

	grp, err := c.storer.QueryGroupByID(ctx, groupID)
	if err != nil {
		return Group{}, fmt.Errorf("query: groupID[%s]: %w", groupID, err)
	}

	return grp, nil
}

// QueryGroupsByOwner returns the tenant's groups, newest first.
func (c *Core) QueryGroupsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Group, error) {
	ctx, span := otel.AddSpan(ctx, "business.chatbus.querygroupsbyowner")
	defer span.End()

	grps, err := c.storer.QueryGroupsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return grps, nil
}
