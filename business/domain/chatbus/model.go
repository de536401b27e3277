package chatbus

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
)

// groupPrefix marks a receiver id that addresses a group instead of a user.
const groupPrefix = "group_"

// Message is a chat message. ReceiverID holds either a user id or the
// receiver id of a group, see GroupReceiver.
type Message struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	SenderID    uuid.UUID
	SenderName  string
	ReceiverID  string
	Content     string
	Attachments []attachment.Attachment
	ReadBy      []string
	CreatedAt   time.Time
}

// IsReadBy reports whether the user has already seen the message.
func (m Message) IsReadBy(userID uuid.UUID) bool {
	id := userID.String()
	for _, r := range m.ReadBy {
		if r == id {
			return true
		}
	}
	return false
}

// NewMessage is what we require when sending a Message.
type NewMessage struct {
	OwnerID     uuid.UUID
	SenderID    uuid.UUID
	SenderName  string
	ReceiverID  string
	Content     string
	Attachments []attachment.Attachment
}

// Group is a named conversation between several members of a tenant.
type Group struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	Members     []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Receiver returns the receiver id messages to the group are sent to.
func (g Group) Receiver() string {
	return GroupReceiver(g.ID)
}

// NewGroup is what we require when creating a Group.
type NewGroup struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	Members     []uuid.UUID
}

// UpdateGroup defines what information may be provided to modify an existing
// Group.
type UpdateGroup struct {
	Name        *string
	Description *string
	Members     []uuid.UUID
	Version     *time.Time
}

// GroupReceiver returns the receiver id of the group.
func GroupReceiver(groupID uuid.UUID) string {
	return groupPrefix + groupID.String()
}

// IsGroupReceiver reports whether the receiver id addresses a group.
func IsGroupReceiver(receiverID string) bool {
	return strings.HasPrefix(receiverID, groupPrefix)
}

// ParseGroupReceiver returns the group a receiver id addresses.
func ParseGroupReceiver(receiverID string) (uuid.UUID, error) {
	if !IsGroupReceiver(receiverID) {
		return uuid.Nil, fmt.Errorf("receiver %q is not a group", receiverID)
	}
	return uuid.Parse(strings.TrimPrefix(receiverID, groupPrefix))
}
