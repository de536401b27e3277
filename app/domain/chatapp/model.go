package chatapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/types/attachment"
)

// Message is a chat message.
type Message struct {
	ID          string                  `json:"id"`
	OwnerID     string                  `json:"ownerId"`
	SenderID    string                  `json:"senderId"`
	SenderName  string                  `json:"senderName"`
	ReceiverID  string                  `json:"receiverId"`
	Content     string                  `json:"content"`
	Attachments []attachment.Attachment `json:"attachments"`
	ReadBy      []string                `json:"readBy"`
	DateCreated string                  `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (m Message) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

// ToAppMessage converts a message for the wire.
func ToAppMessage(bus chatbus.Message) Message {
	atts := bus.Attachments
	if atts == nil {
		atts = []attachment.Attachment{}
	}

	readBy := bus.ReadBy
	if readBy == nil {
		readBy = []string{}
	}

	return Message{
		ID:          bus.ID.String(),
		OwnerID:     bus.OwnerID.String(),
		SenderID:    bus.SenderID.String(),
		SenderName:  bus.SenderName,
		ReceiverID:  bus.ReceiverID,
		Content:     bus.Content,
		Attachments: atts,
		ReadBy:      readBy,
		DateCreated: bus.CreatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppMessages converts a list of messages.
func ToAppMessages(msgs []chatbus.Message) []Message {
	app := make([]Message, len(msgs))
	for i, msg := range msgs {
		app[i] = ToAppMessage(msg)
	}
	return app
}

// Group is a conversation between several members.
type Group struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"ownerId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"createdBy"`
	Members     []string `json:"members"`
	ReceiverID  string   `json:"receiverId"`
	DateUpdated string   `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (g Group) Encode() ([]byte, string, error) {
	data, err := json.Marshal(g)
	return data, "application/json", err
}

// ToAppGroup converts a group for the wire.
func ToAppGroup(bus chatbus.Group) Group {
	members := make([]string, len(bus.Members))
	for i, m := range bus.Members {
		members[i] = m.String()
	}

	return Group{
		ID:          bus.ID.String(),
		OwnerID:     bus.OwnerID.String(),
		Name:        bus.Name,
		Description: bus.Description,
		CreatedBy:   bus.CreatedBy.String(),
		Members:     members,
		ReceiverID:  bus.Receiver(),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppGroups converts a list of groups.
func ToAppGroups(grps []chatbus.Group) []Group {
	app := make([]Group, len(grps))
	for i, grp := range grps {
		app[i] = ToAppGroup(grp)
	}
	return app
}

// ReadResult reports how many messages a read receipt touched.
type ReadResult struct {
	Updated int64 `json:"updated"`
}

// Encode implements the web.Encoder interface.
func (r ReadResult) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func parseMembers(ids []string) ([]uuid.UUID, error) {
	members := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse member %q: %w", s, err)
		}
		members = append(members, id)
	}
	return members, nil
}

// =============================================================================

// NewMessage defines the data needed to send a message.
type NewMessage struct {
	ReceiverID  string                  `json:"receiverId" validate:"required"`
	Content     string                  `json:"content"`
	Attachments []attachment.Attachment `json:"attachments"`
}

// Decode implements the web.Decoder interface.
func (app *NewMessage) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewMessage) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}

	for i, a := range app.Attachments {
		if err := a.Validate(); err != nil {
			return errs.NewFieldErrors(fmt.Sprintf("attachments[%d]", i), err)
		}
	}

	return nil
}

// MarkRead names the conversation the caller has read.
type MarkRead struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *MarkRead) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app MarkRead) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// NewGroup defines the data needed to create a group.
type NewGroup struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// Decode implements the web.Decoder interface.
func (app *NewGroup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewGroup) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// UpdateGroup defines the data needed to update a group.
type UpdateGroup struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Members     []string `json:"members"`
	Version     *string  `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateGroup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateGroup) Validate() error {
	if app.Name != nil && *app.Name == "" {
		return errs.NewFieldErrors("name", fmt.Errorf("name can't be empty"))
	}
	return nil
}

func toBusUpdateGroup(app UpdateGroup) (chatbus.UpdateGroup, error) {
	var members []uuid.UUID
	if app.Members != nil {
		m, err := parseMembers(app.Members)
		if err != nil {
			return chatbus.UpdateGroup{}, err
		}
		members = m
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return chatbus.UpdateGroup{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := chatbus.UpdateGroup{
		Name:        app.Name,
		Description: app.Description,
		Members:     members,
		Version:     version,
	}

	return bus, nil
}
