// Package chatapp maintains the app layer api for the team chat.
package chatapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	userBus *userbus.Core
	chatBus *chatbus.Core
}

func newApp(userBus *userbus.Core, chatBus *chatbus.Core) *app {
	return &app{
		userBus: userBus,
		chatBus: chatBus,
	}
}

func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	chatBus, err := a.chatBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &app{
		userBus: a.userBus,
		chatBus: chatBus,
	}, nil
}

func (a *app) send(ctx context.Context, r *http.Request) web.Encoder {
	var req NewMessage
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	if resp := a.checkReceiver(ctx, usr, req.ReceiverID); resp != nil {
		return resp
	}

	nm := chatbus.NewMessage{
		OwnerID:     usr.OwnerID,
		SenderID:    usr.ID,
		SenderName:  usr.Name.String(),
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		Attachments: req.Attachments,
	}

	msg, err := a.chatBus.Send(ctx, nm)
	if err != nil {
		switch {
		case errors.Is(err, chatbus.ErrEmptyMessage):
			return errs.New(errs.InvalidArgument, chatbus.ErrEmptyMessage)
		case errors.Is(err, chatbus.ErrNoReceiver):
			return errs.New(errs.InvalidArgument, chatbus.ErrNoReceiver)
		}
		return errs.Errorf(errs.InternalOnlyLog, "send: receiver[%s]: %s", nm.ReceiverID, err)
	}

	return ToAppMessage(msg)
}

func (a *app) markRead(ctx context.Context, r *http.Request) web.Encoder {
	var req MarkRead
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	n, err := a.chatBus.MarkRead(ctx, usr.OwnerID, req.ReceiverID, usr.ID)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "markread: receiver[%s]: %s", req.ReceiverID, err)
	}

	return ReadResult{Updated: n}
}

func (a *app) createGroup(ctx context.Context, r *http.Request) web.Encoder {
	var req NewGroup
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	members, err := parseMembers(req.Members)
	if err != nil {
		return errs.NewFieldErrors("members", err)
	}

	if resp := a.checkMembers(ctx, usr, members); resp != nil {
		return resp
	}

	ng := chatbus.NewGroup{
		OwnerID:     usr.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   usr.ID,
		Members:     members,
	}

	grp, err := a.chatBus.CreateGroup(ctx, ng)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "creategroup: name[%s]: %s", ng.Name, err)
	}

	return ToAppGroup(grp)
}

func (a *app) updateGroup(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateGroup
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	grp, resp := a.ownedGroup(ctx, r)
	if resp != nil {
		return resp
	}

	ug, err := toBusUpdateGroup(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	if resp := a.checkMembers(ctx, usr, ug.Members); resp != nil {
		return resp
	}

	upd, err := a.chatBus.UpdateGroup(ctx, grp, ug)
	if err != nil {
		if errors.Is(err, chatbus.ErrConflict) {
			return errs.New(errs.Aborted, chatbus.ErrConflict)
		}
		return errs.Errorf(errs.InternalOnlyLog, "updategroup: groupID[%s]: %s", grp.ID, err)
	}

	return ToAppGroup(upd)
}

func (a *app) deleteGroup(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	grp, resp := a.ownedGroup(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.chatBus.DeleteGroup(ctx, grp); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "deletegroup: groupID[%s]: %s", grp.ID, err)
	}

	return nil
}

// =============================================================================

// checkReceiver accepts a member of the sender's tenant or one of its
// groups.
func (a *app) checkReceiver(ctx context.Context, usr userbus.User, receiverID string) web.Encoder {
	if chatbus.IsGroupReceiver(receiverID) {
		groupID, err := chatbus.ParseGroupReceiver(receiverID)
		if err != nil {
			return errs.NewFieldErrors("receiverId", err)
		}

		grp, err := a.chatBus.QueryGroupByID(ctx, groupID)
		if err != nil || grp.OwnerID != usr.OwnerID {
			return errs.New(errs.NotFound, chatbus.ErrNotFound)
		}

		return nil
	}

	userID, err := uuid.Parse(receiverID)
	if err != nil {
		return errs.NewFieldErrors("receiverId", err)
	}

	return a.checkMembers(ctx, usr, []uuid.UUID{userID})
}

// checkMembers refuses users that do not belong to the caller's tenant.
func (a *app) checkMembers(ctx context.Context, usr userbus.User, ids []uuid.UUID) web.Encoder {
	for _, id := range ids {
		member, err := a.userBus.QueryByID(ctx, id)
		if err != nil {
			if errors.Is(err, userbus.ErrNotFound) {
				return errs.NewFieldErrors("members", fmt.Errorf("user %s not found", id))
			}
			return errs.Errorf(errs.InternalOnlyLog, "querybyid: userID[%s]: %s", id, err)
		}

		if member.OwnerID != usr.OwnerID {
			return errs.NewFieldErrors("members", fmt.Errorf("user %s not found", id))
		}
	}

	return nil
}

func (a *app) ownedGroup(ctx context.Context, r *http.Request) (chatbus.Group, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return chatbus.Group{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	groupID, err := uuid.Parse(web.Param(r, "group_id"))
	if err != nil {
		return chatbus.Group{}, errs.NewFieldErrors("group_id", err)
	}

	grp, err := a.chatBus.QueryGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, chatbus.ErrNotFound) {
			return chatbus.Group{}, errs.New(errs.NotFound, chatbus.ErrNotFound)
		}
		return chatbus.Group{}, errs.Errorf(errs.InternalOnlyLog, "querygroupbyid: groupID[%s]: %s", groupID, err)
	}

	if grp.OwnerID != usr.OwnerID {
		return chatbus.Group{}, errs.New(errs.NotFound, chatbus.ErrNotFound)
	}

	return grp, nil
}
