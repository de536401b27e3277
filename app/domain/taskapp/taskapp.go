// Package taskapp maintains the app layer api for tasks and their comments.
package taskapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	taskBus *taskbus.Core
}

func newApp(taskBus *taskbus.Core) *app {
	return &app{
		taskBus: taskBus,
	}
}

// newWithTx constructs a new app value using a store transaction that was
// created via middleware.
func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	taskBus, err := a.taskBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &app{
		taskBus: taskBus,
	}, nil
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewTask
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nt, err := toBusNewTask(usr.OwnerID, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tsk, err := a.taskBus.Create(ctx, nt)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create: title[%s]: %s", nt.Title, err)
	}

	return ToAppTask(tsk)
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateTask
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tsk, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	ut, err := toBusUpdateTask(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.taskBus.Update(ctx, tsk, ut)
	if err != nil {
		if errors.Is(err, taskbus.ErrConflict) {
			return errs.New(errs.Aborted, taskbus.ErrConflict)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: taskID[%s]: %s", tsk.ID, err)
	}

	return ToAppTask(upd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	a, err := a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	tsk, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.taskBus.Delete(ctx, tsk); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: taskID[%s]: %s", tsk.ID, err)
	}

	return nil
}

func (a *app) comment(ctx context.Context, r *http.Request) web.Encoder {
	var req NewComment
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	if err := checkAttachments(req.Attachments); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tsk, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nc := taskbus.NewComment{
		TaskID:      tsk.ID,
		UserID:      usr.ID,
		UserName:    usr.Name.String(),
		Content:     req.Content,
		Attachments: req.Attachments,
	}

	cmt, err := a.taskBus.AddComment(ctx, nc)
	if err != nil {
		if errors.Is(err, taskbus.ErrEmptyComment) {
			return errs.New(errs.InvalidArgument, taskbus.ErrEmptyComment)
		}
		return errs.Errorf(errs.InternalOnlyLog, "addcomment: taskID[%s]: %s", tsk.ID, err)
	}

	return toAppComment(cmt)
}

func (a *app) owned(ctx context.Context, r *http.Request) (taskbus.Task, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return taskbus.Task{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	taskID, err := uuid.Parse(web.Param(r, "task_id"))
	if err != nil {
		return taskbus.Task{}, errs.NewFieldErrors("task_id", err)
	}

	tsk, err := a.taskBus.QueryByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, taskbus.ErrNotFound) {
			return taskbus.Task{}, errs.New(errs.NotFound, taskbus.ErrNotFound)
		}
		return taskbus.Task{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: taskID[%s]: %s", taskID, err)
	}

	if tsk.OwnerID != usr.OwnerID {
		return taskbus.Task{}, errs.New(errs.NotFound, taskbus.ErrNotFound)
	}

	return tsk, nil
}
