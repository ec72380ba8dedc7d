package client

import (
	"context"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// TasksClient implements tdapi.TasksClient.
type TasksClient struct {
	exec *executor
}

// newTasksClient creates a new tasks client.
func newTasksClient(exec *executor) *TasksClient {
	return &TasksClient{exec: exec}
}

// List implements tdapi.TasksClient.List. Params are passed through as
// search filters, e.g. "folder", "modafter" or "notcomp".
func (c *TasksClient) List(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	return c.exec.callList(ctx, constants.MethodGetTasks, params, opts)
}

// ListDeleted implements tdapi.TasksClient.ListDeleted.
func (c *TasksClient) ListDeleted(ctx context.Context, after string, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	params, err := afterParams(after)
	if err != nil {
		return nil, err
	}

	return c.exec.callList(ctx, constants.MethodGetDeleted, params, opts)
}

// Add implements tdapi.TasksClient.Add and returns the new task ID.
func (c *TasksClient) Add(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	return c.exec.callText(ctx, constants.MethodAddTask, params, opts)
}

// Edit implements tdapi.TasksClient.Edit.
func (c *TasksClient) Edit(ctx context.Context, id string, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, params)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodEditTask, request, opts)
}

// Delete implements tdapi.TasksClient.Delete.
func (c *TasksClient) Delete(ctx context.Context, id string, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, nil)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodDeleteTask, request, opts)
}
