package client

import (
	"context"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// GoalsClient implements tdapi.GoalsClient.
type GoalsClient struct {
	exec *executor
}

// newGoalsClient creates a new goals client.
func newGoalsClient(exec *executor) *GoalsClient {
	return &GoalsClient{exec: exec}
}

// List implements tdapi.GoalsClient.List.
func (c *GoalsClient) List(ctx context.Context, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	return c.exec.callList(ctx, constants.MethodGetGoals, nil, opts)
}

// Add implements tdapi.GoalsClient.Add.
func (c *GoalsClient) Add(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	return c.exec.callText(ctx, constants.MethodAddGoal, params, opts)
}

// Delete implements tdapi.GoalsClient.Delete.
func (c *GoalsClient) Delete(ctx context.Context, id string, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, nil)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodDeleteGoal, request, opts)
}
