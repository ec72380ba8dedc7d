package client

import (
	"context"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// ContextsClient implements tdapi.ContextsClient.
type ContextsClient struct {
	exec *executor
}

// newContextsClient creates a new contexts client.
func newContextsClient(exec *executor) *ContextsClient {
	return &ContextsClient{exec: exec}
}

// List implements tdapi.ContextsClient.List.
func (c *ContextsClient) List(ctx context.Context, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	return c.exec.callList(ctx, constants.MethodGetContexts, nil, opts)
}

// Add implements tdapi.ContextsClient.Add.
func (c *ContextsClient) Add(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	return c.exec.callText(ctx, constants.MethodAddContext, params, opts)
}

// Delete implements tdapi.ContextsClient.Delete.
func (c *ContextsClient) Delete(ctx context.Context, id string, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, nil)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodDeleteContext, request, opts)
}
