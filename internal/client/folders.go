package client

import (
	"context"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// FoldersClient implements tdapi.FoldersClient.
type FoldersClient struct {
	exec *executor
}

// newFoldersClient creates a new folders client.
func newFoldersClient(exec *executor) *FoldersClient {
	return &FoldersClient{exec: exec}
}

// List implements tdapi.FoldersClient.List.
func (c *FoldersClient) List(ctx context.Context, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	return c.exec.callList(ctx, constants.MethodGetFolders, nil, opts)
}

// Add implements tdapi.FoldersClient.Add and returns the new folder ID.
func (c *FoldersClient) Add(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	return c.exec.callText(ctx, constants.MethodAddFolder, params, opts)
}

// Edit implements tdapi.FoldersClient.Edit.
func (c *FoldersClient) Edit(ctx context.Context, id string, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, params)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodEditFolder, request, opts)
}

// Delete implements tdapi.FoldersClient.Delete.
func (c *FoldersClient) Delete(ctx context.Context, id string, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, nil)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodDeleteFolder, request, opts)
}
