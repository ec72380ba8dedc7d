package client

import (
	"context"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// NotesClient implements tdapi.NotesClient.
type NotesClient struct {
	exec *executor
}

// newNotesClient creates a new notes client.
func newNotesClient(exec *executor) *NotesClient {
	return &NotesClient{exec: exec}
}

// List implements tdapi.NotesClient.List.
func (c *NotesClient) List(ctx context.Context, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	return c.exec.callList(ctx, constants.MethodGetNotes, nil, opts)
}

// ListDeleted implements tdapi.NotesClient.ListDeleted.
func (c *NotesClient) ListDeleted(ctx context.Context, after string, opts ...tdapi.CallOption) ([]*tdapi.Record, error) {
	params, err := afterParams(after)
	if err != nil {
		return nil, err
	}

	return c.exec.callList(ctx, constants.MethodGetDeletedNotes, params, opts)
}

// Add implements tdapi.NotesClient.Add and returns the new note ID.
func (c *NotesClient) Add(ctx context.Context, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	return c.exec.callText(ctx, constants.MethodAddNote, params, opts)
}

// Edit implements tdapi.NotesClient.Edit.
func (c *NotesClient) Edit(ctx context.Context, id string, params tdapi.Params, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, params)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodEditNote, request, opts)
}

// Delete implements tdapi.NotesClient.Delete.
func (c *NotesClient) Delete(ctx context.Context, id string, opts ...tdapi.CallOption) (string, error) {
	request, err := withID(id, nil)
	if err != nil {
		return "", err
	}

	return c.exec.callText(ctx, constants.MethodDeleteNote, request, opts)
}
