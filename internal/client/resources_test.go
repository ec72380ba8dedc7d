package client_test

import (
	"context"
	"testing"

	. "github.com/fivetwenty-io/tdapi-client/internal/client"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldersClient(t *testing.T) {
	t.Parallel()

	client, service := newTasksTestClient(t)
	service.respond("getFolders", `<folders>
		<folder id="5409195" private="0" archived="0" order="1">Shopping</folder>
		<folder id="5409196" private="1" archived="1" order="2">Old</folder>
	</folders>`)
	service.respond("addFolder", `<added>5409197</added>`)
	service.respond("editFolder", `<success>1</success>`)
	service.respond("deleteFolder", `<success>1</success>`)

	folders, err := client.Folders().List(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Shopping", folders[0].Title())

	archived, ok := folders[1].Bool("archived")
	require.True(t, ok)
	assert.True(t, archived)

	id, err := client.Folders().Add(context.Background(), tdapi.NewParams().With("title", "Work"))
	require.NoError(t, err)
	assert.Equal(t, "5409197", id)

	_, err = client.Folders().Edit(context.Background(), id, tdapi.NewParams().With("archived", "1"))
	require.NoError(t, err)

	_, err = client.Folders().Delete(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Work", service.calls("addFolder")[0]["title"])
	assert.Equal(t, id, service.calls("editFolder")[0]["id"])
	assert.Equal(t, id, service.calls("deleteFolder")[0]["id"])

	_, err = client.Folders().Edit(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrRecordIDRequired)
}

func TestContextsClient(t *testing.T) {
	t.Parallel()

	client, service := newTasksTestClient(t)
	service.respond("getContexts", `<contexts>
		<context id="123" def="0">Work</context>
		<context id="124" def="1">Home</context>
	</contexts>`)
	service.respond("addContext", `<added>125</added>`)
	service.respond("deleteContext", `<success>1</success>`)

	contexts, err := client.Contexts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	def, ok := contexts[1].Bool("def")
	require.True(t, ok)
	assert.True(t, def)

	id, err := client.Contexts().Add(context.Background(), tdapi.NewParams().With("title", "Errands"))
	require.NoError(t, err)
	assert.Equal(t, "125", id)

	status, err := client.Contexts().Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "1", status)
}

func TestGoalsClient(t *testing.T) {
	t.Parallel()

	client, service := newTasksTestClient(t)
	service.respond("getGoals", `<goals>
		<goal id="123" level="0" contributes="0" archived="0">Get a Raise</goal>
		<goal id="456" level="1" contributes="123" archived="0">Finish project</goal>
	</goals>`)
	service.respond("addGoal", `<added>789</added>`)
	service.respond("deleteGoal", `<success>1</success>`)

	goals, err := client.Goals().List(context.Background())
	require.NoError(t, err)
	require.Len(t, goals, 2)

	contributes, ok := goals[1].Int("contributes")
	require.True(t, ok)
	assert.Equal(t, 123, contributes)

	id, err := client.Goals().Add(context.Background(), tdapi.NewParams().With("title", "Run a marathon").With("level", "2"))
	require.NoError(t, err)
	assert.Equal(t, "789", id)

	_, err = client.Goals().Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "789", service.calls("deleteGoal")[0]["id"])
}

func TestNotesClient(t *testing.T) {
	t.Parallel()

	client, service := newTasksTestClient(t)
	service.respond("getNotes", `<notes>
		<note>
			<id>1234</id>
			<folder>0</folder>
			<added>2009-06-04 10:18:20</added>
			<modified>2009-06-04 10:20:11</modified>
			<title>Recipe</title>
			<text>Flour, eggs, milk</text>
			<private>0</private>
		</note>
	</notes>`)
	service.respond("getDeletedNotes", `<deleted><note><id>99</id><stamp>2009-06-05 08:00:00</stamp></note></deleted>`)
	service.respond("addNote", `<added>1235</added>`)
	service.respond("editNote", `<success>1</success>`)
	service.respond("deleteNote", `<success>1</success>`)

	notes, err := client.Notes().List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Recipe", notes[0].Title())
	assert.Equal(t, "Flour, eggs, milk", notes[0].String("text"))

	deleted, err := client.Notes().ListDeleted(context.Background(), "2009-06-01")
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	id, err := client.Notes().Add(context.Background(), tdapi.NewParams().With("title", "Ideas").With("text", "first line"))
	require.NoError(t, err)
	assert.Equal(t, "1235", id)

	_, err = client.Notes().Edit(context.Background(), id, tdapi.NewParams().With("text", "second line"))
	require.NoError(t, err)

	_, err = client.Notes().Delete(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "first line", service.calls("addNote")[0]["text"])
	assert.Equal(t, "second line", service.calls("editNote")[0]["text"])
	assert.Equal(t, "2009-06-01", service.calls("getDeletedNotes")[0]["after"])
}
