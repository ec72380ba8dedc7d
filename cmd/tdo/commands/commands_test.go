package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/tdapi-client/cmd/tdo/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func TestResourceCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cmd        *cobra.Command
		editable   bool
		hasDeleted bool
		filterable bool
	}{
		{name: "tasks", cmd: commands.NewTasksCommand(), editable: true, hasDeleted: true, filterable: true},
		{name: "folders", cmd: commands.NewFoldersCommand(), editable: true},
		{name: "contexts", cmd: commands.NewContextsCommand()},
		{name: "goals", cmd: commands.NewGoalsCommand()},
		{name: "notes", cmd: commands.NewNotesCommand(), editable: true, hasDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.name, tt.cmd.Use)

			list := findSubcommand(tt.cmd, "list")
			require.NotNil(t, list)
			assert.Equal(t, tt.filterable, list.Flags().Lookup("filter") != nil)

			add := findSubcommand(tt.cmd, "add")
			require.NotNil(t, add)
			assert.NotNil(t, add.Flags().Lookup("set"))

			assert.NotNil(t, findSubcommand(tt.cmd, "delete"))
			assert.Equal(t, tt.editable, findSubcommand(tt.cmd, "edit") != nil)

			deleted := findSubcommand(tt.cmd, "deleted")
			assert.Equal(t, tt.hasDeleted, deleted != nil)

			if deleted != nil {
				assert.NotNil(t, deleted.Flags().Lookup("after"))
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	for _, name := range []string{"show", "set", "unset"} {
		assert.NotNil(t, findSubcommand(cmd, name), name)
	}

	set := findSubcommand(cmd, "set")
	require.Error(t, set.Args(set, []string{"email"}))
	require.NoError(t, set.Args(set, []string{"email", "test@example.com"}))
}

func TestLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("save-credential"))

	assert.Equal(t, "logout", commands.NewLogoutCommand().Use)
}

func TestInfoCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "info", commands.NewInfoCommand().Use)
	assert.Equal(t, "account", commands.NewAccountCommand().Use)
	assert.Equal(t, "version", commands.NewVersionCommand("1.0.0", "abc", "today").Use)
}
