package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resource describes one record collection of the service. Nil operations
// are not offered by the service and get no subcommand.
type resource struct {
	name     string
	singular string

	list        func(ctx context.Context, client tdapi.Client, filters tdapi.Params) ([]*tdapi.Record, error)
	listDeleted func(ctx context.Context, client tdapi.Client, after string) ([]*tdapi.Record, error)
	add         func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error)
	edit        func(ctx context.Context, client tdapi.Client, id string, params tdapi.Params) (string, error)
	remove      func(ctx context.Context, client tdapi.Client, id string) (string, error)

	// filterable resources accept --filter KEY=VALUE on list.
	filterable bool
}

// NewTasksCommand creates the tasks command group.
func NewTasksCommand() *cobra.Command {
	return newResourceCommand(resource{
		name:     "tasks",
		singular: "task",
		list: func(ctx context.Context, client tdapi.Client, filters tdapi.Params) ([]*tdapi.Record, error) {
			return client.Tasks().List(ctx, filters)
		},
		listDeleted: func(ctx context.Context, client tdapi.Client, after string) ([]*tdapi.Record, error) {
			return client.Tasks().ListDeleted(ctx, after)
		},
		add: func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error) {
			return client.Tasks().Add(ctx, params)
		},
		edit: func(ctx context.Context, client tdapi.Client, id string, params tdapi.Params) (string, error) {
			return client.Tasks().Edit(ctx, id, params)
		},
		remove: func(ctx context.Context, client tdapi.Client, id string) (string, error) {
			return client.Tasks().Delete(ctx, id)
		},
		filterable: true,
	})
}

// NewFoldersCommand creates the folders command group.
func NewFoldersCommand() *cobra.Command {
	return newResourceCommand(resource{
		name:     "folders",
		singular: "folder",
		list: func(ctx context.Context, client tdapi.Client, _ tdapi.Params) ([]*tdapi.Record, error) {
			return client.Folders().List(ctx)
		},
		add: func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error) {
			return client.Folders().Add(ctx, params)
		},
		edit: func(ctx context.Context, client tdapi.Client, id string, params tdapi.Params) (string, error) {
			return client.Folders().Edit(ctx, id, params)
		},
		remove: func(ctx context.Context, client tdapi.Client, id string) (string, error) {
			return client.Folders().Delete(ctx, id)
		},
	})
}

// NewContextsCommand creates the contexts command group.
func NewContextsCommand() *cobra.Command {
	return newResourceCommand(resource{
		name:     "contexts",
		singular: "context",
		list: func(ctx context.Context, client tdapi.Client, _ tdapi.Params) ([]*tdapi.Record, error) {
			return client.Contexts().List(ctx)
		},
		add: func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error) {
			return client.Contexts().Add(ctx, params)
		},
		remove: func(ctx context.Context, client tdapi.Client, id string) (string, error) {
			return client.Contexts().Delete(ctx, id)
		},
	})
}

// NewGoalsCommand creates the goals command group.
func NewGoalsCommand() *cobra.Command {
	return newResourceCommand(resource{
		name:     "goals",
		singular: "goal",
		list: func(ctx context.Context, client tdapi.Client, _ tdapi.Params) ([]*tdapi.Record, error) {
			return client.Goals().List(ctx)
		},
		add: func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error) {
			return client.Goals().Add(ctx, params)
		},
		remove: func(ctx context.Context, client tdapi.Client, id string) (string, error) {
			return client.Goals().Delete(ctx, id)
		},
	})
}

// NewNotesCommand creates the notes command group.
func NewNotesCommand() *cobra.Command {
	return newResourceCommand(resource{
		name:     "notes",
		singular: "note",
		list: func(ctx context.Context, client tdapi.Client, _ tdapi.Params) ([]*tdapi.Record, error) {
			return client.Notes().List(ctx)
		},
		listDeleted: func(ctx context.Context, client tdapi.Client, after string) ([]*tdapi.Record, error) {
			return client.Notes().ListDeleted(ctx, after)
		},
		add: func(ctx context.Context, client tdapi.Client, params tdapi.Params) (string, error) {
			return client.Notes().Add(ctx, params)
		},
		edit: func(ctx context.Context, client tdapi.Client, id string, params tdapi.Params) (string, error) {
			return client.Notes().Edit(ctx, id, params)
		},
		remove: func(ctx context.Context, client tdapi.Client, id string) (string, error) {
			return client.Notes().Delete(ctx, id)
		},
	})
}

func newResourceCommand(res resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   res.name,
		Short: "Manage " + res.name,
		Long:  fmt.Sprintf("List, add and delete %s", res.name),
	}

	cmd.AddCommand(newResourceListCommand(res))
	cmd.AddCommand(newResourceAddCommand(res))

	if res.edit != nil {
		cmd.AddCommand(newResourceEditCommand(res))
	}

	cmd.AddCommand(newResourceDeleteCommand(res))

	if res.listDeleted != nil {
		cmd.AddCommand(newResourceDeletedCommand(res))
	}

	return cmd
}

func newResourceListCommand(res resource) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + res.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var params tdapi.Params

			if len(filters) > 0 {
				parsed, err := parseAssignments(filters)
				if err != nil {
					return err
				}

				params = parsed
			}

			return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
				records, err := res.list(ctx, client, params)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", res.name, err)
				}

				if len(records) == 0 && printer.format == constants.FormatTable && printer.query == "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No %s found\n", res.name)

					return nil
				}

				return printer.Records(records)
			})
		},
	}

	if res.filterable {
		cmd.Flags().StringArrayVar(&filters, "filter", nil, "request filter as KEY=VALUE (repeatable)")
	}

	return cmd
}

func newResourceAddCommand(res resource) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a " + res.singular,
		Long: fmt.Sprintf(`Add a %s. Fields are given as --set KEY=VALUE.

Example:
  tdo %s add --set title="Buy milk"`, res.singular, res.name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseAssignments(assignments)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
				id, err := res.add(ctx, client, params)
				if err != nil {
					return fmt.Errorf("failed to add %s: %w", res.singular, err)
				}

				return printer.Properties(map[string]string{"id": id})
			})
		},
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field as KEY=VALUE (repeatable)")

	return cmd
}

func newResourceEditCommand(res resource) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a " + res.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return constants.ErrIDRequired
			}

			params, err := parseAssignments(assignments)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
				status, err := res.edit(ctx, client, args[0], params)
				if err != nil {
					return fmt.Errorf("failed to edit %s %s: %w", res.singular, args[0], err)
				}

				return printer.Properties(map[string]string{"id": args[0], "success": status})
			})
		},
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field as KEY=VALUE (repeatable)")

	return cmd
}

func newResourceDeleteCommand(res resource) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + res.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return constants.ErrIDRequired
			}

			return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
				status, err := res.remove(ctx, client, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete %s %s: %w", res.singular, args[0], err)
				}

				return printer.Properties(map[string]string{"id": args[0], "success": status})
			})
		},
	}
}

func newResourceDeletedCommand(res resource) *cobra.Command {
	var after string

	cmd := &cobra.Command{
		Use:   "deleted",
		Short: fmt.Sprintf("List %s deleted after a date", res.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if after == "" {
				return constants.ErrAfterRequired
			}

			return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
				records, err := res.listDeleted(ctx, client, after)
				if err != nil {
					return fmt.Errorf("failed to list deleted %s: %w", res.name, err)
				}

				return printer.Records(records)
			})
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "only list records deleted after this date (YYYY-MM-DD HH:MM:SS)")

	return cmd
}

// withClient creates the printer and an authenticated client, then runs fn.
func withClient(cmd *cobra.Command, fn func(context.Context, tdapi.Client, *Printer) error) error {
	printer, err := NewPrinter(cmd.OutOrStdout(), viper.GetString(keyOutput), viper.GetString("query"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, cleanup, err := createClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, client, printer)
}
