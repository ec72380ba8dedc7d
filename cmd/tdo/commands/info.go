package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display server information",
		Long:  "Display the server time and the remaining lifetime of the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordCommand(cmd, func(ctx context.Context, client tdapi.Client) (*tdapi.Record, error) {
				return client.GetServerInfo(ctx)
			})
		},
	}
}

// NewAccountCommand creates the account command.
func NewAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Display account information",
		Long:  "Display the account settings of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordCommand(cmd, func(ctx context.Context, client tdapi.Client) (*tdapi.Record, error) {
				return client.GetAccountInfo(ctx)
			})
		},
	}
}

func runRecordCommand(cmd *cobra.Command, fetch func(context.Context, tdapi.Client) (*tdapi.Record, error)) error {
	return withClient(cmd, func(ctx context.Context, client tdapi.Client, printer *Printer) error {
		record, err := fetch(ctx, client)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", cmd.Name(), err)
		}

		return printer.Record(record)
	})
}
