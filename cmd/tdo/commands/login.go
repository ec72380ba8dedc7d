package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var saveCredential bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the task service",
		Long: `Log in with email and password and cache the session token.

The password is read from TDO_PASSWORD or prompted for. With
--save-credential the derived credential is stored in the config file so
later commands need no password until the session expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Email == "" {
				return constants.ErrNoEmailConfigured
			}

			// Always run the login protocol, even with a stored credential.
			config.Credential = ""

			logger, closeLogger, err := newLogger(config)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			defer func() { _ = closeLogger() }()

			clientConfig, err := buildClientConfig(config, logger)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := tdclient.New(ctx, clientConfig)
			if err != nil {
				if tdapi.IsInvalidCredentials(err) {
					return fmt.Errorf("login failed: %w", err)
				}

				return fmt.Errorf("failed to create client: %w", err)
			}

			defer func() { _ = client.Close() }()

			credential, err := client.Authenticate(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if saveCredential {
				config.Credential = credential
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			printer, err := NewPrinter(cmd.OutOrStdout(), viper.GetString(keyOutput), viper.GetString("query"))
			if err != nil {
				return err
			}

			result := map[string]string{
				"email":   config.Email,
				"user_id": client.UserID(),
			}
			if saveCredential {
				result["credential"] = constants.MaskedSecret
			}

			return printer.Properties(result)
		},
	}

	cmd.Flags().BoolVar(&saveCredential, "save-credential", false, "store the derived credential in the config file")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out from the task service",
		Long:  "Drop the cached session token and any credential stored in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			ctx := context.Background()

			if config.Email != "" {
				err := forgetSession(ctx, config)
				if err != nil {
					return err
				}
			}

			if config.Credential == "" && config.Email == "" {
				return constants.ErrCredentialNotSaved
			}

			config.Credential = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

// forgetSession removes the account's token from the cache without logging
// in, so no password is needed.
func forgetSession(ctx context.Context, config *Config) error {
	cache, err := tokenCacheConfig(config)
	if err != nil {
		return err
	}

	if cache == nil {
		return nil
	}

	client, err := tdclient.New(ctx, &tdapi.Config{
		APIEndpoint:     config.Endpoint,
		Email:           config.Email,
		TokenCache:      cache,
		SkipInitialAuth: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open token cache: %w", err)
	}

	defer func() { _ = client.Close() }()

	err = tdclient.Logout(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to drop cached session: %w", err)
	}

	return nil
}
