package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/internal/logging"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdclient"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// keyPassword is only read from the environment (TDO_PASSWORD), never from
// the config file.
const keyPassword = "password"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

func validOutputFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func validCacheType(cacheType string) bool {
	switch tdapi.TokenCacheType(cacheType) {
	case tdapi.TokenCacheFile, tdapi.TokenCacheNATS, tdapi.TokenCacheNone:
		return true
	default:
		return false
	}
}

// resolvePassword takes the password from TDO_PASSWORD or prompts for it
// when stdin is a terminal.
func resolvePassword() (string, error) {
	if password := viper.GetString(keyPassword); password != "" {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", constants.ErrNoPasswordAvailable
	}

	_, _ = fmt.Fprint(os.Stderr, "Password: ")

	bytePassword, err := readPassword(fd)

	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(bytePassword), nil
}

// tokenCacheConfig maps the CLI settings onto a token cache backend. The
// default is a file cache next to the config file.
func tokenCacheConfig(config *Config) (*tdapi.TokenCacheConfig, error) {
	cacheType := tdapi.TokenCacheType(config.TokenCache)
	if cacheType == "" {
		cacheType = tdapi.TokenCacheFile
	}

	switch cacheType {
	case tdapi.TokenCacheNone:
		return nil, nil //nolint:nilnil // no cache configured
	case tdapi.TokenCacheNATS:
		return &tdapi.TokenCacheConfig{
			Type: cacheType,
			NATS: &tdapi.NATSTokenCacheConfig{
				URL:    config.NATSURL,
				Bucket: config.NATSBucket,
			},
		}, nil
	case tdapi.TokenCacheFile:
		path := config.TokenCachePath
		if path == "" {
			configDir, err := ConfigDir()
			if err != nil {
				return nil, err
			}

			path = filepath.Join(configDir, constants.DefaultTokenCacheFile)
		}

		return &tdapi.TokenCacheConfig{Type: cacheType, Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownCacheType, cacheType)
	}
}

// newLogger builds the CLI logger. Verbose mode logs requests at debug level.
func newLogger(config *Config) (*logging.Logger, func() error, error) {
	logConfig := logging.DefaultConfig()
	logConfig.Level = "warn"
	logConfig.FilePath = config.LogFile

	if config.LogLevel != "" {
		logConfig.Level = config.LogLevel
	}

	if viper.GetBool("verbose") {
		logConfig.Level = "debug"
	}

	return logging.New(logConfig)
}

// buildClientConfig assembles the library configuration. A stored credential
// wins over email and password.
func buildClientConfig(config *Config, logger tdapi.Logger) (*tdapi.Config, error) {
	clientConfig := &tdapi.Config{
		APIEndpoint:       config.Endpoint,
		AppID:             config.AppID,
		RequestsPerSecond: config.RequestsPerSecond,
		Logger:            logger,
		Debug:             viper.GetBool("verbose"),
	}

	if config.Credential != "" {
		clientConfig.Credential = config.Credential

		return clientConfig, nil
	}

	if config.Email == "" {
		return nil, constants.ErrNotAuthenticated
	}

	password, err := resolvePassword()
	if err != nil {
		return nil, err
	}

	cache, err := tokenCacheConfig(config)
	if err != nil {
		return nil, err
	}

	clientConfig.Email = config.Email
	clientConfig.Password = password
	clientConfig.TokenCache = cache

	return clientConfig, nil
}

// createClient creates an authenticated client from the CLI configuration.
// The returned cleanup closes the client and flushes the logger.
func createClient(ctx context.Context) (tdapi.Client, func(), error) {
	config := loadConfig()

	logger, closeLogger, err := newLogger(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	cleanup := func() { _ = closeLogger() }

	clientConfig, err := buildClientConfig(config, logger)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	client, err := tdclient.New(ctx, clientConfig)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, func() {
		_ = client.Close()

		cleanup()
	}, nil
}

// parseAssignments turns KEY=VALUE arguments into request parameters. The
// value may itself contain "=".
func parseAssignments(assignments []string) (tdapi.Params, error) {
	if len(assignments) == 0 {
		return nil, constants.ErrEmptyAssignment
	}

	params := tdapi.NewParams()

	for _, assignment := range assignments {
		key, value, found := strings.Cut(assignment, constants.AssignmentSeparator)

		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidAssignment, assignment)
		}

		params[key] = value
	}

	return params, nil
}
