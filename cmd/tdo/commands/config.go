package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys, shared by viper, the config file and TDO_* variables.
const (
	keyEndpoint          = "endpoint"
	keyEmail             = "email"
	keyCredential        = "credential"
	keyAppID             = "app_id"
	keyOutput            = "output"
	keyTokenCache        = "token_cache"
	keyTokenCachePath    = "token_cache_path"
	keyNATSURL           = "nats_url"
	keyNATSBucket        = "nats_bucket"
	keyLogFile           = "log_file"
	keyLogLevel          = "log_level"
	keyRequestsPerSecond = "requests_per_second"
)

// Config represents the CLI configuration file.
type Config struct {
	Endpoint          string  `json:"endpoint,omitempty"            yaml:"endpoint,omitempty"`
	Email             string  `json:"email,omitempty"               yaml:"email,omitempty"`
	Credential        string  `json:"credential,omitempty"          yaml:"credential,omitempty"`
	AppID             string  `json:"app_id,omitempty"              yaml:"app_id,omitempty"`
	Output            string  `json:"output,omitempty"              yaml:"output,omitempty"`
	TokenCache        string  `json:"token_cache,omitempty"         yaml:"token_cache,omitempty"`
	TokenCachePath    string  `json:"token_cache_path,omitempty"    yaml:"token_cache_path,omitempty"`
	NATSURL           string  `json:"nats_url,omitempty"            yaml:"nats_url,omitempty"`
	NATSBucket        string  `json:"nats_bucket,omitempty"         yaml:"nats_bucket,omitempty"`
	LogFile           string  `json:"log_file,omitempty"            yaml:"log_file,omitempty"`
	LogLevel          string  `json:"log_level,omitempty"           yaml:"log_level,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the tdo configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config

			if masked.Credential != "" {
				masked.Credential = constants.MaskedSecret
			}

			return writeConfig(cmd.OutOrStdout(), viper.GetString(keyOutput), &masked)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Keys: endpoint, email, credential, app_id, output, token_cache, token_cache_path,
nats_url, nats_bucket, log_file, log_level, requests_per_second`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// ConfigDir returns the configuration directory, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrConfigDirUnavailable, err)
	}

	configDir := filepath.Join(home, ".tdo")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

func loadConfig() *Config {
	return &Config{
		Endpoint:          viper.GetString(keyEndpoint),
		Email:             viper.GetString(keyEmail),
		Credential:        viper.GetString(keyCredential),
		AppID:             viper.GetString(keyAppID),
		Output:            viper.GetString(keyOutput),
		TokenCache:        viper.GetString(keyTokenCache),
		TokenCachePath:    viper.GetString(keyTokenCachePath),
		NATSURL:           viper.GetString(keyNATSURL),
		NATSBucket:        viper.GetString(keyNATSBucket),
		LogFile:           viper.GetString(keyLogFile),
		LogLevel:          viper.GetString(keyLogLevel),
		RequestsPerSecond: viper.GetFloat64(keyRequestsPerSecond),
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configDir, err := ConfigDir()
		if err != nil {
			return err
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	return writeConfigFile(configFile, config)
}

func writeConfigFile(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setConfigValue assigns value to key; an empty value clears the setting.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyEndpoint:
		config.Endpoint = value
	case keyEmail:
		config.Email = value
	case keyCredential:
		config.Credential = value
	case keyAppID:
		config.AppID = value
	case keyOutput:
		if value != "" && !validOutputFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, value)
		}

		config.Output = value
	case keyTokenCache:
		if value != "" && !validCacheType(value) {
			return fmt.Errorf("%w: %s", constants.ErrUnknownCacheType, value)
		}

		config.TokenCache = value
	case keyTokenCachePath:
		config.TokenCachePath = value
	case keyNATSURL:
		config.NATSURL = value
	case keyNATSBucket:
		config.NATSBucket = value
	case keyLogFile:
		config.LogFile = value
	case keyLogLevel:
		config.LogLevel = value
	case keyRequestsPerSecond:
		if value == "" {
			config.RequestsPerSecond = 0

			return nil
		}

		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid requests_per_second %q: %w", value, err)
		}

		config.RequestsPerSecond = rps
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func writeConfig(w io.Writer, format string, config *Config) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(config)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		return encoder.Encode(config)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		_ = table.Append("Endpoint", formatConfigValue(config.Endpoint))
		_ = table.Append("Email", formatConfigValue(config.Email))
		_ = table.Append("Credential", formatConfigValue(config.Credential))
		_ = table.Append("App ID", formatConfigValue(config.AppID))
		_ = table.Append("Output", formatConfigValue(config.Output))
		_ = table.Append("Token Cache", formatConfigValue(config.TokenCache))
		_ = table.Append("Token Cache Path", formatConfigValue(config.TokenCachePath))
		_ = table.Append("NATS URL", formatConfigValue(config.NATSURL))
		_ = table.Append("Log File", formatConfigValue(config.LogFile))
		_ = table.Append("Log Level", formatConfigValue(config.LogLevel))

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
