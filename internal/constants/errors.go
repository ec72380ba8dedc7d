package constants

import "errors"

// Configuration errors.
var (
	ErrNoEmailConfigured    = errors.New("no email configured, use --email or 'tdo config set email <address>'")
	ErrNoPasswordAvailable  = errors.New("no password available, set TDO_PASSWORD or run interactively")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrUnknownOutputFormat  = errors.New("unknown output format")
	ErrUnknownCacheType     = errors.New("unknown token cache type")
	ErrNotAuthenticated     = errors.New("not authenticated, use 'tdo login' first")
	ErrCredentialNotSaved   = errors.New("no saved credential")
	ErrConfigDirUnavailable = errors.New("could not determine configuration directory")
)

// Validation errors.
var (
	ErrInvalidAssignment = errors.New("invalid assignment, expected KEY=VALUE")
	ErrEmptyAssignment   = errors.New("at least one --set KEY=VALUE is required")
	ErrIDRequired        = errors.New("record ID is required")
	ErrAfterRequired     = errors.New("--after is required")
)

// Query errors.
var (
	ErrInvalidQuery = errors.New("invalid query")
)
