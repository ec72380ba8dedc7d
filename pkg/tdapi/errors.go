package tdapi

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrMissingCredential  = errors.New("credential required")
	ErrInvalidCredentials = errors.New("invalid username/password")
	ErrUnknownRecordKind  = errors.New("unknown record kind")
	ErrUnknownField       = errors.New("unknown field")
	ErrMalformedValue     = errors.New("malformed field value")
	ErrTokenNotCached     = errors.New("token not cached")
	ErrConfigRequired     = errors.New("config is required")
	ErrAPIEndpointInvalid = errors.New("invalid API endpoint")
	ErrUserIDRequired     = errors.New("user ID is required")
)

// ServerError is returned when the service responds with its error element.
type ServerError struct {
	// Message is the text of the error element.
	Message string
	// Err optionally classifies the failure, e.g. ErrInvalidCredentials.
	Err error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return "server returned error: " + e.Message
}

// Unwrap returns the classifying error, if any.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// SchemaError reports a record or value the client does not know how to decode.
// It signals client/server version skew and is not worth retrying.
type SchemaError struct {
	Kind  RecordKind
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("record %q: %v", e.Kind, e.Err)
	case e.Value == "":
		return fmt.Sprintf("record %q field %q: %v", e.Kind, e.Field, e.Err)
	default:
		return fmt.Sprintf("record %q field %q value %q: %v", e.Kind, e.Field, e.Value, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsServerError checks if the error was reported by the service.
func IsServerError(err error) bool {
	serverErr := &ServerError{}

	return errors.As(err, &serverErr)
}

// IsInvalidCredentials checks if the error is a rejected email/password.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsSchemaError checks if the error is a decoding or lookup failure.
func IsSchemaError(err error) bool {
	schemaErr := &SchemaError{}

	return errors.As(err, &schemaErr)
}
