// Package auth implements the session credential protocol: user ID
// resolution, session token issue, key derivation and token caching.
package auth

import (
	"context"
	"crypto/md5" //nolint:gosec // the service mandates MD5 for key derivation
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/internal/records"
	"github.com/fivetwenty-io/tdapi-client/internal/xmltree"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// Static errors for err113 compliance.
var (
	ErrEmptyUserID   = errors.New("server returned an empty user ID")
	ErrEmptyToken    = errors.New("server returned an empty session token")
	ErrEmailRequired = errors.New("email is required")
)

// Caller issues a single API call and returns the parsed root element.
// *http.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, params map[string]string) (*xmltree.Node, error)
}

// HashPassword returns the lowercase hex MD5 digest of the password.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password)) //nolint:gosec // wire compatibility

	return hex.EncodeToString(sum[:])
}

// DeriveCredential computes the session key sent as the "key" parameter:
// md5hex(md5hex(password) + token + userID).
//
// MD5 is weak by modern standards. It is kept because the service verifies
// exactly this digest; changing it breaks every login.
func DeriveCredential(userID, token, password string) string {
	sum := md5.Sum([]byte(HashPassword(password) + token + userID)) //nolint:gosec // wire compatibility

	return hex.EncodeToString(sum[:])
}

// ResolveUserID looks up the user ID of an account. A rejected login is
// reported as a *tdapi.ServerError wrapping tdapi.ErrInvalidCredentials.
func ResolveUserID(ctx context.Context, caller Caller, email, password string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	root, err := caller.Call(ctx, map[string]string{
		constants.ParamMethod:   constants.MethodGetUserID,
		constants.ParamEmail:    email,
		constants.ParamPassword: password,
	})
	if err != nil {
		serverErr := &tdapi.ServerError{}
		if errors.As(err, &serverErr) && isInvalidCredentialsMessage(serverErr.Message) {
			return "", &tdapi.ServerError{Message: serverErr.Message, Err: tdapi.ErrInvalidCredentials}
		}

		return "", fmt.Errorf("resolving user ID: %w", err)
	}

	userID := strings.TrimSpace(root.Text)

	switch userID {
	case constants.InvalidUserIDMarker:
		return "", &tdapi.ServerError{Message: constants.InvalidCredentialsMessage, Err: tdapi.ErrInvalidCredentials}
	case "":
		return "", ErrEmptyUserID
	}

	return userID, nil
}

// RequestToken asks the service for a new session token.
func RequestToken(ctx context.Context, caller Caller, userID, appID string) (string, error) {
	if userID == "" {
		return "", tdapi.ErrUserIDRequired
	}

	root, err := caller.Call(ctx, map[string]string{
		constants.ParamMethod: constants.MethodGetToken,
		constants.ParamUserID: userID,
		constants.ParamAppID:  appID,
	})
	if err != nil {
		return "", fmt.Errorf("requesting session token: %w", err)
	}

	token := strings.TrimSpace(root.Text)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// ValidateCredential exercises a credential with a server info call. It
// returns the remaining token lifetime reported by the server, or zero when
// the server does not report one.
func ValidateCredential(ctx context.Context, caller Caller, credential string) (time.Duration, error) {
	root, err := caller.Call(ctx, map[string]string{
		constants.ParamMethod: constants.MethodGetServerInfo,
		constants.ParamKey:    credential,
	})
	if err != nil {
		return 0, fmt.Errorf("validating credential: %w", err)
	}

	record, err := records.Materialize(root)
	if err != nil {
		return 0, fmt.Errorf("validating credential: %w", err)
	}

	minutes, ok := record.Float("tokenexpires")
	if !ok || minutes <= 0 {
		return 0, nil
	}

	return time.Duration(minutes * float64(time.Minute)), nil
}

func isInvalidCredentialsMessage(message string) bool {
	return strings.EqualFold(strings.TrimSpace(message), constants.InvalidCredentialsMessage)
}
