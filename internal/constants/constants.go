package constants

import "time"

// Service endpoint and identity.
const (
	// DefaultAPIEndpoint is the service URL all requests are sent to.
	DefaultAPIEndpoint = "http://www.toodledo.com/api.php"

	// DefaultAppID identifies this client when requesting session tokens.
	DefaultAppID = "tdapi"

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "tdapi-client-go"
)

// API method names.
const (
	MethodGetUserID       = "getUserid"
	MethodGetToken        = "getToken"
	MethodCreateAccount   = "createAccount"
	MethodGetServerInfo   = "getServerInfo"
	MethodGetAccountInfo  = "getAccountInfo"
	MethodGetFolders      = "getFolders"
	MethodAddFolder       = "addFolder"
	MethodEditFolder      = "editFolder"
	MethodDeleteFolder    = "deleteFolder"
	MethodGetContexts     = "getContexts"
	MethodAddContext      = "addContext"
	MethodDeleteContext   = "deleteContext"
	MethodGetGoals        = "getGoals"
	MethodAddGoal         = "addGoal"
	MethodDeleteGoal      = "deleteGoal"
	MethodGetTasks        = "getTasks"
	MethodGetDeleted      = "getDeleted"
	MethodAddTask         = "addTask"
	MethodEditTask        = "editTask"
	MethodDeleteTask      = "deleteTask"
	MethodGetNotes        = "getNotes"
	MethodGetDeletedNotes = "getDeletedNotes"
	MethodAddNote         = "addNote"
	MethodEditNote        = "editNote"
	MethodDeleteNote      = "deleteNote"
)

// Request parameter names.
const (
	ParamMethod   = "method"
	ParamKey      = "key"
	ParamEmail    = "email"
	ParamPassword = "pass_"
	ParamUserID   = "userid"
	ParamAppID    = "appid"
	ParamID       = "id_"
	ParamAfter    = "after"
)

// Wire protocol markers.
const (
	// ErrorTag is the root element name the server uses to report failures.
	ErrorTag = "error"

	// InvalidUserIDMarker is returned by getUserid for a bad email/password.
	InvalidUserIDMarker = "1"

	// InvalidCredentialsMessage is the message reported for a bad login.
	InvalidCredentialsMessage = "invalid username/password"

	// TitleField receives a record element's own text.
	TitleField = "title"
)

// Session token lifetime.
const (
	// TokenValidity is how long a freshly issued session token is trusted.
	TokenValidity = 3*time.Hour + 30*time.Minute

	// ServerUTCOffset is the fixed offset of timestamps emitted by the server, negated.
	ServerUTCOffset = 6 * time.Hour

	// ServerDateLayout is the fixed-width prefix layout of server dates.
	ServerDateLayout = "Mon, 02 Jan 2006 15:04:05"

	// ServerDatePrefixLen is the number of characters of a server date that are parsed.
	ServerDatePrefixLen = 25
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and token cache files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// MaxErrorBodyBytes caps how much of a failed response body is kept.
	MaxErrorBodyBytes = 4096
)

// Token cache defaults.
const (
	// DefaultTokenCacheFile is the cache file name under the config directory.
	DefaultTokenCacheFile = "tokens.yml"

	// DefaultTokenCacheSize bounds the in-memory token cache.
	DefaultTokenCacheSize = 64

	// DefaultNATSBucket is the key-value bucket used for the NATS token cache.
	DefaultNATSBucket = "tdapi_tokens"
)

// Logging defaults.
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Format constants.
const (
	// FormatJSON is the JSON output format.
	FormatJSON = "json"

	// FormatYAML is the YAML output format.
	FormatYAML = "yaml"

	// FormatTable is the default table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is shown for missing values.
	NotAvailable = "-"

	// MaskedSecret replaces secrets in displayed output.
	MaskedSecret = "***"

	// AssignmentSeparator splits --set key=value arguments.
	AssignmentSeparator = "="
)
