package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "suppleflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/suppleflow/suppleflow.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// MonthFormat identifies a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// TimestampFormat is how timestamps are persisted as text. It is fixed width so
	// that lexicographic order matches chronological order for UTC values.
	TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

	// DefaultUnit is used when a supplement is saved without a unit
	DefaultUnit = "mg"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "suppleflow-"
	BackupFileSuffix = ".db"

	// Snapshot (export/import) document version
	SnapshotVersion = 1

	// Insight constants
	InsightTemperature = 0.7
	InsightMaxTokens   = 500
	InsightMaxRetries  = 2
	InsightRetryDelay  = 500 * time.Millisecond
	InsightHTTPTimeout = 60 * time.Second
	InsightMaxLines    = 40
	InsightMaxChars    = 8000
)

// Session States
const (
	StateToday SessionState = iota
	StateSupplements
	StateHistory
	StateInsight
	StateLogIntake
	StateAddSupplement
	StateConfirmDelete
)

// Keyring entries beyond the database connection string
const (
	KeyringOpenAIUser    = "openai-api-key"
	KeyringGeminiUser    = "gemini-api-key"
	KeyringAnthropicUser = "anthropic-api-key"
)
