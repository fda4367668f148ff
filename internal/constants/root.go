package constants

import "time"

const (
	AppName            = "architect"
	DefaultKeyringUser = "database-connection"
	APIKeyKeyringUser  = "llm-api-key"
	DefaultConfigDir   = "~/.config/architect"
	DefaultDBPath      = "~/.config/architect/architect.db"
	DefaultConfigFile  = "~/.config/architect/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the ISO calendar date format used for exports and CLI flags (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// LocaleDateFormat is the default entry date format (en-US short date, e.g. 6/10/2024)
	LocaleDateFormat = "1/2/2006"

	// Storage keys
	EntriesKey = "architect_entries"
	ProfileKey = "architect_profile"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "architect-"
	BackupFileSuffix = ".db.zst"

	// Mentor constants
	FallbackResponse    = "I'm here with you. What matters most about what you just shared?"
	RecentEntryContext  = 5
	EntryContextChars   = 100
	HomeRecentEntries   = 3
	DefaultMaxTokens    = 1000
	DistillMaxTokens    = 1000
	UnknownAnswer       = "Unknown"
	FirstEntryContext   = "This is their first entry."
	DefaultLLMModel     = "gpt-4o"
	DefaultLLMTimeout   = 60 * time.Second
	DefaultStatusTTL    = 3 * time.Second
	DefaultDistillRoute = "/api/distill"
)
