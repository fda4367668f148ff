package constants

const (
	// Config keys
	SettingStorageDriver   = "storage.driver"
	SettingStoragePath     = "storage.path"
	SettingStorageDSN      = "storage.dsn"
	SettingLLMModel        = "llm.model"
	SettingLLMBaseURL      = "llm.baseURL"
	SettingLLMMaxTokens    = "llm.maxTokens"
	SettingLLMTimeout      = "llm.timeout"
	SettingLLMMaxRetries   = "llm.maxRetries"
	SettingLLMTokenizer    = "llm.tokenizer"
	SettingVoiceDistillURL = "voice.distillURL"
	SettingVoiceContinuous = "voice.continuous"
	SettingVoiceStatusTTL  = "voice.statusTTL"
	SettingJournalTimezone = "journal.timezone"
	SettingJournalLayout   = "journal.dateLayout"
	SettingServerHost      = "server.host"
	SettingServerPort      = "server.port"
	SettingServerMaxConns  = "server.maxConns"
	SettingServerCacheMB   = "server.cacheSizeMB"
	SettingServerCacheTTL  = "server.cacheTTL"
	SettingServerMetrics   = "server.metrics"
	SettingLogDebug        = "log.debug"
	SettingLogDir          = "log.dir"

	// Storage drivers
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverJSON     = "json"
	DriverMemory   = "memory"

	// Default Settings Values
	DefaultStorageDriver   = DriverSQLite
	DefaultTimezone        = "Local" // Use system local timezone by default
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 8787
	DefaultServerMaxConns  = 64
	DefaultServerCacheMB   = 8
	DefaultServerCacheTTL  = 600 // seconds
	DefaultVoiceContinuous = true
)

const (
	SettingVoiceCommand  = "voice.command"
	SettingServerMaxBody = "server.maxBodyBytes"
	SettingServerReadTO  = "server.readTimeout"
	DefaultServerMaxBody = 1 << 20
	DefaultServerReadTO  = 15 // seconds
	DefaultLLMMaxRetries = 2
	DefaultTokenizer     = "heuristic"
	ConfigEnvPrefix      = "ARCHITECT"
	EnvAPIKey            = "ARCHITECT_API_KEY"
	EnvDBConnection      = "ARCHITECT_DB_CONNECTION"
)
