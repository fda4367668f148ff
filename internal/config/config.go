// Package config loads architect's YAML configuration with environment
// overrides and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/utils"
)

type Storage struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"required|in:sqlite,postgres,json,memory"`
	// Path is the sqlite database or JSON file.
	Path string `mapstructure:"path" yaml:"path"`
	// DSN is a postgres connection string without credentials.
	DSN string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

type LLM struct {
	Model      string        `mapstructure:"model" yaml:"model" validate:"required"`
	BaseURL    string        `mapstructure:"baseURL" yaml:"baseURL,omitempty"`
	MaxTokens  int           `mapstructure:"maxTokens" yaml:"maxTokens" validate:"required|min:1|max:32000"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"required|min:1"`
	MaxRetries int           `mapstructure:"maxRetries" yaml:"maxRetries" validate:"min:0|max:10"`
	Tokenizer  string        `mapstructure:"tokenizer" yaml:"tokenizer"`
}

type Voice struct {
	// Command is an external speech-to-text program whose stdout is read
	// line by line.
	Command    string        `mapstructure:"command" yaml:"command,omitempty"`
	DistillURL string        `mapstructure:"distillURL" yaml:"distillURL,omitempty"`
	Continuous bool          `mapstructure:"continuous" yaml:"continuous"`
	StatusTTL  time.Duration `mapstructure:"statusTTL" yaml:"statusTTL" validate:"required|min:1"`
}

type Journal struct {
	Timezone   string `mapstructure:"timezone" yaml:"timezone"`
	DateLayout string `mapstructure:"dateLayout" yaml:"dateLayout" validate:"required"`
}

type Server struct {
	Host         string `mapstructure:"host" yaml:"host" validate:"required"`
	Port         int    `mapstructure:"port" yaml:"port" validate:"required|min:1|max:65535"`
	MaxConns     int    `mapstructure:"maxConns" yaml:"maxConns" validate:"required|min:1"`
	CacheSizeMB  int    `mapstructure:"cacheSizeMB" yaml:"cacheSizeMB" validate:"min:0|max:1024"`
	CacheTTL     int    `mapstructure:"cacheTTL" yaml:"cacheTTL" validate:"min:0"`
	MaxBodyBytes int64  `mapstructure:"maxBodyBytes" yaml:"maxBodyBytes" validate:"required|min:1"`
	ReadTimeout  int    `mapstructure:"readTimeout" yaml:"readTimeout" validate:"required|min:1"`
	Metrics      bool   `mapstructure:"metrics" yaml:"metrics"`
}

type Log struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Dir   string `mapstructure:"dir" yaml:"dir,omitempty"`
}

type Config struct {
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	LLM     LLM     `mapstructure:"llm" yaml:"llm"`
	Voice   Voice   `mapstructure:"voice" yaml:"voice"`
	Journal Journal `mapstructure:"journal" yaml:"journal"`
	Server  Server  `mapstructure:"server" yaml:"server"`
	Log     Log     `mapstructure:"log" yaml:"log"`

	// Path is the file the config was read from, empty when defaults were used.
	Path string `mapstructure:"-" yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: Storage{Driver: constants.DefaultStorageDriver, Path: constants.DefaultDBPath},
		LLM: LLM{
			Model:      constants.DefaultLLMModel,
			MaxTokens:  constants.DefaultMaxTokens,
			Timeout:    constants.DefaultLLMTimeout,
			MaxRetries: constants.DefaultLLMMaxRetries,
			Tokenizer:  constants.DefaultTokenizer,
		},
		Voice: Voice{
			Continuous: constants.DefaultVoiceContinuous,
			StatusTTL:  constants.DefaultStatusTTL,
		},
		Journal: Journal{
			Timezone:   constants.DefaultTimezone,
			DateLayout: constants.LocaleDateFormat,
		},
		Server: Server{
			Host:         constants.DefaultServerHost,
			Port:         constants.DefaultServerPort,
			MaxConns:     constants.DefaultServerMaxConns,
			CacheSizeMB:  constants.DefaultServerCacheMB,
			CacheTTL:     constants.DefaultServerCacheTTL,
			MaxBodyBytes: constants.DefaultServerMaxBody,
			ReadTimeout:  constants.DefaultServerReadTO,
			Metrics:      true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(constants.SettingStorageDriver, d.Storage.Driver)
	v.SetDefault(constants.SettingStoragePath, d.Storage.Path)
	v.SetDefault(constants.SettingStorageDSN, d.Storage.DSN)
	v.SetDefault(constants.SettingLLMModel, d.LLM.Model)
	v.SetDefault(constants.SettingLLMBaseURL, d.LLM.BaseURL)
	v.SetDefault(constants.SettingLLMMaxTokens, d.LLM.MaxTokens)
	v.SetDefault(constants.SettingLLMTimeout, d.LLM.Timeout)
	v.SetDefault(constants.SettingLLMMaxRetries, d.LLM.MaxRetries)
	v.SetDefault(constants.SettingLLMTokenizer, d.LLM.Tokenizer)
	v.SetDefault(constants.SettingVoiceCommand, d.Voice.Command)
	v.SetDefault(constants.SettingVoiceDistillURL, d.Voice.DistillURL)
	v.SetDefault(constants.SettingVoiceContinuous, d.Voice.Continuous)
	v.SetDefault(constants.SettingVoiceStatusTTL, d.Voice.StatusTTL)
	v.SetDefault(constants.SettingJournalTimezone, d.Journal.Timezone)
	v.SetDefault(constants.SettingJournalLayout, d.Journal.DateLayout)
	v.SetDefault(constants.SettingServerHost, d.Server.Host)
	v.SetDefault(constants.SettingServerPort, d.Server.Port)
	v.SetDefault(constants.SettingServerMaxConns, d.Server.MaxConns)
	v.SetDefault(constants.SettingServerCacheMB, d.Server.CacheSizeMB)
	v.SetDefault(constants.SettingServerCacheTTL, d.Server.CacheTTL)
	v.SetDefault(constants.SettingServerMaxBody, d.Server.MaxBodyBytes)
	v.SetDefault(constants.SettingServerReadTO, d.Server.ReadTimeout)
	v.SetDefault(constants.SettingServerMetrics, d.Server.Metrics)
	v.SetDefault(constants.SettingLogDebug, d.Log.Debug)
	v.SetDefault(constants.SettingLogDir, d.Log.Dir)
}

// Load reads path, applies ARCHITECT_* environment overrides (for example
// ARCHITECT_LLM_MODEL) and validates the result. A missing file at the
// default location is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = constants.DefaultConfigFile
	}
	path, err := utils.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var conf Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		conf.Path = path
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks struct rules and the values the rules cannot express.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	if !utils.ValidateTimezone(c.Journal.Timezone) {
		return fmt.Errorf("invalid config: unknown timezone %q", c.Journal.Timezone)
	}
	if !utils.ValidateDateLayout(c.Journal.DateLayout) {
		return fmt.Errorf("invalid config: date layout %q does not round-trip a date", c.Journal.DateLayout)
	}
	return nil
}

// Location is the calendar location entries are dated in.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Journal.Timezone)
}

// ConfigDir is the directory holding the config file, logs and backups.
func (c *Config) ConfigDir() string {
	if c.Path != "" {
		return filepath.Dir(c.Path)
	}
	dir, err := utils.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		return "."
	}
	return dir
}

// Write saves c as YAML at path, creating parent directories.
func (c *Config) Write(path string) error {
	path, err := utils.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
