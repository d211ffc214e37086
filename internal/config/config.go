package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
)

// EnvPrefix prefixes environment overrides, e.g. EVERYSEARCH_SEARCH_TIMEOUT_MS
const EnvPrefix = "EVERYSEARCH"

// DefaultIgnorePatterns are the ignore rules a fresh install starts with
var DefaultIgnorePatterns = []string{
	`\.git/`,
	`trash`,
	`tmp.*`,
	`/tmp`,
	`cache`,
	`/cache/`,
	`\.cache/`,
}

// Config represents the application configuration
type Config struct {
	Version              int            `toml:"version" mapstructure:"version"`
	Tool                 string         `toml:"tool" mapstructure:"tool"`
	IndexDB              string         `toml:"index_db" mapstructure:"index_db"`
	Opener               string         `toml:"opener" mapstructure:"opener"`
	UpdateCommand        []string       `toml:"update_command" mapstructure:"update_command"`
	UpdateTimeoutSeconds int            `toml:"update_timeout_seconds" mapstructure:"update_timeout_seconds"`
	Search               SearchSettings `toml:"search" mapstructure:"search"`
	Ignore               []string       `toml:"ignore" mapstructure:"ignore"`
}

// SearchSettings holds the search form defaults and timing
type SearchSettings struct {
	DebounceMS int    `toml:"debounce_ms" mapstructure:"debounce_ms"`
	TimeoutMS  int    `toml:"timeout_ms" mapstructure:"timeout_ms"`
	Location   string `toml:"location" mapstructure:"location"`
	Exact      bool   `toml:"exact" mapstructure:"exact"`
	Type       string `toml:"type" mapstructure:"type"`
}

// Debounce is the quiet period before a search runs
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// Timeout bounds a single index tool invocation
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Search.TimeoutMS) * time.Millisecond
}

// UpdateTimeout bounds an index refresh
func (c *Config) UpdateTimeout() time.Duration {
	return time.Duration(c.UpdateTimeoutSeconds) * time.Second
}

// TypeFilter returns the configured default type filter
func (c *Config) TypeFilter() domain.TypeFilter {
	return domain.ParseTypeFilter(c.Search.Type)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "everysearch", "config.toml")
}

// NewConfigService creates a config service for the given file; empty means DefaultPath
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service that publishes load events
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the service's config file, writing the defaults first when it does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg, err := decode(newViper())
		if err != nil {
			return nil, err
		}
		if err := cs.SaveToPath(DefaultConfig(), cs.filePath); err != nil {
			return nil, err
		}
		cs.publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path, applying environment overrides
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (cs *configService) publish(e eventbus.DomainEvent) {
	if cs.bus != nil {
		cs.bus.Publish(e)
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:              1,
		Tool:                 "plocate",
		IndexDB:              "/var/lib/plocate/plocate.db",
		Opener:               "",
		UpdateCommand:        []string{"pkexec", "updatedb"},
		UpdateTimeoutSeconds: 120,
		Search: SearchSettings{
			DebounceMS: 300,
			TimeoutMS:  3000,
			Location:   "/",
			Exact:      true,
			Type:       string(domain.TypeAll),
		},
		Ignore: append([]string(nil), DefaultIgnorePatterns...),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("version", def.Version)
	v.SetDefault("tool", def.Tool)
	v.SetDefault("index_db", def.IndexDB)
	v.SetDefault("opener", def.Opener)
	v.SetDefault("update_command", def.UpdateCommand)
	v.SetDefault("update_timeout_seconds", def.UpdateTimeoutSeconds)
	v.SetDefault("search.debounce_ms", def.Search.DebounceMS)
	v.SetDefault("search.timeout_ms", def.Search.TimeoutMS)
	v.SetDefault("search.location", def.Search.Location)
	v.SetDefault("search.exact", def.Search.Exact)
	v.SetDefault("search.type", def.Search.Type)
	v.SetDefault("ignore", def.Ignore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize replaces unusable values with defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if strings.TrimSpace(c.Tool) == "" {
		c.Tool = def.Tool
	}
	if len(c.UpdateCommand) == 0 {
		c.UpdateCommand = def.UpdateCommand
	}
	if c.UpdateTimeoutSeconds <= 0 {
		c.UpdateTimeoutSeconds = def.UpdateTimeoutSeconds
	}
	if c.Search.DebounceMS <= 0 {
		c.Search.DebounceMS = def.Search.DebounceMS
	}
	if c.Search.TimeoutMS <= 0 {
		c.Search.TimeoutMS = def.Search.TimeoutMS
	}
	if strings.TrimSpace(c.Search.Location) == "" {
		c.Search.Location = "/"
	}
	c.Search.Type = string(domain.ParseTypeFilter(c.Search.Type))
	if c.Ignore == nil {
		c.Ignore = []string{}
	}
}
