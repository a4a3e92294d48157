package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Profiles       []ProfileConfig `mapstructure:"profiles"`
	DefaultProfile string          `mapstructure:"default_profile"`
	Store          StoreConfig     `mapstructure:"store"`
	Search         SearchConfig    `mapstructure:"search"`
	Logging        LoggingConfig   `mapstructure:"logging"`
}

// ProfileConfig is one viewer profile and the Xtream account behind it
type ProfileConfig struct {
	Name      string `mapstructure:"name"`
	URL       string `mapstructure:"url"` // Provider base URL
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	UserAgent string `mapstructure:"user_agent"`
}

// StoreConfig holds local persistence configuration
type StoreConfig struct {
	Dir        string `mapstructure:"dir"`         // BoltDB directory
	NoPersist  bool   `mapstructure:"no_persist"`  // Memory-only store
	TimeoutSec int    `mapstructure:"timeout_sec"` // Remote request timeout
}

// SearchConfig holds search pagination configuration
type SearchConfig struct {
	ChunkSize   int `mapstructure:"chunk_size"`
	Suggestions int `mapstructure:"suggestions"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:        defaultDataPath(),
			TimeoutSec: 30,
		},
		Search: SearchConfig{
			ChunkSize:   10,
			Suggestions: 5,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultLogDir(), "xcview.log"),
			Level: "INFO",
		},
	}
}

// defaultLogDir returns the default log directory for the current OS
func defaultLogDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "xcview")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "xcview")
	}
}

// defaultDataPath returns the default store directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "xcview", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "xcview", "data")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "xcview")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "xcview")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath(), ".")
}

// LoadConfigFrom loads configuration from an explicit file
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(paths) > 0 {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	// Environment variable overrides (XCVIEW_LOGGING_LEVEL, ...). Viper only
	// consults the environment for keys it knows, so defaults are registered.
	setDefaults(v, cfg)
	v.SetEnvPrefix("XCVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Search.ChunkSize <= 0 {
		cfg.Search.ChunkSize = 10
	}

	return cfg, nil
}

// setDefaults registers every scalar key of cfg with v
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("default_profile", cfg.DefaultProfile)

	v.SetDefault("store.dir", cfg.Store.Dir)
	v.SetDefault("store.no_persist", cfg.Store.NoPersist)
	v.SetDefault("store.timeout_sec", cfg.Store.TimeoutSec)

	v.SetDefault("search.chunk_size", cfg.Search.ChunkSize)
	v.SetDefault("search.suggestions", cfg.Search.Suggestions)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig saves the current configuration to the default location
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return SaveConfigTo(cfg, filepath.Join(configPath, "config.yaml"))
}

// SaveConfigTo writes cfg as YAML to path
func SaveConfigTo(cfg *Config, path string) error {
	v := viper.New()

	profiles := make([]map[string]any, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		profiles = append(profiles, map[string]any{
			"name":       p.Name,
			"url":        p.URL,
			"username":   p.Username,
			"password":   p.Password,
			"user_agent": p.UserAgent,
		})
	}
	v.Set("profiles", profiles)
	v.Set("default_profile", cfg.DefaultProfile)

	v.Set("store.dir", cfg.Store.Dir)
	v.Set("store.no_persist", cfg.Store.NoPersist)
	v.Set("store.timeout_sec", cfg.Store.TimeoutSec)

	v.Set("search.chunk_size", cfg.Search.ChunkSize)
	v.Set("search.suggestions", cfg.Search.Suggestions)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if at least one profile has an account
func (c *Config) IsConfigured() bool {
	for _, p := range c.Profiles {
		if p.URL != "" && p.Username != "" {
			return true
		}
	}
	return false
}

// Profile returns the profile config with the given name
func (c *Config) Profile(name string) (ProfileConfig, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileConfig{}, false
}

// ProfileNames returns the configured profile names in file order
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// UpsertProfile adds p or replaces the profile with the same name
func (c *Config) UpsertProfile(p ProfileConfig) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return
		}
	}
	c.Profiles = append(c.Profiles, p)
}

// StoreDir returns the store directory, or "" for a memory-only store
func (c *Config) StoreDir() string {
	if c.Store.NoPersist {
		return ""
	}
	return c.Store.Dir
}
