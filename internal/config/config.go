// Package config loads and hot-reloads narrative's configuration using
// viper (file + environment) and fsnotify (live reload), the same stack
// the wider pipeline tooling uses for its own configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/narrative/internal/layout"
)

// Config holds narrative's tunables. Every field has a spec-mandated
// default (§6); the rest of the pipeline's thresholds are fixed constants,
// not configuration, because varying them would make output
// non-reproducible across runs.
type Config struct {
	MaxPages          int     `mapstructure:"max_pages" yaml:"max_pages"`
	RotationCutoffDeg float64 `mapstructure:"rotation_cutoff_deg" yaml:"rotation_cutoff_deg"`
	ServerAddr        string  `mapstructure:"server_addr" yaml:"server_addr"`
	WorkerCount       int     `mapstructure:"worker_count" yaml:"worker_count"`
	LogLevel          string  `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfig returns configuration with the spec-mandated defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxPages:          200,
		RotationCutoffDeg: 10,
		ServerAddr:        ":8080",
		WorkerCount:       4,
		LogLevel:          "info",
	}
}

// LayoutConfig converts c into the layout package's pipeline configuration,
// translating RotationCutoffDeg (the human-facing unit) into the radians
// layout.Config works in.
func (c *Config) LayoutConfig() layout.Config {
	return layout.Config{
		MaxPages:          c.MaxPages,
		RotationCutoffRad: c.RotationCutoffDeg * math.Pi / 180,
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads the initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{callbacks: make([]func(*Config), 0)}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("max_pages", defaults.MaxPages)
	viper.SetDefault("rotation_cutoff_deg", defaults.RotationCutoffDeg)
	viper.SetDefault("server_addr", defaults.ServerAddr)
	viper.SetDefault("worker_count", defaults.WorkerCount)
	viper.SetDefault("log_level", defaults.LogLevel)

	viper.SetEnvPrefix("NARRATIVE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.narrative")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback invoked whenever the config file changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# narrative configuration\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
