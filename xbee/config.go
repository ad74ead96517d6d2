package xbee

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionConfig holds the ambient, non-protocol knobs for a Session: queue
// sizing, default timeouts, and logging. Persisted state otherwise does
// not exist for this library (spec.md §6: "Persisted state: none").
type SessionConfig struct {
	QueueCapacity       int           `yaml:"queue_capacity"`
	DefaultSendTimeout  time.Duration `yaml:"default_send_timeout"`
	SRPPhaseTimeout     time.Duration `yaml:"srp_phase_timeout"`
	GPMRequestTimeout   time.Duration `yaml:"gpm_request_timeout"`
	GPMRebootTimeout    time.Duration `yaml:"gpm_reboot_timeout"`
	GPMWriteRetries     int           `yaml:"gpm_write_retries"`
	Logging             LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds settings for the zerolog-backed logger
// (internal/xbeelog). Open does not read it; a Session logs through the
// logger passed with WithLogger, or discards everything.
type LoggingConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultSessionConfig matches the defaults named throughout spec.md §4:
// queue capacity 50, 90-second GPM request/reboot timeouts, 3 write
// attempts (2 retries).
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		QueueCapacity:      DefaultQueueCapacity,
		DefaultSendTimeout: 5 * time.Second,
		SRPPhaseTimeout:    10 * time.Second,
		GPMRequestTimeout:  90 * time.Second,
		GPMRebootTimeout:   90 * time.Second,
		GPMWriteRetries:    3,
		Logging:            LoggingConfig{Level: "info"},
	}
}

// LoadSessionConfig reads and parses a YAML configuration file, filling
// any unset fields from DefaultSessionConfig.
func LoadSessionConfig(path string) (SessionConfig, error) {
	cfg := DefaultSessionConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("xbee: reading session config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("xbee: parsing session config: %w", err)
	}
	if cfg.QueueCapacity < 1 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	if cfg.GPMWriteRetries < 1 {
		cfg.GPMWriteRetries = 3
	}
	return cfg, nil
}
