// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory frame queue.
	QueueSize int `koanf:"queue_size"`

	// MonitorBuffer sets the per-stream monitor inbox size.
	MonitorBuffer int `koanf:"monitor_buffer"`

	// DedupeSize sets the size of the frame-ID deduplication window.
	DedupeSize int `koanf:"dedupe_size"`

	// FallenTimeoutSeconds is how long a subject may stay down before the
	// person_down escalation fires.
	FallenTimeoutSeconds float64 `koanf:"fallen_timeout_seconds"`

	// SuddenFallWindowSeconds is the standing-to-down debounce window.
	SuddenFallWindowSeconds float64 `koanf:"sudden_fall_window_seconds"`

	// CooldownSeconds suppresses alerts after a person_down escalation.
	CooldownSeconds float64 `koanf:"cooldown_seconds"`

	// HistorySeconds and FPS size each engine's rolling history buffers.
	HistorySeconds float64 `koanf:"history_seconds"`
	FPS            int     `koanf:"fps"`

	// MaxAlerts caps retained alert history.
	MaxAlerts int `koanf:"max_alerts"`

	// MaxAlertLimit caps GET /alerts?limit.
	MaxAlertLimit int `koanf:"max_alert_limit"`
}

// New creates a Config with production defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		QueueSize:               10_000,
		MonitorBuffer:           64,
		DedupeSize:              50_000,
		FallenTimeoutSeconds:    5.0,
		SuddenFallWindowSeconds: 2.0,
		CooldownSeconds:         30.0,
		HistorySeconds:          3.0,
		FPS:                     30,
		MaxAlerts:               1000,
		MaxAlertLimit:           1000,
	}
}
