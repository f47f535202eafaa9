package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Jobs   JobsConfig   `mapstructure:"jobs"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// JobsConfig contains the intervals for the built-in recurring jobs.
// Intervals are parsed from Go duration strings ("30s", "15m").
type JobsConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0"`
	StatsInterval     time.Duration `mapstructure:"stats_interval" validate:"required,gt=0"`
}
