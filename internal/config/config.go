// Package config loads and validates application configuration.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Rates    RatesConfig    `mapstructure:"rates" validate:"required"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// RatesConfig contains exchange-rate refresher settings.
type RatesConfig struct {
	APIKey          string        `mapstructure:"api_key" validate:"required"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"required"`
}

// AMQPConfig contains optional transaction event publishing settings.
// Publishing is disabled when URL is empty.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}
