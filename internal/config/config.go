package config

import (
	"fmt"
	"time"
)

// DatabaseConfig holds PostgreSQL connection parameters for the encounter log.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// FlushInterval is how often buffered encounter events are written.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultDatabase returns a local development database config (disabled).
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Enabled:       false,
		Host:          "127.0.0.1",
		Port:          5432,
		User:          "skirmish",
		Password:      "skirmish",
		DBName:        "skirmish",
		SSLMode:       "disable",
		FlushInterval: 2 * time.Second,
	}
}
