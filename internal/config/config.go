// Package config provides configuration structures and loading for dicttree.
package config

import "time"

// Store drivers.
const (
	DriverMySQL = "mysql"
	DriverFile  = "file"
)

// Config represents the complete application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Display  DisplayConfig  `yaml:"display" mapstructure:"display"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// StoreConfig selects where type records are read from and written to.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // mysql or file
	Table       string `yaml:"table" mapstructure:"table"`               // MySQL table holding the records
	File        string `yaml:"file" mapstructure:"file"`                 // YAML or JSON records file
	LockTimeout int    `yaml:"lock_timeout" mapstructure:"lock_timeout"` // seconds to wait for the edit lock
}

// DisplayConfig controls how forests and options are rendered.
type DisplayConfig struct {
	Indent string `yaml:"indent" mapstructure:"indent"` // per-level prefix for flattened options
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Store: StoreConfig{
			Driver:      DriverMySQL,
			Table:       "dict_type",
			LockTimeout: 10,
		},
		Display: DisplayConfig{
			Indent: "  ",
			Color:  true,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// LockTimeoutDuration returns the store lock timeout as a duration.
func (s StoreConfig) LockTimeoutDuration() time.Duration {
	return time.Duration(s.LockTimeout) * time.Second
}

// UsesDatabase reports whether the configured store needs a MySQL connection.
func (c *Config) UsesDatabase() bool {
	return c.Store.Driver == "" || c.Store.Driver == DriverMySQL
}
