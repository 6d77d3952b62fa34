// Package config loads dabiro configuration from defaults, a yaml file,
// DABIRO_ environment variables and command-line flags.
package config

import (
	"maps"
	"time"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Default configuration values.
const (
	DefaultOutput         = "auto"
	DefaultPageSize       = 50
	DefaultSearchLimit    = 100
	DefaultSessionTimeout = 30 * time.Minute
	DefaultMySQLPort      = 3306
	DefaultPostgresPort   = 5432
)

// Config holds the resolved CLI configuration.
type Config struct {
	Profile        string                      `koanf:"profile"`
	Verbose        bool                        `koanf:"verbose"`
	Output         string                      `koanf:"output"`
	PageSize       int                         `koanf:"page_size"`
	SearchLimit    int                         `koanf:"search_limit"`
	SessionTimeout time.Duration               `koanf:"session_timeout"`
	HistoryFile    string                      `koanf:"history_file"`
	Connection     ConnectionConfig            `koanf:"connection"`
	Profiles       map[string]ConnectionConfig `koanf:"profiles"`
}

// ConnectionConfig describes a database connection.
type ConnectionConfig struct {
	Dialect  string            `koanf:"dialect"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Path     string            `koanf:"path"` // sqlite file
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Database string            `koanf:"database"`
	Options  map[string]string `koanf:"options"`
}

// ToDescriptor converts the connection into the descriptor handed to adapters.
func (c ConnectionConfig) ToDescriptor() core.ConnectionDescriptor {
	return core.ConnectionDescriptor{
		Dialect:  c.Dialect,
		Host:     c.Host,
		Port:     c.Port,
		Path:     c.Path,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		Options:  maps.Clone(c.Options),
	}
}

// ToDescriptor returns the descriptor of the active connection.
func (c *Config) ToDescriptor() core.ConnectionDescriptor {
	return c.Connection.ToDescriptor()
}

// MergeConnection overlays the non-empty fields of override onto base.
// Options are merged key by key.
func MergeConnection(base, override ConnectionConfig) ConnectionConfig {
	merged := base
	if override.Dialect != "" {
		merged.Dialect = override.Dialect
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if len(override.Options) > 0 {
		opts := maps.Clone(base.Options)
		if opts == nil {
			opts = make(map[string]string, len(override.Options))
		}
		maps.Copy(opts, override.Options)
		merged.Options = opts
	}
	return merged
}

// toMap flattens the set fields of c under the given key prefix.
func (c ConnectionConfig) toMap(prefix string) map[string]any {
	m := make(map[string]any)
	set := func(key string, v any) { m[prefix+"."+key] = v }
	if c.Dialect != "" {
		set("dialect", c.Dialect)
	}
	if c.Host != "" {
		set("host", c.Host)
	}
	if c.Port != 0 {
		set("port", c.Port)
	}
	if c.Path != "" {
		set("path", c.Path)
	}
	if c.User != "" {
		set("user", c.User)
	}
	if c.Password != "" {
		set("password", c.Password)
	}
	if c.Database != "" {
		set("database", c.Database)
	}
	for k, v := range c.Options {
		set("options."+k, v)
	}
	return m
}
