package config

import (
	"fmt"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// ApplyDefaults fills unset values. Ports default per dialect.
func (c *Config) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	c.Connection.ApplyDefaults()
}

// ApplyDefaults sets the default port of network dialects.
func (c *ConnectionConfig) ApplyDefaults() {
	if c.Port != 0 {
		return
	}
	switch c.ToDescriptor().NormalizedDialect() {
	case core.DialectMySQL:
		c.Port = DefaultMySQLPort
	case core.DialectPostgres:
		c.Port = DefaultPostgresPort
	}
}

// Validate checks that the connection can be handed to an adapter.
// It consults the adapter registry, so adapters must be imported first.
func (c *ConnectionConfig) Validate() error {
	if c.Dialect == "" {
		return &core.ValidationError{Field: "connection.dialect", Reason: "is required"}
	}
	desc := c.ToDescriptor()
	name := desc.NormalizedDialect()
	if !adapter.IsRegistered(name) {
		return &adapter.UnknownAdapterError{Type: c.Dialect, Available: adapter.ListAdapters()}
	}
	if name == core.DialectSQLite && desc.FilePath() == "" {
		return &core.ValidationError{Field: "connection.path", Reason: "is required for sqlite"}
	}
	return nil
}

// Validate checks the general settings. The connection is validated
// separately by commands that connect.
func (c *Config) Validate() error {
	switch c.Output {
	case "auto", "table", "json", "csv", "md", "markdown", "yaml":
	default:
		return &core.ValidationError{Field: "output", Reason: fmt.Sprintf("unknown format %q", c.Output)}
	}
	if c.PageSize > 10000 {
		return &core.ValidationError{Field: "page_size", Reason: "must not exceed 10000"}
	}
	return nil
}
