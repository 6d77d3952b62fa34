package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "DABIRO_"

// loggerKey is used to store the logger in a command context.
type loggerKey struct{}

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// connectionFlags are global flags that land under the connection key.
var connectionFlags = map[string]bool{
	"dialect":  true,
	"host":     true,
	"port":     true,
	"path":     true,
	"user":     true,
	"password": true,
	"database": true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// findConfigFile finds the config file to use.
// Priority: explicit path > dabiro.yaml > dabiro.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"dabiro.yaml", "dabiro.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > selected profile > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"verbose":         false,
		"output":          DefaultOutput,
		"page_size":       DefaultPageSize,
		"search_limit":    DefaultSearchLimit,
		"session_timeout": DefaultSessionTimeout.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Profile, merged over the base connection
	if name := profileName(flags); name != "" {
		if err := applyProfile(name); err != nil {
			return nil, err
		}
	}

	// 4. Environment variables
	// Transform: DABIRO_CONNECTION__HOST -> connection.host
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if connectionFlags[key] {
				key = "connection." + key
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	expandConnectionEnvVars(&cfg.Connection)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// profileName resolves --profile before the flag layer is loaded.
func profileName(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("profile") {
		if v, err := flags.GetString("profile"); err == nil {
			return v
		}
	}
	if v := os.Getenv(EnvPrefix + "PROFILE"); v != "" {
		return v
	}
	return k.String("profile")
}

func applyProfile(name string) error {
	if !k.Exists("profiles." + name) {
		return fmt.Errorf("unknown profile %q", name)
	}
	var base, profile ConnectionConfig
	if err := k.Unmarshal("connection", &base); err != nil {
		return fmt.Errorf("unable to decode connection: %w", err)
	}
	if err := k.Unmarshal("profiles."+name, &profile); err != nil {
		return fmt.Errorf("unable to decode profile %s: %w", name, err)
	}
	merged := MergeConnection(base, profile).toMap("connection")
	merged["profile"] = name
	if err := k.Load(confmap.Provider(merged, "."), nil); err != nil {
		return fmt.Errorf("failed to apply profile %s: %w", name, err)
	}
	return nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration stored by the last LoadConfig.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns. Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

func expandConnectionEnvVars(c *ConnectionConfig) {
	c.Host = expandEnvVars(c.Host)
	c.User = expandEnvVars(c.User)
	c.Password = expandEnvVars(c.Password)
	c.Database = expandEnvVars(c.Database)
}
