// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is the config file consulted when --config is not given.
const DefaultPath = "todoquery.yaml"

// Config represents the complete configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo" yaml:"mongo"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// MongoConfig contains record store configuration.
type MongoConfig struct {
	URI            string        `mapstructure:"uri" yaml:"uri"`
	Database       string        `mapstructure:"database" yaml:"database"`
	Collection     string        `mapstructure:"collection" yaml:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":4567",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "dev",
			Collection:     "todos",
			ConnectTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file, falling back to defaults.
// Environment variables prefixed TODOQUERY_ override file values
// (e.g. TODOQUERY_MONGO_URI). Returned warnings are informational.
func Load(path string) (*Config, []string, error) {
	cfg := DefaultConfig()
	warnings := []string{}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, nil, fmt.Errorf("config file not found: %s", path)
		}
		warnings = append(warnings, "No config file found, using defaults")
	} else {
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
		if !v.InConfig("mongo.uri") && os.Getenv("TODOQUERY_MONGO_URI") == "" {
			warnings = append(warnings, "Using default mongo uri: "+cfg.Mongo.URI)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, warnings, nil
}

// setDefaults registers every key with viper so env overrides apply
// even when the key is absent from the config file.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("mongo.uri", def.Mongo.URI)
	v.SetDefault("mongo.database", def.Mongo.Database)
	v.SetDefault("mongo.collection", def.Mongo.Collection)
	v.SetDefault("mongo.connect_timeout", def.Mongo.ConnectTimeout)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}

// Validate checks enumerated configuration values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		return fmt.Errorf("mongo database and collection must be set")
	}
	return nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	v := viper.New()
	def := DefaultConfig()
	v.Set("server.addr", def.Server.Addr)
	v.Set("server.read_timeout", def.Server.ReadTimeout.String())
	v.Set("server.write_timeout", def.Server.WriteTimeout.String())
	v.Set("server.shutdown_timeout", def.Server.ShutdownTimeout.String())
	v.Set("mongo.uri", def.Mongo.URI)
	v.Set("mongo.database", def.Mongo.Database)
	v.Set("mongo.collection", def.Mongo.Collection)
	v.Set("mongo.connect_timeout", def.Mongo.ConnectTimeout.String())
	v.Set("logging.level", def.Logging.Level)
	v.Set("logging.format", def.Logging.Format)

	return v.WriteConfigAs(path)
}
