package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig
const EnvPrefix = "PRODUCTS_"

// Config is the complete service configuration
type Config struct {
	Server ServerConfig `koanf:"server"`
	OTLP   OTLPConfig   `koanf:"otlp"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port            string        `koanf:"port"`
	Host            string        `koanf:"host"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

// OTLPConfig holds the OpenTelemetry exporter and resource settings
type OTLPConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"servicename"`
	Environment string `koanf:"environment"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level string `koanf:"level"`
}

// Options controls where LoadConfig looks for its sources
type Options struct {
	ConfigFile string
	EnvFile    string
}

// DefaultOptions reads config.yaml and .env from the working directory
func DefaultOptions() Options {
	return Options{ConfigFile: "config.yaml", EnvFile: ".env"}
}

func defaults() map[string]any {
	return map[string]any{
		"server.host":            "0.0.0.0",
		"server.port":            "8080",
		"server.shutdowntimeout": "10s",
		"otlp.enabled":           false,
		"otlp.endpoint":          "localhost:4317",
		"otlp.servicename":       "products-api",
		"otlp.environment":       "development",
		"log.level":              "info",
	}
}

// LoadConfig loads configuration from, in increasing priority: built-in
// defaults, the YAML file, the .env file and PRODUCTS_* environment variables.
// Keys are case-insensitive; PRODUCTS_SERVER_PORT maps to server.port.
func LoadConfig(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading config defaults: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("WARN: error loading YAML config file '%s': %v", opts.ConfigFile, err)
			}
		}
	}

	if opts.EnvFile != "" {
		if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if strings.HasPrefix(key, EnvPrefix) {
					envMap[envKey(key)] = value
				}
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps PRODUCTS_SERVER_SHUTDOWNTIMEOUT to server.shutdowntimeout
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Address returns host:port for the HTTP listener
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Validate checks the loaded configuration for values the service cannot run with
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %q", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid HTTP server shutdown timeout: %v", c.Server.ShutdownTimeout)
	}
	if c.OTLP.Enabled && c.OTLP.Endpoint == "" {
		return fmt.Errorf("OTLP is enabled but no endpoint is configured")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured level name
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level: %q", c.Level)
	}
	return level, nil
}
