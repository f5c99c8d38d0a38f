package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	DefaultFile = "configuration.yaml"
	envPrefix   = "APP"
)

type Config struct {
	ApplicationPort int            `yaml:"application_port" split_words:"true"`
	Database        DatabaseConfig `yaml:"database"`
	Cache           CacheConfig    `yaml:"cache"`
	Log             LogConfig      `yaml:"log"`
	Metrics         MetricsConfig  `yaml:"metrics"`
	Server          ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver" split_words:"true"`
	Username       string        `yaml:"username" split_words:"true"`
	Password       string        `yaml:"password" split_words:"true"`
	Host           string        `yaml:"host" split_words:"true"`
	Port           int           `yaml:"port" split_words:"true"`
	DatabaseName   string        `yaml:"database_name" split_words:"true"`
	Collection     string        `yaml:"collection" split_words:"true"`
	MaxConnections int           `yaml:"max_connections" split_words:"true"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" split_words:"true"`
	CreateIndexes  bool          `yaml:"create_indexes" split_words:"true"`
}

type CacheConfig struct {
	Driver   string        `yaml:"driver" split_words:"true"`
	Addr     string        `yaml:"addr" split_words:"true"`
	Password string        `yaml:"password" split_words:"true"`
	TTL      time.Duration `yaml:"ttl" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" split_words:"true"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// ConnectionString builds the driver URI for the configured database.
// Credentials are escaped and left out entirely when no username is set.
func (c DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme: DriverMongo,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}

	switch {
	case c.Username == "":
	case c.Password == "":
		u.User = url.User(c.Username)
	default:
		u.User = url.UserPassword(c.Username, c.Password)
	}

	if c.Driver == DriverPostgres {
		u.Scheme = DriverPostgres
		u.Path = "/" + c.DatabaseName
	}

	return u.String()
}

// Default returns the settings used when neither the file nor the
// environment provides a value.
func Default() Config {
	return Config{
		ApplicationPort: 9999,
		Database: DatabaseConfig{
			Driver:         DriverMongo,
			Host:           "localhost",
			Port:           27017,
			DatabaseName:   "rinha",
			Collection:     "pessoas",
			MaxConnections: 50,
			ConnectTimeout: 10 * time.Second,
			CreateIndexes:  true,
		},
		Cache: CacheConfig{
			Driver: CacheNone,
			Addr:   "localhost:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads a .env file when present, then the YAML file at path, then
// APP_* environment overrides. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("APP_CONFIG_FILE")
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) check() error {
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheRedis:
	case "":
		c.Cache.Driver = CacheNone
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}

	return nil
}
