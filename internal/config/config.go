// Package config loads application.{env}.json, selected by APP_ENV and
// overridable through DICOMWEB_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envVar    = "APP_ENV"
	envPrefix = "DICOMWEB"
)

// ServerConfig is the HTTP listen address.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig selects and addresses the relational engine. DBType is
// picked once at startup; mysql is the shipped engine, postgres is supported.
type DatabaseConfig struct {
	DBType   string `mapstructure:"dbtype"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LocalStorageConfig holds the two store roots.
type LocalStorageConfig struct {
	DicomStorePath string `mapstructure:"dicm_store_path"`
	JSONStorePath  string `mapstructure:"json_store_path"`
}

// KafkaConfig addresses the broker and names the deployment's topics.
type KafkaConfig struct {
	Brokers         string `mapstructure:"brokers"`
	Topic           string `mapstructure:"topic"`
	StateTopic      string `mapstructure:"state_topic"`
	ImageTopic      string `mapstructure:"image_topic"`
	WebAPITopic     string `mapstructure:"webapi_topic"`
	ConsumerGroupID string `mapstructure:"consumer_group_id"`
}

// RedisConfig addresses the cache.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
}

// LogConfig mirrors the logger init knobs.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	MainDatabase DatabaseConfig     `mapstructure:"main_database"`
	LocalStorage LocalStorageConfig `mapstructure:"local_storage"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Log          LogConfig          `mapstructure:"log"`
	JWKSCacheTTL int                `mapstructure:"jwks_cache_ttl"`
}

// Load reads .env, then application.{APP_ENV}.json (default dev), then the
// DICOMWEB_ environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv(envVar)
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("application.%s", env))
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read application.%s.json: %w", env, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot possibly serve.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if c.MainDatabase.Host == "" || c.MainDatabase.Database == "" {
		return errors.New("main_database.host and main_database.database are required")
	}
	switch c.MainDatabase.DBType {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported main_database.dbtype %q", c.MainDatabase.DBType)
	}
	if c.LocalStorage.DicomStorePath == "" || c.LocalStorage.JSONStorePath == "" {
		return errors.New("local_storage paths are required")
	}
	return nil
}

// EncodePassword percent-encodes the reserved URL characters so credentials
// survive composition into URI-style connection strings. Only the postgres
// DSN needs it: pgx parses the URI through net/url and decodes it back. The
// mysql driver's classic DSN format never URL-decodes, so its DSN is built
// with the driver's own formatter instead.
func EncodePassword(p string) string {
	return url.QueryEscape(p)
}

// DatabaseURL composes the engine connection string.
func (c *DatabaseConfig) DatabaseURL() (string, error) {
	switch c.DBType {
	case "", "mysql":
		mc := mysqldriver.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.Database
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			url.QueryEscape(c.User), EncodePassword(c.Password), c.Host, c.Port, c.Database), nil
	default:
		return "", fmt.Errorf("unsupported dbtype %q", c.DBType)
	}
}
