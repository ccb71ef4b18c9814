package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	Auth       AuthConfig       `koanf:"auth"`
	Logger     LoggerConfig     `koanf:"logger"`
	Geo        GeoConfig        `koanf:"geo"`
	Moderation ModerationConfig `koanf:"moderation"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	RabbitMQ   RabbitMQConfig   `koanf:"rabbitmq"`
	Tracing    TracingConfig    `koanf:"tracing"`
}

type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	RunMode        string        `koanf:"run_mode"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type MongoConfig struct {
	URI               string        `koanf:"uri"`
	Database          string        `koanf:"database"`
	ConnectionTimeout time.Duration `koanf:"connection_timeout"`
	// Transactions requires a replica set or sharded cluster.
	Transactions bool `koanf:"transactions"`
}

type RedisConfig struct {
	Address         string `koanf:"address"`
	Password        string `koanf:"password"`
	DB              int    `koanf:"db"`
	IssueQueue      string `koanf:"issue_queue"`
	IssueDailyLimit int    `koanf:"issue_daily_limit"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type LoggerConfig struct {
	FilePath   string `koanf:"file_path"`
	Level      string `koanf:"level"`
	Encoding   string `koanf:"encoding"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type GeoConfig struct {
	DefaultRadiusKm float64 `koanf:"default_radius_km"`
	MaxRadiusKm     float64 `koanf:"max_radius_km"`
}

type ModerationConfig struct {
	StrictTransitions bool `koanf:"strict_transitions"`
	// FlagHideThreshold hides an issue once this many non-spam flags exist; 0 disables.
	FlagHideThreshold int `koanf:"flag_hide_threshold"`
}

type CloudinaryConfig struct {
	URL    string `koanf:"url"`
	Folder string `koanf:"folder"`
}

type RabbitMQConfig struct {
	URI      string `koanf:"uri"`
	Exchange string `koanf:"exchange"`
}

type TracingConfig struct {
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "production" || c.Server.RunMode == "release"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("please define the MONGODB_URI environment variable"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}
	if c.Geo.DefaultRadiusKm < 0 || c.Geo.MaxRadiusKm < c.Geo.DefaultRadiusKm {
		errs = append(errs, fmt.Errorf("geo radius defaults are inconsistent: default=%v max=%v", c.Geo.DefaultRadiusKm, c.Geo.MaxRadiusKm))
	}
	if c.Moderation.FlagHideThreshold < 0 {
		errs = append(errs, errors.New("moderation.flag_hide_threshold must not be negative"))
	}
	return errors.Join(errs...)
}

// DetermineConfigPath returns CONFIG_PATH, or config.yml when it exists.
func DetermineConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yml"); err == nil {
		return "config.yml"
	}
	return ""
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	if err := applyEnvOverrides(k); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "server.host", "0.0.0.0")
	setDefault(k, "server.port", 8080)
	setDefault(k, "server.run_mode", "development")
	setDefault(k, "server.allowed_origins", []string{"http://localhost:5173"})
	setDefault(k, "server.read_timeout", 10*time.Second)
	setDefault(k, "server.write_timeout", 30*time.Second)

	setDefault(k, "mongo.database", "civictrack")
	setDefault(k, "mongo.connection_timeout", 10*time.Second)
	setDefault(k, "mongo.transactions", false)

	setDefault(k, "redis.db", 0)
	setDefault(k, "redis.issue_queue", "issue_limit")
	setDefault(k, "redis.issue_daily_limit", 10)

	setDefault(k, "auth.token_ttl", 72*time.Hour)

	setDefault(k, "logger.file_path", "./logs/civictrack.log")
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.max_size_mb", 50)
	setDefault(k, "logger.max_backups", 5)
	setDefault(k, "logger.max_age_days", 28)

	setDefault(k, "geo.default_radius_km", 5.0)
	setDefault(k, "geo.max_radius_km", 100.0)

	setDefault(k, "moderation.strict_transitions", false)
	setDefault(k, "moderation.flag_hide_threshold", 5)

	setDefault(k, "cloudinary.folder", "civictrack/issues")
	setDefault(k, "rabbitmq.exchange", "civictrack")
	setDefault(k, "tracing.service_name", "civictrack-api")
}

func applyEnvOverrides(k *koanf.Koanf) error {
	var errs []error
	envInt := func(key string) int {
		n, err := GetInt(key, 0)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	envBool := func(key, path string) {
		if GetString(key, "") == "" {
			return
		}
		b, err := GetBool(key, false)
		if err != nil {
			errs = append(errs, err)
			return
		}
		k.Set(path, b)
	}

	if env := GetString("GO_ENV", ""); env != "" {
		k.Set("server.run_mode", env)
	}
	if host := GetString("HTTP_HOST", ""); host != "" {
		k.Set("server.host", host)
	}
	if port := envInt("PORT"); port > 0 {
		k.Set("server.port", port)
	}
	if origins := GetString("CORS_ORIGIN", ""); origins != "" {
		k.Set("server.allowed_origins", splitList(origins))
	}

	if uri := GetString("MONGODB_URI", ""); uri != "" {
		k.Set("mongo.uri", uri)
	}
	if db := GetString("MONGODB_DATABASE", ""); db != "" {
		k.Set("mongo.database", db)
	}
	envBool("MONGODB_TRANSACTIONS", "mongo.transactions")

	if addr := GetString("REDIS_ADDRESS", ""); addr != "" {
		k.Set("redis.address", addr)
	}
	if pw := GetString("REDIS_PASSWORD", ""); pw != "" {
		k.Set("redis.password", pw)
	}
	if queue := GetString("REDIS_QUEUE_FOR_ISSUE_LIMIT", ""); queue != "" {
		k.Set("redis.issue_queue", queue)
	}
	if limit := envInt("ISSUE_DAILY_LIMIT"); limit > 0 {
		k.Set("redis.issue_daily_limit", limit)
	}

	if secret := GetString("JWT_SECRET", ""); secret != "" {
		k.Set("auth.jwt_secret", secret)
	}
	if ttl := envInt("JWT_TTL_HOURS"); ttl > 0 {
		k.Set("auth.token_ttl", time.Duration(ttl)*time.Hour)
	}

	if p := GetString("LOGGER_FILE_PATH", ""); p != "" {
		k.Set("logger.file_path", p)
	}
	if lvl := GetString("LOGGER_LEVEL", ""); lvl != "" {
		k.Set("logger.level", lvl)
	}
	if enc := GetString("LOGGER_ENCODING", ""); enc != "" {
		k.Set("logger.encoding", enc)
	}

	envBool("MODERATION_STRICT_TRANSITIONS", "moderation.strict_transitions")

	if url := GetString("CLOUDINARY_URL", ""); url != "" {
		k.Set("cloudinary.url", url)
	}
	if uri := GetString("RABBITMQ_URI", ""); uri != "" {
		k.Set("rabbitmq.uri", uri)
	}
	if endpoint := GetString("OTEL_EXPORTER_OTLP_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}

	return errors.Join(errs...)
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
