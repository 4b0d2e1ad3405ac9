package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀，层级用 __ 分隔：BARRIORED_DATABASE__DSN
const EnvPrefix = "BARRIORED_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	JWT      JWTConfig      `koanf:"jwt"`
	Log      LogConfig      `koanf:"log"`
	OTP      OTPConfig      `koanf:"otp"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Outbox   OutboxConfig   `koanf:"outbox"`
	Alerts   AlertsConfig   `koanf:"alerts"`
	CORS     CORSConfig     `koanf:"cors"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	Mode            string        `koanf:"mode"` // debug, release, test
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // mysql, postgres
	DSN             string        `koanf:"dsn"`
	LogLevel        string        `koanf:"log_level"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

type JWTConfig struct {
	AccessSecret  string        `koanf:"access_secret"`
	RefreshSecret string        `koanf:"refresh_secret"`
	AccessTTL     time.Duration `koanf:"access_ttl"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl"`
}

type LogConfig struct {
	Level   string `koanf:"level"`  // debug, info, warn, error
	Format  string `koanf:"format"` // json, console
	Service string `koanf:"service"`
}

type OTPConfig struct {
	Provider          string        `koanf:"provider"` // otpdev, local
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Timeout           time.Duration `koanf:"timeout"`
	Cooldown          time.Duration `koanf:"cooldown"`
	RequestTTL        time.Duration `koanf:"request_ttl"`
	PlaceholderDomain string        `koanf:"placeholder_domain"`
}

type AuthConfig struct {
	PublicBaseURL string        `koanf:"public_base_url"`
	MagicLinkTTL  time.Duration `koanf:"magic_link_ttl"`
}

type StorageConfig struct {
	Driver        string `koanf:"driver"` // s3, local
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	PublicBaseURL string `koanf:"public_base_url"`
	LocalDir      string `koanf:"local_dir"`
	MaxSize       int64  `koanf:"max_size"`
}

type KafkaConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type SMTPConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type OutboxConfig struct {
	BatchSize int           `koanf:"batch_size"`
	Interval  time.Duration `koanf:"interval"`
	MaxRetry  int           `koanf:"max_retry"`
}

type AlertsConfig struct {
	ExpiryCron string `koanf:"expiry_cron"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Load 依次加载 .env -> yaml -> 环境变量，后者覆盖前者
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	setDefaults(cfg)
	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 30 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Service == "" {
		c.Log.Service = "barriored-api"
	}
	if c.OTP.Provider == "" {
		c.OTP.Provider = "otpdev"
	}
	if c.OTP.BaseURL == "" {
		c.OTP.BaseURL = "https://otp.dev"
	}
	if c.OTP.Timeout == 0 {
		c.OTP.Timeout = 10 * time.Second
	}
	if c.OTP.Cooldown == 0 {
		c.OTP.Cooldown = time.Minute
	}
	if c.OTP.RequestTTL == 0 {
		c.OTP.RequestTTL = 5 * time.Minute
	}
	if c.OTP.PlaceholderDomain == "" {
		c.OTP.PlaceholderDomain = "whatsapp.barriored.co"
	}
	if c.Auth.PublicBaseURL == "" {
		c.Auth.PublicBaseURL = "http://localhost:8080"
	}
	if c.Auth.MagicLinkTTL == 0 {
		c.Auth.MagicLinkTTL = 5 * time.Minute
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "./uploads"
	}
	if c.Storage.MaxSize == 0 {
		c.Storage.MaxSize = 5 << 20
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "moderation.events"
	}
	if c.Outbox.BatchSize == 0 {
		c.Outbox.BatchSize = 200
	}
	if c.Outbox.Interval == 0 {
		c.Outbox.Interval = time.Second
	}
	if c.Outbox.MaxRetry == 0 {
		c.Outbox.MaxRetry = 10
	}
	if c.Alerts.ExpiryCron == "" {
		c.Alerts.ExpiryCron = "@every 5m"
	}
}
