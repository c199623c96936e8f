package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Health    HealthConfig    `mapstructure:"health"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Feature   FeatureConfig   `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单、限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 会话 Token 配置
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	Cookie     CookieConfig  `mapstructure:"cookie"`
}

// CookieConfig Cookie 安全配置
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"` // 为空时仅输出到 stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RetryConfig 存储层瞬时故障重试策略
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// HealthConfig 健康检查配置
type HealthConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// RateLimitConfig 认证接口限流配置
type RateLimitConfig struct {
	AuthLimit  int           `mapstructure:"auth_limit"`
	AuthWindow time.Duration `mapstructure:"auth_window"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SentryConfig 错误上报配置
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	DebugEndpoints       bool `mapstructure:"debug_endpoints"`
	SignupTickets        int  `mapstructure:"signup_tickets"`
	ReferralBonusTickets int  `mapstructure:"referral_bonus_tickets"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWatched 与 Load 相同，但在配置文件变更时回调 onChange（仅在找到配置文件时生效）
func LoadWatched(path string, onChange func(*Config)) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() != "" && onChange != nil {
		v.OnConfigChange(func(_ fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil {
				return
			}
			if next.Validate() != nil {
				return
			}
			onChange(&next)
		})
		v.WatchConfig()
	}

	return &cfg, nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("OMNINET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "omninet_lottery")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")
	v.SetDefault("auth.cookie.domain", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff", "100ms")
	v.SetDefault("retry.max_backoff", "2s")

	v.SetDefault("health.refresh_interval", "30s")

	v.SetDefault("rate_limit.auth_limit", 10)
	v.SetDefault("rate_limit.auth_window", "1m")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")

	v.SetDefault("feature.debug_endpoints", false)
	v.SetDefault("feature.signup_tickets", 1)
	v.SetDefault("feature.referral_bonus_tickets", 1)
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("配置校验失败: retry.max_attempts 必须大于 0")
	}
	if c.Feature.SignupTickets < 0 || c.Feature.ReferralBonusTickets < 0 {
		return fmt.Errorf("配置校验失败: feature 中的赠送票数不能为负")
	}
	return nil
}
