package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Session   SessionConfig   `mapstructure:"session"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
	CookieName string        `mapstructure:"cookie_name"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type QuizConfig struct {
	CodeLength int `mapstructure:"code_length"`
	// CaseInsensitiveAnswers 统一的判分大小写策略，对所有题型一致生效
	CaseInsensitiveAnswers bool `mapstructure:"case_insensitive_answers"`
	PlayCacheTTLMinutes    int  `mapstructure:"play_cache_ttl_minutes"`
}

type SessionConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
	// MonitorWindowMinutes 参与者快照回看窗口
	MonitorWindowMinutes   int  `mapstructure:"monitor_window_minutes"`
	AutoCleanup            bool `mapstructure:"auto_cleanup"`
	CleanupIntervalMinutes int  `mapstructure:"cleanup_interval_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("QUIZHUB")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Session
	viper.BindEnv("session.ttl_hours", "SESSION_TTL_HOURS")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	if cfg.JWT.CookieName == "" {
		cfg.JWT.CookieName = "token"
	}
	if cfg.Quiz.CodeLength <= 0 {
		cfg.Quiz.CodeLength = 6
	}
	if cfg.Quiz.PlayCacheTTLMinutes <= 0 {
		cfg.Quiz.PlayCacheTTLMinutes = 5
	}
	if cfg.Session.TTLHours <= 0 {
		cfg.Session.TTLHours = 2
	}
	if cfg.Session.MonitorWindowMinutes <= 0 {
		cfg.Session.MonitorWindowMinutes = 10
	}
	if cfg.Session.CleanupIntervalMinutes <= 0 {
		cfg.Session.CleanupIntervalMinutes = 30
	}

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}
