package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Tracing      TracingConfig `mapstructure:"tracing"`
	Redis        RedisConfig
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Log          LogConfig          `mapstructure:"log"`
	Gamification GamificationConfig `mapstructure:"gamification"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool   `mapstructure:"-"` // 仅迁移模式（迁移后退出）
	Path         string `mapstructure:"-"` // 配置文件所在目录
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"` // mysql | postgres | sqlite
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	Charset        string
	ParseTime      bool
	SSLMode        string `mapstructure:"sslmode"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	MigrateCatalog bool   `mapstructure:"migrate_catalog"` // 课程目录表归内容服务所有，仅开发环境迁移
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

// GamificationConfig 积分策略表及进度计算参数
type GamificationConfig struct {
	ActivityPoints    map[string]int `mapstructure:"activity_points"`
	DuplicatePolicy   string         `mapstructure:"duplicate_policy"` // allow | once_per_reference | cooldown
	DuplicateCooldown time.Duration  `mapstructure:"duplicate_cooldown"`
	LevelStep         int            `mapstructure:"level_step"`
	ActiveWindow      time.Duration  `mapstructure:"active_window"`
	Timezone          string         `mapstructure:"timezone"`
	BatchSize         int            `mapstructure:"batch_size"`
}

const (
	DuplicateAllow            = "allow"
	DuplicateOncePerReference = "once_per_reference"
	DuplicateCooldown         = "cooldown"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "lingua_edu.db")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("gamification.activity_points", map[string]int{
		"complete_quiz":     10,
		"play_game":         5,
		"study_topic":       3,
		"study_vocabulary":  2,
		"complete_lesson":   20,
		"practice_speaking": 4,
	})
	v.SetDefault("gamification.duplicate_policy", DuplicateAllow)
	v.SetDefault("gamification.duplicate_cooldown", "30s")
	v.SetDefault("gamification.level_step", 200)
	v.SetDefault("gamification.active_window", "72h")
	v.SetDefault("gamification.timezone", "UTC")
	v.SetDefault("gamification.batch_size", 500)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGUA_EDU")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Gamification
	v.BindEnv("gamification.duplicate_policy", "GAMIFICATION_DUPLICATE_POLICY")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Path = path

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Gamification.Validate(); err != nil {
		return nil, err
	}

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// Validate 限流参数必须为正数
func (r RateLimitConfig) Validate() error {
	if r.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive (got %d)", r.MaxRequests)
	}
	if r.WindowMinutes <= 0 {
		return fmt.Errorf("rate_limit.window_minutes must be positive (got %d)", r.WindowMinutes)
	}
	return nil
}

// Validate 校验积分策略，非法策略拒绝加载（热更新时保留旧策略）
func (g GamificationConfig) Validate() error {
	for activity, points := range g.ActivityPoints {
		if points < 0 {
			return fmt.Errorf("gamification.activity_points.%s must not be negative (got %d)", activity, points)
		}
	}
	switch g.DuplicatePolicy {
	case DuplicateAllow, DuplicateOncePerReference:
	case DuplicateCooldown:
		if g.DuplicateCooldown <= 0 {
			return fmt.Errorf("gamification.duplicate_cooldown must be positive when duplicate_policy is %q", DuplicateCooldown)
		}
	default:
		return fmt.Errorf("unknown gamification.duplicate_policy %q", g.DuplicatePolicy)
	}
	if g.LevelStep <= 0 {
		return fmt.Errorf("gamification.level_step must be positive (got %d)", g.LevelStep)
	}
	if g.BatchSize <= 0 {
		return fmt.Errorf("gamification.batch_size must be positive (got %d)", g.BatchSize)
	}
	if _, err := time.LoadLocation(g.Timezone); err != nil {
		return fmt.Errorf("gamification.timezone: %w", err)
	}
	return nil
}
