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
	AI        AIConfig
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	MigrateOnly bool `mapstructure:"-"`
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AnalyticsConfig 分析与推荐引擎的可调参数。权重无推导依据，视为默认值
// 而非定律。
type AnalyticsConfig struct {
	DeterministicWeight float64 `mapstructure:"deterministic_weight"`
	AIWeight            float64 `mapstructure:"ai_weight"`
	MixedThreshold      float64 `mapstructure:"mixed_threshold"`

	ConfidenceSpreadWeight      float64 `mapstructure:"confidence_spread_weight"`
	ConfidenceCompletionWeight  float64 `mapstructure:"confidence_completion_weight"`
	ConfidenceConsistencyWeight float64 `mapstructure:"confidence_consistency_weight"`

	ClassificationCacheTTLMinutes int `mapstructure:"classification_cache_ttl_minutes"`
	RecommendationCacheTTLMinutes int `mapstructure:"recommendation_cache_ttl_minutes"`
	RecommendationRetentionHours  int `mapstructure:"recommendation_retention_hours"`
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

	viper.SetEnvPrefix("EDULYTICS")
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

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	setAnalyticsDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}

func setAnalyticsDefaults() {
	viper.SetDefault("ai.timeout_seconds", 30)

	viper.SetDefault("analytics.deterministic_weight", 0.6)
	viper.SetDefault("analytics.ai_weight", 0.4)
	viper.SetDefault("analytics.mixed_threshold", 10.0)
	viper.SetDefault("analytics.confidence_spread_weight", 0.4)
	viper.SetDefault("analytics.confidence_completion_weight", 0.3)
	viper.SetDefault("analytics.confidence_consistency_weight", 0.3)
	viper.SetDefault("analytics.classification_cache_ttl_minutes", 60)
	viper.SetDefault("analytics.recommendation_cache_ttl_minutes", 60)
	viper.SetDefault("analytics.recommendation_retention_hours", 24)
}

// DefaultAnalytics 返回与配置默认值一致的参数集，供脚本和测试使用。
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		DeterministicWeight:           0.6,
		AIWeight:                      0.4,
		MixedThreshold:                10.0,
		ConfidenceSpreadWeight:        0.4,
		ConfidenceCompletionWeight:    0.3,
		ConfidenceConsistencyWeight:   0.3,
		ClassificationCacheTTLMinutes: 60,
		RecommendationCacheTTLMinutes: 60,
		RecommendationRetentionHours:  24,
	}
}
