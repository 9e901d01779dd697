package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	// 慢查询阈值
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置（由托管后端签发的 HS256 token）
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// AnalyticsConfig 统计引擎配置
type AnalyticsConfig struct {
	// IANA 时区名，空或 "Local" 表示进程本地时区
	Timezone string `yaml:"timezone"`
	// 拉取最近日志的条数上限
	LogWindow int `yaml:"log_window"`
	// 快照缓存 TTL
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// 单次热力图请求允许的最大天数
	MaxRangeDays int `yaml:"max_range_days"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TracingConfig OpenTelemetry 追踪配置
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// otel-collector 的 OTLP gRPC 地址
	Endpoint string `yaml:"endpoint"`
	// 采样比例，0..1
	SampleRatio float64 `yaml:"sample_ratio"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		cfg.SSLMode = mode
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideAnalyticsFromEnv 从环境变量覆盖统计配置
func OverrideAnalyticsFromEnv(cfg *AnalyticsConfig) {
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if window := os.Getenv("LOG_WINDOW"); window != "" {
		if w, err := strconv.Atoi(window); err == nil {
			cfg.LogWindow = w
		}
	}
	if days := os.Getenv("MAX_RANGE_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			cfg.MaxRangeDays = d
		}
	}
}

// OverrideLogFromEnv 从环境变量覆盖日志配置
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}

// OverrideTracingFromEnv 从环境变量覆盖追踪配置
func OverrideTracingFromEnv(cfg *TracingConfig) {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
		cfg.Enabled = true
	}
	if ratio := os.Getenv("OTEL_SAMPLE_RATIO"); ratio != "" {
		if r, err := strconv.ParseFloat(ratio, 64); err == nil {
			cfg.SampleRatio = r
		}
	}
}
