package config

import (
	"log"
	"time"

	pkgconfig "habitflow/pkg/config"
)

type Config struct {
	DB        pkgconfig.DBConfig        `yaml:"db"`
	Redis     pkgconfig.RedisConfig     `yaml:"redis"`
	MQ        pkgconfig.MQConfig        `yaml:"mq"`
	JWT       pkgconfig.JWTConfig       `yaml:"jwt"`
	Server    pkgconfig.ServerConfig    `yaml:"server"`
	Analytics pkgconfig.AnalyticsConfig `yaml:"analytics"`
	Log       pkgconfig.LogConfig       `yaml:"log"`
	Tracing   pkgconfig.TracingConfig   `yaml:"tracing"`
}

// Load 读取 config/ 目录下的多环境配置（CONFIG_ENV 选择环境），再用环境变量覆盖
func Load() *Config {
	cfg, err := LoadFrom(pkgconfig.GetConfigEnv(), pkgconfig.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func LoadFrom(env, dir string) (*Config, error) {
	cfg := Default()
	if err := pkgconfig.Load(env, dir, cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（生产环境使用）
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideAnalyticsFromEnv(&cfg.Analytics)
	pkgconfig.OverrideLogFromEnv(&cfg.Log)
	pkgconfig.OverrideTracingFromEnv(&cfg.Tracing)

	return cfg, nil
}

// Default 默认值，配置文件中缺省的字段沿用这里的值
func Default() *Config {
	return &Config{
		DB: pkgconfig.DBConfig{
			Host:               "localhost",
			Port:               5432,
			SSLMode:            "disable",
			MaxConns:           10,
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Redis:  pkgconfig.RedisConfig{Addr: "localhost:6379"},
		Server: pkgconfig.ServerConfig{Port: ":8080"},
		Analytics: pkgconfig.AnalyticsConfig{
			Timezone:     "Local",
			LogWindow:    1000,
			CacheTTL:     5 * time.Minute,
			MaxRangeDays: 366,
		},
		Log: pkgconfig.LogConfig{Level: "info"},
		Tracing: pkgconfig.TracingConfig{
			Endpoint:    "otel-collector:4317",
			SampleRatio: 1,
		},
	}
}

// Location resolves the configured analytics time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" || c.Analytics.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Analytics.Timezone)
}
