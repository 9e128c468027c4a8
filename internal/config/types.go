package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"2h" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// 缓存策略枚举：none 表示纯透传，filesystem 表示磁盘记忆化。
const (
	StrategyNone       = "none"
	StrategyFilesystem = "filesystem"
)

// 未显式覆盖时生效的缓存参数。
const (
	DefaultDiskQuota      = int64(50 * 1024 * 1024)
	DefaultSweepFrequency = 2 * time.Hour
)

// CachingOptions 描述 filesystem 策略的磁盘参数。CachePath 必须指向一个
// 已存在的目录，加载阶段不会代为创建。
type CachingOptions struct {
	CachePath      string   `mapstructure:"CachePath"`
	DiskQuota      int64    `mapstructure:"DiskQuota"`
	SweepFrequency Duration `mapstructure:"SweepFrequency"`
}

// GlobalConfig 描述全局运行时行为，所有上游共享同一份参数。
type GlobalConfig struct {
	ListenPort      int            `mapstructure:"ListenPort"`
	LogLevel        string         `mapstructure:"LogLevel"`
	LogFilePath     string         `mapstructure:"LogFilePath"`
	LogMaxSize      int            `mapstructure:"LogMaxSize"`
	LogMaxBackups   int            `mapstructure:"LogMaxBackups"`
	LogCompress     bool           `mapstructure:"LogCompress"`
	UpstreamTimeout Duration       `mapstructure:"UpstreamTimeout"`
	CachingStrategy string         `mapstructure:"CachingStrategy"`
	CachingOptions  CachingOptions `mapstructure:"CachingOptions"`
}

// UpstreamConfig 决定单个上游 API 如何被路由与回源。
type UpstreamConfig struct {
	Name        string `mapstructure:"Name"`
	Domain      string `mapstructure:"Domain"`
	BaseURL     string `mapstructure:"BaseURL"`
	ContentType string `mapstructure:"ContentType"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global    GlobalConfig     `mapstructure:",squash"`
	Upstreams []UpstreamConfig `mapstructure:"Upstream"`
}

// CachingEnabled 表示当前配置是否启用了磁盘缓存。
func (c *Config) CachingEnabled() bool {
	return c.Global.CachingStrategy == StrategyFilesystem
}

// UpstreamNames 返回所有上游名称摘要，供启动日志输出。
func UpstreamNames(upstreams []UpstreamConfig) []string {
	if len(upstreams) == 0 {
		return nil
	}
	result := make([]string, len(upstreams))
	for i, up := range upstreams {
		result[i] = up.Name
	}
	return result
}
