package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// 所有配置错误（包括 CachePath 缺失或不存在）都会在这里同步返回，
// 不会延迟到第一次请求。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Upstreams {
		applyUpstreamDefaults(&cfg.Upstreams[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CachingEnabled() {
		absCache, err := filepath.Abs(cfg.Global.CachingOptions.CachePath)
		if err != nil {
			return nil, fmt.Errorf("无法解析缓存目录: %w", err)
		}
		cfg.Global.CachingOptions.CachePath = absCache
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5100)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("UpstreamTimeout", "30s")
	v.SetDefault("CachingStrategy", StrategyFilesystem)
	v.SetDefault("CachingOptions.DiskQuota", DefaultDiskQuota)
	v.SetDefault("CachingOptions.SweepFrequency", "2h")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5100
	}
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(30 * time.Second)
	}
	if strategy := strings.TrimSpace(g.CachingStrategy); strategy != "" {
		g.CachingStrategy = strings.ToLower(strategy)
	}
	if g.CachingOptions.DiskQuota == 0 {
		g.CachingOptions.DiskQuota = DefaultDiskQuota
	}
	if g.CachingOptions.SweepFrequency.DurationValue() == 0 {
		g.CachingOptions.SweepFrequency = Duration(DefaultSweepFrequency)
	}
}

func applyUpstreamDefaults(u *UpstreamConfig) {
	if strings.TrimSpace(u.ContentType) == "" {
		// 参考系统的上游均为 XML lookup API，命中时以此兜底。
		u.ContentType = "application/xml"
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
