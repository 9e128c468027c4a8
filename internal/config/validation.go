package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

const supportedStrategyList = "none|filesystem"

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}

	switch g.CachingStrategy {
	case StrategyNone:
		// 透传模式不读取 CachingOptions。
	case StrategyFilesystem:
		if err := validateCachingOptions(g.CachingOptions); err != nil {
			return err
		}
	default:
		return newFieldError("Global.CachingStrategy", "仅支持 "+supportedStrategyList)
	}

	if len(c.Upstreams) == 0 {
		return errors.New("至少需要配置一个 Upstream")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Upstreams {
		up := &c.Upstreams[i]
		if up.Name == "" {
			return newFieldError("Upstream[].Name", "不能为空")
		}
		if _, exists := seenNames[up.Name]; exists {
			return newFieldError(upstreamField(up.Name, "Name"), "重复")
		}
		seenNames[up.Name] = struct{}{}

		if err := validateDomain(up.Domain); err != nil {
			return fmt.Errorf("%s: %w", upstreamField(up.Name, "Domain"), err)
		}
		if err := validateBaseURL(up.BaseURL); err != nil {
			return fmt.Errorf("%s: %w", upstreamField(up.Name, "BaseURL"), err)
		}
	}

	return nil
}

// validateCachingOptions 校验磁盘缓存参数。CachePath 缺失或不存在都是
// 配置错误，绝不静默降级为透传。
func validateCachingOptions(opts CachingOptions) error {
	path := strings.TrimSpace(opts.CachePath)
	if path == "" {
		return newFieldError("CachingOptions.CachePath", "不能为空")
	}

	info, err := os.Stat(path)
	if err != nil {
		return newFieldError("CachingOptions.CachePath", fmt.Sprintf("目录不存在: %s", path))
	}
	if !info.IsDir() {
		return newFieldError("CachingOptions.CachePath", fmt.Sprintf("不是目录: %s", path))
	}

	if opts.DiskQuota <= 0 {
		return newFieldError("CachingOptions.DiskQuota", "必须大于 0")
	}
	if opts.SweepFrequency.DurationValue() <= 0 {
		return newFieldError("CachingOptions.SweepFrequency", "必须大于 0")
	}
	return nil
}

func validateDomain(domain string) error {
	if domain == "" {
		return errors.New("Domain 不能为空")
	}
	if strings.Contains(domain, "/") {
		return errors.New("Domain 不允许包含路径")
	}
	if strings.Contains(domain, " ") {
		return errors.New("Domain 不允许包含空格")
	}
	if strings.HasPrefix(domain, "http") {
		return errors.New("Domain 不应包含协议头")
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("缺少上游地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，上游: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("上游缺少 Host: %s", raw)
	}
	return nil
}
