package server

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/memo-hub/memo-hub/internal/config"
)

// UpstreamRoute 将上游配置与派生属性（解析后的 BaseURL、监听端口）聚合在
// 一起，供路由/代理层直接复用，避免重复解析配置。
type UpstreamRoute struct {
	// Config 是用户在 config.toml 中声明的上游字段副本，避免外部修改。
	Config config.UpstreamConfig
	// ListenPort 记录当前监听端口，方便日志输出。
	ListenPort int
	// BaseURL 在构造 Registry 时提前解析完成，便于后续请求快速复用。
	BaseURL *url.URL
}

// Registry 提供 Host/Host:port 到 UpstreamRoute 的查询能力。
type Registry struct {
	routes  map[string]*UpstreamRoute
	ordered []*UpstreamRoute
}

// NewRegistry 根据配置构建 Host 映射。调用方应在启动阶段创建一次并复用。
func NewRegistry(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	registry := &Registry{
		routes: make(map[string]*UpstreamRoute, len(cfg.Upstreams)),
	}

	for _, up := range cfg.Upstreams {
		normalizedHost := normalizeDomain(up.Domain)
		if normalizedHost == "" {
			return nil, fmt.Errorf("invalid domain for upstream %s", up.Name)
		}
		if _, exists := registry.routes[normalizedHost]; exists {
			return nil, fmt.Errorf("duplicate domain mapping detected for %s", normalizedHost)
		}

		baseURL, err := url.Parse(up.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url for upstream %s: %w", up.Name, err)
		}

		route := &UpstreamRoute{
			Config:     up,
			ListenPort: cfg.Global.ListenPort,
			BaseURL:    baseURL,
		}
		registry.routes[normalizedHost] = route
		registry.ordered = append(registry.ordered, route)
	}

	return registry, nil
}

// Lookup 根据 Host 或 Host:port 查找 UpstreamRoute。
func (r *Registry) Lookup(host string) (*UpstreamRoute, bool) {
	if r == nil {
		return nil, false
	}

	normalizedHost, _ := normalizeHost(host)
	if normalizedHost == "" {
		return nil, false
	}

	route, ok := r.routes[normalizedHost]
	return route, ok
}

// List 返回当前注册的 UpstreamRoute 列表（按配置定义的顺序），用于诊断输出。
func (r *Registry) List() []UpstreamRoute {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}

	result := make([]UpstreamRoute, len(r.ordered))
	for i, route := range r.ordered {
		result[i] = *route
	}
	return result
}

func normalizeDomain(domain string) string {
	host, _ := normalizeHost(domain)
	return host
}

func normalizeHost(raw string) (string, int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0
	}

	host := raw
	port := 0

	if strings.Contains(raw, ":") {
		if h, p, err := net.SplitHostPort(raw); err == nil {
			host = h
			if parsedPort, err := strconv.Atoi(p); err == nil {
				port = parsedPort
			}
		} else if idx := strings.LastIndex(raw, ":"); idx > -1 && strings.Count(raw[idx+1:], ":") == 0 {
			if parsedPort, err := strconv.Atoi(raw[idx+1:]); err == nil {
				host = raw[:idx]
				port = parsedPort
			}
		}
	}

	host = strings.TrimSuffix(host, ".")
	host = strings.ToLower(host)
	return host, port
}
