package server

import (
	"testing"

	"github.com/memo-hub/memo-hub/internal/config"
)

func registryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Global.ListenPort = 5100
	cfg.Upstreams = []config.UpstreamConfig{
		{Name: "alpha", Domain: "Alpha.Example.COM", BaseURL: "https://api.alpha.example.com/base", ContentType: "application/xml"},
		{Name: "beta", Domain: "beta.example.com:8443", BaseURL: "https://api.beta.example.com", ContentType: "application/json"},
	}
	return cfg
}

func TestRegistryNormalizesDomainCase(t *testing.T) {
	registry, err := NewRegistry(registryConfig())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	route, ok := registry.Lookup("alpha.example.com")
	if !ok {
		t.Fatalf("大小写不同的 Domain 应归一化后命中")
	}
	if route.Config.Name != "alpha" {
		t.Fatalf("unexpected route: %s", route.Config.Name)
	}
	if route.BaseURL == nil || route.BaseURL.Path != "/base" {
		t.Fatalf("BaseURL 应在注册时解析完成: %+v", route.BaseURL)
	}
}

func TestRegistryLookupIgnoresRequestPort(t *testing.T) {
	registry, err := NewRegistry(registryConfig())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, ok := registry.Lookup("alpha.example.com:5100"); !ok {
		t.Fatalf("Host 携带端口时应忽略端口匹配域名")
	}
	if _, ok := registry.Lookup("beta.example.com"); !ok {
		t.Fatalf("配置里带端口的 Domain 也应按域名命中")
	}
}

func TestRegistryRejectsDuplicateDomains(t *testing.T) {
	cfg := registryConfig()
	cfg.Upstreams = append(cfg.Upstreams, config.UpstreamConfig{
		Name: "gamma", Domain: "ALPHA.example.com", BaseURL: "https://api.gamma.example.com",
	})

	if _, err := NewRegistry(cfg); err == nil {
		t.Fatalf("重复的 Domain 映射应报错")
	}
}

func TestRegistryListPreservesOrder(t *testing.T) {
	registry, err := NewRegistry(registryConfig())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	routes := registry.List()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].Config.Name != "alpha" || routes[1].Config.Name != "beta" {
		t.Fatalf("List 应保持配置顺序: %s, %s", routes[0].Config.Name, routes[1].Config.Name)
	}
	if routes[0].ListenPort != 5100 {
		t.Fatalf("unexpected listen port: %d", routes[0].ListenPort)
	}
}

func TestRegistryLookupUnknownHost(t *testing.T) {
	registry, err := NewRegistry(registryConfig())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, ok := registry.Lookup("unknown.example.com"); ok {
		t.Fatalf("未注册的 Host 不应命中")
	}
	if _, ok := registry.Lookup("  "); ok {
		t.Fatalf("空 Host 不应命中")
	}
}
