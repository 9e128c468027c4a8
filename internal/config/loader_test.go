package config

import "testing"

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
CachingStrategy = "none"
UpstreamTimeout = "boom"

[[Upstream]]
Name = "catalog"
Domain = "catalog.local"
BaseURL = "https://api.example.com/onca/xml"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadRejectsFileLikeCachePath(t *testing.T) {
	cfg := `
CachingStrategy = "filesystem"

[CachingOptions]
CachePath = "` + writeTempConfig(t, "placeholder = true") + `"

[[Upstream]]
Name = "catalog"
Domain = "catalog.local"
BaseURL = "https://api.example.com/onca/xml"
`
	if _, err := Load(writeTempConfig(t, cfg)); err == nil {
		t.Fatalf("CachePath 指向普通文件时应失败")
	}
}
