package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// writeCachingConfig 生成启用 filesystem 策略的配置，cacheDir 会被注入 CachePath。
func writeCachingConfig(t *testing.T, cacheDir, extra string) string {
	t.Helper()
	content := `
LogLevel = "info"
CachingStrategy = "filesystem"

[CachingOptions]
CachePath = "` + cacheDir + `"
` + extra + `

[[Upstream]]
Name = "catalog"
Domain = "catalog.local"
BaseURL = "https://api.example.com/onca/xml"
`
	return writeTempConfig(t, content)
}
