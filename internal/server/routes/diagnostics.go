package routes

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/memo-hub/memo-hub/internal/cache"
	"github.com/memo-hub/memo-hub/internal/server"
)

// CacheStatus 汇集磁盘缓存组件的诊断视图。strategy 为 none 时
// Monitor/Scheduler 为 nil，端点只回显策略名。
type CacheStatus struct {
	Strategy  string
	Path      string
	Monitor   *cache.DiskQuotaMonitor
	Scheduler *cache.MarkerScheduler
}

// RegisterCacheRoutes 暴露 /-/cache 诊断接口，供 SRE 查询缓存占用与清扫状态。
func RegisterCacheRoutes(app *fiber.App, status CacheStatus) {
	if app == nil {
		return
	}

	app.Get("/-/cache", func(c fiber.Ctx) error {
		return c.JSON(encodeCacheStatus(status))
	})
}

// RegisterUpstreamRoutes 暴露 /-/upstreams 诊断接口，列出 Host 与上游的绑定关系。
func RegisterUpstreamRoutes(app *fiber.App, registry *server.Registry) {
	if app == nil || registry == nil {
		return
	}

	app.Get("/-/upstreams", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"upstreams": encodeUpstreams(registry.List()),
		})
	})
}

type cacheStatusPayload struct {
	Strategy           string `json:"strategy"`
	Path               string `json:"path,omitempty"`
	UsageBytes         int64  `json:"usage_bytes"`
	QuotaBytes         int64  `json:"quota_bytes,omitempty"`
	QuotaExceeded      bool   `json:"quota_exceeded"`
	LastSweep          string `json:"last_sweep,omitempty"`
	SweepDue           bool   `json:"sweep_due"`
	SweepFrequencySecs int64  `json:"sweep_frequency_seconds,omitempty"`
}

type upstreamPayload struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	BaseURL     string `json:"base_url"`
	ContentType string `json:"content_type"`
	Port        int    `json:"port"`
}

func encodeCacheStatus(status CacheStatus) cacheStatusPayload {
	payload := cacheStatusPayload{
		Strategy: status.Strategy,
		Path:     status.Path,
	}

	if status.Monitor != nil {
		if usage, err := status.Monitor.Usage(); err == nil {
			payload.UsageBytes = usage
		}
		payload.QuotaBytes = status.Monitor.Quota()
		payload.QuotaExceeded = status.Monitor.DiskQuotaExceeded()
	}

	if status.Scheduler != nil {
		if last, ok := status.Scheduler.LastSweep(); ok {
			payload.LastSweep = last.Format(time.RFC3339Nano)
		}
		payload.SweepDue = status.Scheduler.SweepTimeExpired()
		payload.SweepFrequencySecs = int64(status.Scheduler.Frequency() / time.Second)
	}

	return payload
}

func encodeUpstreams(routes []server.UpstreamRoute) []upstreamPayload {
	if len(routes) == 0 {
		return nil
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Config.Name < routes[j].Config.Name
	})
	result := make([]upstreamPayload, 0, len(routes))
	for _, route := range routes {
		result = append(result, upstreamPayload{
			Name:        route.Config.Name,
			Domain:      route.Config.Domain,
			BaseURL:     route.Config.BaseURL,
			ContentType: route.Config.ContentType,
			Port:        route.ListenPort,
		})
	}
	return result
}
