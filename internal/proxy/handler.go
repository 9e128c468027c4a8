// Package proxy 实现记忆化查询的入站处理：把 Fiber 请求转换为规范化的
// 上游查询，交给缓存策略执行，并负责响应头与结构化日志。
package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/memo-hub/memo-hub/internal/cache"
	"github.com/memo-hub/memo-hub/internal/logging"
	"github.com/memo-hub/memo-hub/internal/server"
	"github.com/memo-hub/memo-hub/internal/upstream"
)

// Handler 负责 orchestrate “缓存查找 → 回源 → 写缓存” 的全流程，
// 对外暴露 Fiber handler，内部复用共享 http.Client 与缓存策略。
type Handler struct {
	client   *http.Client
	logger   *logrus.Logger
	strategy cache.Strategy
}

// NewHandler constructs a lookup handler with shared HTTP client/logger/strategy.
func NewHandler(client *http.Client, logger *logrus.Logger, strategy cache.Strategy) *Handler {
	return &Handler{
		client:   client,
		logger:   logger,
		strategy: strategy,
	}
}

// Handle 执行缓存查找与回源，任何阶段出错都会输出结构化日志。
// 只有 GET 请求可以被记忆化，其余方法直接拒绝。
func (h *Handler) Handle(c fiber.Ctx, route *server.UpstreamRoute) error {
	started := time.Now()
	requestID := server.RequestID(c)

	if c.Method() != http.MethodGet {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "method_not_allowed",
		})
	}

	query := parseQuery(c.Request().URI().QueryString())
	req := upstream.NewLookupRequest(h.client, route.BaseURL, requestPath(c), query)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := h.strategy.Fetch(ctx, req)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			// 非 200 回源响应原样透传，不写缓存。
			setLookupHeaders(c, req, false, requestID)
			h.logResult(route, req, requestID, statusErr.Code, false, started, nil)
			return c.Status(statusErr.Code).Send(statusErr.Body)
		}
		h.logResult(route, req, requestID, 0, false, started, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "upstream_failed",
		})
	}

	setLookupHeaders(c, req, result.CacheHit, requestID)
	if route.Config.ContentType != "" {
		c.Set("Content-Type", route.Config.ContentType)
	}
	h.logResult(route, req, requestID, fiber.StatusOK, result.CacheHit, started, nil)
	return c.Status(fiber.StatusOK).Send(result.Body)
}

func setLookupHeaders(c fiber.Ctx, req *upstream.LookupRequest, cacheHit bool, requestID string) {
	c.Set("X-Memo-Hub-Upstream", req.CacheIdentity())
	if cacheHit {
		c.Set("X-Memo-Hub-Cache-Hit", "true")
	} else {
		c.Set("X-Memo-Hub-Cache-Hit", "false")
	}
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
}

func (h *Handler) logResult(
	route *server.UpstreamRoute,
	req *upstream.LookupRequest,
	requestID string,
	status int,
	cacheHit bool,
	started time.Time,
	err error,
) {
	identity := req.CacheIdentity()
	fields := logging.LookupFields(route.Config.Name, route.Config.Domain, cache.Key(identity), cacheHit)
	fields["action"] = "lookup"
	fields["upstream"] = identity
	fields["upstream_status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if err != nil {
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("lookup_failed")
		return
	}
	h.logger.WithFields(fields).Info("lookup_complete")
}

func parseQuery(raw []byte) url.Values {
	if len(raw) == 0 {
		return url.Values{}
	}
	// ParseQuery 对坏键值对返回已解析的部分，直接使用。
	values, _ := url.ParseQuery(string(raw))
	return values
}

func requestPath(c fiber.Ctx) string {
	uri := c.Request().URI()
	if uri == nil {
		return "/"
	}
	raw := string(uri.Path())
	if raw == "" {
		return "/"
	}
	return path.Clean("/" + raw)
}
