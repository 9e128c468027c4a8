// Package upstream 封装外部 lookup API 客户端：构造规范化的出站请求，
// 并以 cache.Request 的形式交给缓存门面消费。
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// StatusError 表示上游返回了非 200 状态。携带原始正文与状态码，
// 供网关原样透传；此类响应永远不会被记忆化。
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// LookupRequest 代表一次可记忆化的上游查询。它实现 cache.Request：
// CacheIdentity 提供稳定的规范 URL，Execute 负责真正回源。
type LookupRequest struct {
	client *http.Client
	target *url.URL
}

// NewLookupRequest 把入站的 path/query 解析到上游 BaseURL 下，
// 查询参数经 Encode 重排为字典序，保证同一查询得到同一身份串。
func NewLookupRequest(client *http.Client, base *url.URL, reqPath string, query url.Values) *LookupRequest {
	clean := path.Clean("/" + reqPath)
	relative := &url.URL{Path: clean}
	target := base.ResolveReference(relative)
	target.RawQuery = query.Encode()

	return &LookupRequest{
		client: client,
		target: target,
	}
}

// CacheIdentity 返回完整的规范 URL。同一查询的身份串在进程间保持稳定，
// 因而缓存键也稳定。
func (r *LookupRequest) CacheIdentity() string {
	return r.target.String()
}

// Execute 执行 GET 回源并返回完整正文。非 200 状态包装为 StatusError，
// 上层据此透传且跳过记忆化。
func (r *LookupRequest) Execute(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.target.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: body}
	}
	return body, nil
}
