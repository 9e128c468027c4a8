package cache

import (
	"context"
	"errors"
	"time"
)

// Store 负责管理磁盘缓存正文的读写。磁盘布局遵循：
//
//	<CachePath>/<key[0:3]>/<key>    # 原始正文，无任何元数据信封
//
// 条目仅由正文文件组成，存在与否完全由文件系统表达。
type Store interface {
	// Get 返回键对应的缓存正文。若不存在则返回 ErrNotFound，未命中不是错误。
	Get(ctx context.Context, key string) ([]byte, error)

	// Put 将正文写入分片路径，分片目录按需创建，重复写入覆盖旧值。
	// 实现需通过临时文件 + rename 保证单进程内写入原子性。
	Put(ctx context.Context, key string, body []byte) error
}

// QuotaMonitor 判断缓存根目录是否超出磁盘配额。实现不得有副作用。
type QuotaMonitor interface {
	DiskQuotaExceeded() bool
}

// SweepScheduler 根据标记文件判断距上次清扫是否已超过清扫周期。纯读取。
type SweepScheduler interface {
	SweepTimeExpired() bool
}

// SweepExecutor 执行全量清扫：删除缓存根目录下所有内容并重写时间标记。
// 对空目录执行必须幂等。
type SweepExecutor interface {
	PerformSweep() error
}

// Request 是外部 API 客户端暴露给缓存层的最小协作接口：
// 一个稳定的规范身份串（用于派生键），以及执行请求取回正文的能力。
// 缓存层不解释正文结构。
type Request interface {
	CacheIdentity() string
	Execute(ctx context.Context) ([]byte, error)
}

// Result 组合正文与命中标记，便于上层输出 cache_hit 日志字段。
type Result struct {
	Body     []byte
	CacheHit bool
}

// Strategy 是每次出站请求的统一入口：命中直接返回，未命中回源并记忆化。
type Strategy interface {
	Fetch(ctx context.Context, req Request) (Result, error)
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")

// MarkerFileName 是清扫时间标记文件名，位于缓存根目录，与历史磁盘布局兼容。
const MarkerFileName = ".amz_timestamp"

// markerTimeLayout 是标记文件中时间的文本编码。
const markerTimeLayout = time.RFC3339Nano
