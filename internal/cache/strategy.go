package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/memo-hub/memo-hub/internal/logging"
)

// Components 聚合磁盘策略的四个可替换部件，测试可以逐个注入替身。
type Components struct {
	Store     Store
	Monitor   QuotaMonitor
	Scheduler SweepScheduler
	Sweeper   SweepExecutor
}

// NewDiskComponents 基于缓存根目录构建生产用部件组合。root 必须已存在，
// 否则在此同步失败，绝不延迟到第一次请求。
func NewDiskComponents(root string, quota int64, frequency time.Duration) (Components, error) {
	store, err := NewStore(root)
	if err != nil {
		return Components{}, err
	}
	return Components{
		Store:     store,
		Monitor:   NewQuotaMonitor(root, quota),
		Scheduler: NewSweepScheduler(root, frequency),
		Sweeper:   NewSweeper(root),
	}, nil
}

// FilesystemStrategy 是每次出站请求的缓存门面：命中直接返回存量正文；
// 未命中回源执行并记忆化；每次请求结束后评估清扫条件。
type FilesystemStrategy struct {
	store     Store
	monitor   QuotaMonitor
	scheduler SweepScheduler
	sweeper   SweepExecutor
	logger    *logrus.Logger

	// sweepMu 保证同一进程内清扫不会并发交叠。
	sweepMu sync.Mutex
}

// NewFilesystemStrategy 校验并组装磁盘策略。任何部件缺失都是装配错误。
func NewFilesystemStrategy(deps Components, logger *logrus.Logger) (*FilesystemStrategy, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Monitor == nil {
		return nil, errors.New("quota monitor is required")
	}
	if deps.Scheduler == nil {
		return nil, errors.New("sweep scheduler is required")
	}
	if deps.Sweeper == nil {
		return nil, errors.New("sweep executor is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &FilesystemStrategy{
		store:     deps.Store,
		monitor:   deps.Monitor,
		scheduler: deps.Scheduler,
		sweeper:   deps.Sweeper,
		logger:    logger,
	}, nil
}

// Fetch 实现 Strategy。缓存故障只会降级为未命中或跳过记忆化，
// 永远不会掩盖一次成功的回源响应。
func (s *FilesystemStrategy) Fetch(ctx context.Context, req Request) (Result, error) {
	key := Key(req.CacheIdentity())

	body, err := s.store.Get(ctx, key)
	if err == nil {
		s.maintain()
		return Result{Body: body, CacheHit: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		// 读失败当作未命中，照常回源。
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_get",
			"key":    key,
		}).Warn("cache_get_failed")
	}

	body, execErr := req.Execute(ctx)
	if execErr != nil {
		s.maintain()
		return Result{}, execErr
	}

	if putErr := s.store.Put(ctx, key, body); putErr != nil {
		s.logger.WithError(putErr).WithFields(logrus.Fields{
			"action": "cache_put",
			"key":    key,
		}).Warn("cache_write_failed")
	}

	s.maintain()
	return Result{Body: body, CacheHit: false}, nil
}

// maintain 在每次请求收尾时评估两个触发条件：时间到期或配额超限，
// 任一为真即执行一次全量清扫。
func (s *FilesystemStrategy) maintain() {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	reason := ""
	switch {
	case s.scheduler.SweepTimeExpired():
		reason = "sweep_time_expired"
	case s.monitor.DiskQuotaExceeded():
		reason = "disk_quota_exceeded"
	default:
		return
	}

	if err := s.sweeper.PerformSweep(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_sweep",
			"reason": reason,
		}).Warn("sweep_failed")
		return
	}

	var usage int64
	if sized, ok := s.monitor.(interface{ Usage() (int64, error) }); ok {
		usage, _ = sized.Usage()
	}
	s.logger.WithFields(logging.SweepFields(reason, usage)).Info("cache_sweep_complete")
}

// PassthroughStrategy 对应 caching_strategy=none：每次都回源，不落盘。
type PassthroughStrategy struct{}

// NewPassthrough 构建透传策略。
func NewPassthrough() PassthroughStrategy {
	return PassthroughStrategy{}
}

// Fetch 实现 Strategy，直接委托给外部请求路径。
func (PassthroughStrategy) Fetch(ctx context.Context, req Request) (Result, error) {
	body, err := req.Execute(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("execute request: %w", err)
	}
	return Result{Body: body, CacheHit: false}, nil
}
