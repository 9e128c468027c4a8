package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MarkerScheduler 依据标记文件中的上次清扫时间判断清扫是否到期。
// 只读不写：标记文件由 SweepExecutor 在清扫完成后重写。
type MarkerScheduler struct {
	root      string
	frequency time.Duration
	now       func() time.Time
}

// NewSweepScheduler 构建基于标记文件的调度器，frequency 为最小清扫间隔。
func NewSweepScheduler(root string, frequency time.Duration) *MarkerScheduler {
	return &MarkerScheduler{
		root:      root,
		frequency: frequency,
		now:       time.Now,
	}
}

// SweepTimeExpired 在标记缺失、无法解析或已超过清扫周期时返回 true。
// 缺失视为“清扫到期”，首次清扫完成后标记即被补齐。
func (s *MarkerScheduler) SweepTimeExpired() bool {
	last, ok := s.LastSweep()
	if !ok {
		return true
	}
	return s.now().Sub(last) >= s.frequency
}

// LastSweep 返回标记文件记录的上次清扫时间；标记缺失或损坏时 ok 为 false。
func (s *MarkerScheduler) LastSweep() (time.Time, bool) {
	raw, err := os.ReadFile(filepath.Join(s.root, MarkerFileName))
	if err != nil {
		return time.Time{}, false
	}
	parsed, err := time.Parse(markerTimeLayout, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Frequency 返回配置的清扫周期。
func (s *MarkerScheduler) Frequency() time.Duration {
	return s.frequency
}

// writeMarker 以截断重写的方式记录清扫完成时间。
func writeMarker(root string, at time.Time) error {
	payload := at.Format(markerTimeLayout) + "\n"
	return os.WriteFile(filepath.Join(root, MarkerFileName), []byte(payload), 0o644)
}
