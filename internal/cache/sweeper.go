package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TotalSweeper 实现全量清扫：不做 LRU、不看单条目年龄，直接清空缓存根
// 并重写时间标记。这是系统唯一的淘汰机制。
type TotalSweeper struct {
	root string
	now  func() time.Time
}

// NewSweeper 构建全量清扫器。
func NewSweeper(root string) *TotalSweeper {
	return &TotalSweeper{root: root, now: time.Now}
}

// PerformSweep 删除缓存根目录下的全部文件与子目录（含旧标记），随后写入
// 新的清扫时间标记。对已清空的目录重复执行是幂等的。
// 清扫不具备事务性：中途失败会留下部分清空的缓存与陈旧标记，由下一次
// 成功的清扫自愈。
func (s *TotalSweeper) PerformSweep() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("read cache root: %w", err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return fmt.Errorf("sweep %s: %w", entry.Name(), err)
		}
	}

	if err := writeMarker(s.root, s.now()); err != nil {
		return fmt.Errorf("write sweep marker: %w", err)
	}
	return nil
}
