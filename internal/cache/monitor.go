package cache

import (
	"io/fs"
	"path/filepath"
)

// DiskQuotaMonitor 递归统计缓存根目录的字节占用并与配额比较。
// 标记文件同样计入占用。无副作用，可在每次请求后安全调用。
type DiskQuotaMonitor struct {
	root  string
	quota int64
}

// NewQuotaMonitor 构建配额监视器，quota 单位为字节。
func NewQuotaMonitor(root string, quota int64) *DiskQuotaMonitor {
	return &DiskQuotaMonitor{root: root, quota: quota}
}

// DiskQuotaExceeded 报告当前占用是否超过配额。统计失败时按未超额处理，
// 让下一次成功的检查兜底，绝不因此中断调用方请求。
func (m *DiskQuotaMonitor) DiskQuotaExceeded() bool {
	usage, err := m.Usage()
	if err != nil {
		return false
	}
	return usage > m.quota
}

// Usage 返回缓存根目录下所有普通文件的字节总数，供诊断端展示。
func (m *DiskQuotaMonitor) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Quota 返回配置的配额字节数。
func (m *DiskQuotaMonitor) Quota() int64 {
	return m.quota
}
