package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// LookupFields 提供上游/缓存命中状态字段，供请求日志复用。
func LookupFields(upstream, domain, key string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"upstream":  upstream,
		"domain":    domain,
		"key":       key,
		"cache_hit": cacheHit,
	}
}

// SweepFields 描述一次缓存清扫的触发原因，便于区分配额与时间触发。
func SweepFields(reason string, usageBytes int64) logrus.Fields {
	return logrus.Fields{
		"action":      "cache_sweep",
		"reason":      reason,
		"usage_bytes": usageBytes,
	}
}
