package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
)

// shardPrefixLen 控制分片目录名长度，40 位 sha1 取前 3 位即可把单目录
// 文件数压到可控范围。
const shardPrefixLen = 3

// Key 根据请求的规范身份串派生内容地址，结果为 40 位小写十六进制。
// 纯函数：同一身份永远得到同一个键。
func Key(identity string) string {
	sum := sha1.Sum([]byte(identity))
	return hex.EncodeToString(sum[:])
}

// ShardPath 把内容地址映射为两级磁盘路径：分片目录 + 完整键名文件。
// 键由 Key 派生、经 validKey 校验，不可能逃逸出 root。
func ShardPath(root, key string) (dir, file string) {
	dir = filepath.Join(root, key[:shardPrefixLen])
	file = filepath.Join(dir, key)
	return dir, file
}

// validKey 校验键确实是 sha1 hex，store 以此拒绝任何手工拼出的路径片段。
func validKey(key string) bool {
	if len(key) != sha1.Size*2 {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
