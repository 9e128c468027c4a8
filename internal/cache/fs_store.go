package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// NewStore 以 root 为根目录构建磁盘存储。root 必须已经存在且是目录：
// 缓存层不负责创建缓存根，缺失属于配置错误而非运行时可修复状态。
func NewStore(root string) (Store, error) {
	if root == "" {
		return nil, errors.New("cache path required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cache path unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cache path is not a directory: %s", abs)
	}

	return &fileStore{
		root:  abs,
		locks: make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 避免同一键并发写入，同时复用 root 绝对路径。
type fileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	filePath, err := s.entryPath(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (s *fileStore) Put(ctx context.Context, key string, body []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	unlock, err := s.lockEntry(key)
	if err != nil {
		return err
	}
	defer unlock()

	shardDir, filePath, err := s.shard(key)
	if err != nil {
		return err
	}

	// 分片目录按需创建，已存在不算错误。
	if err := os.MkdirAll(shardDir, 0o755); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(shardDir, ".entry-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}

func (s *fileStore) lockEntry(key string) (func(), error) {
	if !validKey(key) {
		return nil, fmt.Errorf("invalid cache key: %q", key)
	}

	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}, nil
}

func (s *fileStore) shard(key string) (dir, file string, err error) {
	if !validKey(key) {
		return "", "", fmt.Errorf("invalid cache key: %q", key)
	}
	dir, file = ShardPath(s.root, key)
	return dir, file, nil
}

func (s *fileStore) entryPath(key string) (string, error) {
	_, file, err := s.shard(key)
	return file, err
}
