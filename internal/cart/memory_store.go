package cart

import (
	"context"
	"sync"
)

// MemoryStore 进程内存储，用于测试与单机开发
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Session 获取指定会话的持久化句柄
func (s *MemoryStore) Session(key string) Persistence {
	return &memorySession{store: s, key: key}
}

// Len 已保存的会话数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Delete 删除会话数据
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

type memorySession struct {
	store *MemoryStore
	key   string
}

func (m *memorySession) Load(_ context.Context) ([]byte, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	data, ok := m.store.blobs[m.key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *memorySession) Save(_ context.Context, blob []byte) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.blobs[m.key] = append([]byte(nil), blob...)
	return nil
}
