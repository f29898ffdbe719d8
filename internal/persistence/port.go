package persistence

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot 存储端口里还没有任何快照
var ErrNoSnapshot = errors.New("快照不存在")

// Port 快照存储端口
// 布局快照是一个不透明字节串，端口只管存取，不理解内容
type Port interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// MemoryPort 进程内存储，测试与 storage.backend=memory 使用
type MemoryPort struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryPort() *MemoryPort { return &MemoryPort{} }

func (p *MemoryPort) Save(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *MemoryPort) Load(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), p.data...), nil
}

func (p *MemoryPort) Close() error { return nil }
