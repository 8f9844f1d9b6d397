package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store 令牌吊销名单，登出后的jti在令牌自然过期前一直保留
type Store struct {
	client *redis.Client
	prefix string
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewStore 创建吊销名单实例
func NewStore(config *Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "adminhub:revoked"
	}

	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping 测试Redis连接
func (s *Store) Ping() error {
	ctx := context.Background()
	return s.client.Ping(ctx).Err()
}

// GetClient 获取底层Redis客户端
func (s *Store) GetClient() *redis.Client {
	return s.client
}

func (s *Store) key(jti string) string {
	return fmt.Sprintf("%s:%s", s.prefix, jti)
}

// Revoke 吊销指定jti，ttl取令牌的剩余有效期
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// 已过期的令牌无需入名单
		return nil
	}
	return s.client.Set(ctx, s.key(jti), 1, ttl).Err()
}

// IsRevoked 检查jti是否已被吊销
// Redis不可用时放行，吊销名单只是尽力而为的增强
func (s *Store) IsRevoked(ctx context.Context, jti string) bool {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
