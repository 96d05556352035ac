package redis

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/internal/infrastructure/persistence/codec"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

// ErrTooManyConflicts 乐观锁重试次数用尽
var ErrTooManyConflicts = errors.New("用户集合并发修改冲突次数过多")

// Store 基于Redis单个键的用户集合存储
// 设计说明：
// 1. 整个集合序列化为JSON存在一个键里，SET天然是整体替换
// 2. Mutate用 WATCH + MULTI/EXEC 做乐观锁，多实例共享同一个键也不会丢更新
// 3. mu让同一进程内的Mutate排队，减少无谓的EXEC冲突
type Store struct {
	client     *redis.Client
	key        string
	maxRetries int
	mu         sync.Mutex
	marshal    func([]*user.User) ([]byte, error)
}

// NewStore 创建Redis存储
func NewStore(client *redis.Client, key string, maxRetries int) *Store {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Store{client: client, key: key, maxRetries: maxRetries, marshal: codec.Marshal}
}

// Load 读取整个集合，键不存在时返回空集合
func (s *Store) Load(ctx context.Context) ([]*user.User, error) {
	return s.load(ctx, s.client)
}

// Save 整体替换集合
func (s *Store) Save(ctx context.Context, users []*user.User) error {
	data, err := s.marshal(users)
	if err != nil {
		return apperrors.Storage(err, "保存数据失败")
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.Redis(err, "写入Redis失败")
	}
	return nil
}

// Initialize 键不存在时写入初始数据（SETNX，多实例同时启动也只写一次）
func (s *Store) Initialize(ctx context.Context) error {
	data, err := s.marshal(user.SeedUsers())
	if err != nil {
		return apperrors.Storage(err, "保存数据失败")
	}
	created, err := s.client.SetNX(ctx, s.key, data, 0).Result()
	if err != nil {
		return apperrors.Redis(err, "写入Redis失败")
	}
	if created {
		zap.L().Info("已写入初始用户数据", zap.String("key", s.key))
	}
	return nil
}

// Mutate WATCH键 → 读取 → fn → MULTI/EXEC写回
// EXEC因键被其他客户端修改而失败时重新读取重试，最多maxRetries次
func (s *Store) Mutate(ctx context.Context, fn user.MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// fn、读取和序列化的错误原样返回，不参与重试
	var abort error
	txf := func(tx *redis.Tx) error {
		users, err := s.load(ctx, tx)
		if err != nil {
			abort = err
			return err
		}
		next, err := fn(users)
		if err != nil {
			abort = err
			return err
		}
		data, err := s.marshal(next)
		if err != nil {
			abort = apperrors.Storage(err, "保存数据失败")
			return abort
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if abort != nil {
			return abort
		}
		if errors.Is(err, redis.TxFailedErr) {
			zap.L().Debug("用户集合写冲突，重试", zap.Int("attempt", i+1))
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperrors.Redis(err, "写入Redis失败")
	}
	return apperrors.Redis(ErrTooManyConflicts, "写入Redis失败")
}

func (s *Store) load(ctx context.Context, c redis.Cmdable) ([]*user.User, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*user.User{}, nil
		}
		return nil, apperrors.Redis(err, "读取Redis失败")
	}
	users, err := codec.Unmarshal(data)
	if err != nil {
		return nil, apperrors.Storage(err, "数据格式错误")
	}
	return users, nil
}
