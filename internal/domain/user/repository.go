package user

import (
	"context"
)

// MutateFunc 在存储的写锁内对整个集合做修改
// 返回新的完整集合；返回error时不会保存任何内容
type MutateFunc func(users []*User) ([]*User, error)

// Repository 用户集合存储接口（Store）
// DDD设计说明：
// 1. 接口定义在domain层，具体实现在infrastructure/persistence下
// 2. 只提供整体读写，不提供单条记录的增删改
// 3. 所有写操作都是整体替换，失败时旧数据保持不变
type Repository interface {
	// Load 按存储顺序返回整个集合
	// 没有数据时返回空集合，不是错误
	Load(ctx context.Context) ([]*User, error)

	// Save 整体替换集合
	// 写入失败返回apperrors.ErrCodeStorageError，不重试
	Save(ctx context.Context, users []*User) error

	// Initialize 没有数据时写入SeedUsers，幂等
	Initialize(ctx context.Context) error

	// Mutate 在同一个临界区内执行 读取 → fn → 保存
	// 并发的Mutate串行执行，不会丢失写入
	Mutate(ctx context.Context, fn MutateFunc) error
}
