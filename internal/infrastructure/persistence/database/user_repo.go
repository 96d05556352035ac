package database

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/usercenter/internal/domain/user"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

const metaInitialized = "initialized"

// Store 基于GORM的用户集合存储
// 设计说明：
// 1. 实现domain/user.Repository，整个集合一次性读写
// 2. Save = 事务内 删除全部旧行 + 按顺序插入新行，失败整体回滚
// 3. mu串行化本进程内的Mutate；数据库唯一索引兜底
type Store struct {
	db        *gorm.DB
	txManager *TxManager
	mu        sync.RWMutex
}

// NewStore 创建数据库存储
func NewStore(db *gorm.DB, txManager *TxManager) *Store {
	return &Store{db: db, txManager: txManager}
}

// Load 按Position顺序返回整个集合
func (s *Store) Load(ctx context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(getDB(ctx, s.db))
}

// Save 事务内整体替换
func (s *Store) Save(ctx context.Context, users []*user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		return s.replaceAll(getDB(ctx, s.db), users)
	})
}

// Initialize 从未初始化过时写入初始数据
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, s.db)
		var count int64
		if err := db.Model(&MetaModel{}).Where("`key` = ?", metaInitialized).Count(&count).Error; err != nil {
			return apperrors.Storage(err, "检查初始化状态失败")
		}
		if count > 0 {
			return nil
		}
		return s.replaceAll(db, user.SeedUsers())
	})
}

// Mutate 在同一事务内 读取 → fn → 替换
func (s *Store) Mutate(ctx context.Context, fn user.MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, s.db)
		users, err := s.load(db)
		if err != nil {
			return err
		}
		next, err := fn(users)
		if err != nil {
			return err
		}
		return s.replaceAll(db, next)
	})
}

func (s *Store) load(db *gorm.DB) ([]*user.User, error) {
	var models []UserModel
	if err := db.Order("position ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Storage(err, "读取用户集合失败")
	}
	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toEntity(&models[i])
	}
	return users, nil
}

// replaceAll 必须在事务内调用
func (s *Store) replaceAll(db *gorm.DB, users []*user.User) error {
	if err := db.Where("1 = 1").Delete(&UserModel{}).Error; err != nil {
		return apperrors.Storage(err, "清空用户集合失败")
	}

	if len(users) > 0 {
		models := make([]UserModel, len(users))
		for i, u := range users {
			models[i] = toModel(i+1, u)
		}
		if err := db.CreateInBatches(models, 200).Error; err != nil {
			return duplicateOrStorage(err)
		}
	}

	meta := MetaModel{Key: metaInitialized, Value: "1"}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error; err != nil {
		return apperrors.Storage(err, "写入初始化标记失败")
	}
	return nil
}

// =========================================
// 辅助函数：模型转换
// =========================================

func toEntity(m *UserModel) *user.User {
	return &user.User{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}
}

func toModel(position int, u *user.User) UserModel {
	return UserModel{
		Position: position,
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		EmailKey: strings.ToLower(u.Email),
		Role:     u.Role,
	}
}

// duplicateOrStorage 按冲突的唯一索引区分邮箱重复和用户ID重复
// MySQL报索引名idx_users_email_key，SQLite报列名users.email_key，两者都包含email_key
func duplicateOrStorage(err error) error {
	if !isDuplicateError(err) {
		return apperrors.Storage(err, "写入用户集合失败")
	}
	if strings.Contains(err.Error(), "email_key") {
		return apperrors.ErrEmailDuplicate
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeDuplicateEntry,
		Message: "用户ID重复",
		Err:     err,
	}
}

// isDuplicateError 判断是否为唯一索引冲突
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
