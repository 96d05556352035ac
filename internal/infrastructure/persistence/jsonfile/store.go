package jsonfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/internal/infrastructure/persistence/codec"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

// Store 基于单个JSON文件的用户集合存储
// 设计说明：
// 1. 整个集合存在一个文件里，每次写入整体替换
// 2. 写入走 临时文件 → fsync → rename，读者只会看到完整的旧值或新值
// 3. mu保护 读取→修改→保存 临界区；同一文件只能由一个进程写
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore 创建文件存储，path在进程生命周期内固定
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path 数据文件路径
func (s *Store) Path() string {
	return s.path
}

// Load 读取整个集合，文件不存在时返回空集合
func (s *Store) Load(ctx context.Context) ([]*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// Save 整体替换集合
func (s *Store) Save(ctx context.Context, users []*user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(users)
}

// Initialize 文件不存在时写入初始数据
func (s *Store) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return apperrors.Storage(err, "检查数据文件失败")
	}
	return s.save(user.SeedUsers())
}

// Mutate 在写锁内执行 读取 → fn → 保存
func (s *Store) Mutate(ctx context.Context, fn user.MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	next, err := fn(users)
	if err != nil {
		return err
	}
	return s.save(next)
}

func (s *Store) load() ([]*user.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*user.User{}, nil
		}
		return nil, apperrors.Storage(err, "读取数据文件失败")
	}
	users, err := codec.Unmarshal(data)
	if err != nil {
		return nil, apperrors.Storage(err, "数据文件格式错误")
	}
	return users, nil
}

func (s *Store) save(users []*user.User) error {
	data, err := codec.Marshal(users)
	if err != nil {
		return apperrors.Storage(err, "保存数据失败")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Storage(err, "创建数据目录失败")
	}

	f, err := renameio.NewPendingFile(s.path,
		renameio.WithTempDir(filepath.Dir(s.path)),
		renameio.WithPermissions(0o644),
	)
	if err != nil {
		return apperrors.Storage(err, "创建临时文件失败")
	}
	// 替换成功后Cleanup不做任何事；之前出错则删除临时文件，目标文件不受影响
	defer func() { _ = f.Cleanup() }()

	if _, err := f.Write(data); err != nil {
		return apperrors.Storage(err, "写入数据文件失败")
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return apperrors.Storage(err, "写入数据文件失败")
	}
	return nil
}
