package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

// memRepo 内存Repository，行为与文件存储一致：保存的是副本
type memRepo struct {
	mu      sync.RWMutex
	users   []*User
	saveErr error
	saves   int
}

func newMemRepo(users ...*User) *memRepo {
	return &memRepo{users: CloneAll(users)}
}

func (r *memRepo) Load(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CloneAll(r.users), nil
}

func (r *memRepo) Save(ctx context.Context, users []*User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(users)
}

func (r *memRepo) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		return r.save(SeedUsers())
	}
	return nil
}

func (r *memRepo) Mutate(ctx context.Context, fn MutateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(CloneAll(r.users))
	if err != nil {
		return err
	}
	return r.save(next)
}

func (r *memRepo) save(users []*User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.users = CloneAll(users)
	return nil
}

func (r *memRepo) snapshot() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CloneAll(r.users)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(SeedUsers()...))

	t.Run("第二页", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()[:3]...))
		page, err := svc.List(ctx, ListParams{Page: 2, Limit: 2, SortBy: SortByID})
		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Pages)
	})

	t.Run("搜索后排序", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{Search: "ADMIN", Page: 1, Limit: 10, SortBy: SortByID})
		require.NoError(t, err)
		assert.Empty(t, page.Data, "角色不参与搜索")

		page, err = svc.List(ctx, ListParams{Search: "son", Page: 1, Limit: 10, SortBy: SortByName, Order: "desc"})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 1}, ids(page.Data))
	})

	t.Run("page或limit小于1", func(t *testing.T) {
		_, err := svc.List(ctx, ListParams{Page: 0, Limit: 0})
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
		assert.Len(t, appErr.Details, 2)
	})

	t.Run("重复查询结果相同", func(t *testing.T) {
		params := ListParams{Search: "e", Page: 1, Limit: 3, SortBy: SortByEmail}
		first, err := svc.List(ctx, params)
		require.NoError(t, err)
		second, err := svc.List(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("返回副本", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{Page: 1, Limit: 1, SortBy: SortByID})
		require.NoError(t, err)
		page.Data[0].Name = "changed"

		u, _, err := svc.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice Johnson", u.Name)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(SeedUsers()...))

	u, found, err := svc.GetByID(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Carol Davis", u.Name)

	_, found, err = svc.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.False(t, found, "不存在不是错误")

	u, found, err = svc.GetByEmail(ctx, "BOB@example.COM")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, u.ID)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("空集合创建ID为1", func(t *testing.T) {
		svc := NewService(newMemRepo())
		u, err := svc.Create(ctx, "X", "x@a.com", "User")
		require.NoError(t, err)
		assert.Equal(t, &User{ID: 1, Name: "X", Email: "x@a.com", Role: "User"}, u)

		got, found, err := svc.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, u, got)
	})

	t.Run("邮箱大小写不同也冲突", func(t *testing.T) {
		repo := newMemRepo(&User{ID: 1, Name: "A", Email: "a@x.com", Role: "User"})
		svc := NewService(repo)

		_, err := svc.Create(ctx, "B", "A@X.com", "User")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmailDuplicate))
		assert.Len(t, repo.snapshot(), 1)
		assert.Equal(t, 0, repo.saves)
	})

	t.Run("返回全部校验错误且不写入", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		_, err := svc.Create(ctx, "", "bad", "")
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
		assert.Equal(t, []string{"姓名必填且必须是字符串", "角色必填且必须是字符串", "邮箱格式不正确"}, appErr.Details)
		assert.Equal(t, 0, repo.saves)
	})

	t.Run("顺序创建ID为1到N", func(t *testing.T) {
		svc := NewService(newMemRepo())
		for i := 1; i <= 10; i++ {
			u, err := svc.Create(ctx, "N", fmt.Sprintf("u%d@x.com", i), "User")
			require.NoError(t, err)
			assert.Equal(t, i, u.ID)
		}
	})

	t.Run("删除最大ID后复用", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		require.NoError(t, svc.Delete(ctx, 5))
		u, err := svc.Create(ctx, "N", "n@x.com", "User")
		require.NoError(t, err)
		assert.Equal(t, 5, u.ID)

		require.NoError(t, svc.Delete(ctx, 2))
		u, err = svc.Create(ctx, "M", "m@x.com", "User")
		require.NoError(t, err)
		assert.Equal(t, 6, u.ID, "中间的空洞不回收")
	})

	t.Run("保存失败时状态不变", func(t *testing.T) {
		repo := newMemRepo(SeedUsers()...)
		ioErr := apperrors.Storage(errors.New("disk full"), "写入数据文件失败")
		repo.saveErr = ioErr
		svc := NewService(repo)

		_, err := svc.Create(ctx, "N", "n@x.com", "User")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStorageError))
		assert.Equal(t, SeedUsers(), repo.snapshot())
	})
}

func TestService_CreateConcurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("不同邮箱全部成功且ID不重复", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := svc.Create(ctx, "N", fmt.Sprintf("c%d@x.com", i), "User")
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		users := repo.snapshot()
		require.Len(t, users, 50)
		seen := map[int]bool{}
		for _, u := range users {
			seen[u.ID] = true
		}
		for id := 1; id <= 50; id++ {
			assert.True(t, seen[id], "缺少ID %d", id)
		}
	})

	t.Run("相同邮箱只有一个成功", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		var ok, conflict int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Create(ctx, "N", "same@x.com", "User")
				switch {
				case err == nil:
					atomic.AddInt32(&ok, 1)
				case apperrors.HasCode(err, apperrors.ErrCodeEmailDuplicate):
					atomic.AddInt32(&conflict, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok)
		assert.Equal(t, int32(19), conflict)
		assert.Len(t, repo.snapshot(), 1)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("保持自己的邮箱", func(t *testing.T) {
		svc := NewService(newMemRepo(&User{ID: 1, Name: "A", Email: "a@x.com", Role: "User"}))
		u, err := svc.Update(ctx, 1, Patch{Email: strPtr("a@x.com")})
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", u.Email)
	})

	t.Run("只改大小写也允许", func(t *testing.T) {
		svc := NewService(newMemRepo(&User{ID: 1, Name: "A", Email: "a@x.com", Role: "User"}))
		u, err := svc.Update(ctx, 1, Patch{Email: strPtr("A@X.com")})
		require.NoError(t, err)
		assert.Equal(t, "A@X.com", u.Email)
	})

	t.Run("只修改提供的字段", func(t *testing.T) {
		repo := newMemRepo(SeedUsers()...)
		svc := NewService(repo)
		u, err := svc.Update(ctx, 2, Patch{Role: strPtr("Manager")})
		require.NoError(t, err)
		assert.Equal(t, &User{ID: 2, Name: "Bob Smith", Email: "bob@example.com", Role: "Manager"}, u)
		assert.Equal(t, u, repo.snapshot()[1], "位置不变")
	})

	t.Run("邮箱被其他记录占用", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		_, err := svc.Update(ctx, 2, Patch{Email: strPtr("ALICE@example.com")})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmailDuplicate))
	})

	t.Run("校验合并后的记录", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		_, err := svc.Update(ctx, 1, Patch{Name: strPtr(""), Email: strPtr("nope")})
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
		assert.Equal(t, []string{"姓名必填且必须是字符串", "邮箱格式不正确"}, appErr.Details)
	})

	t.Run("记录不存在", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		_, err := svc.Update(ctx, 99, Patch{Name: strPtr("X")})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserNotFound))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("记录不存在", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		err := svc.Delete(ctx, 99)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserNotFound))
	})

	t.Run("删除后查不到且邮箱可复用", func(t *testing.T) {
		svc := NewService(newMemRepo(SeedUsers()...))
		require.NoError(t, svc.Delete(ctx, 3))

		_, found, err := svc.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.False(t, found)

		_, err = svc.Create(ctx, "Carol", "CAROL@example.com", "User")
		assert.NoError(t, err)
	})
}

func TestService_Export(t *testing.T) {
	repo := newMemRepo(SeedUsers()[2], SeedUsers()[0])
	users, err := NewService(repo).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, ids(users), "保持存储顺序")
}

func TestService_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	emails := []string{"a@x.com", "A@x.com", "b@x.com", "B@X.COM", "c@x.com"}
	for i, e := range emails {
		_, _ = svc.Create(ctx, "N", e, "User")
		_, _ = svc.Update(ctx, i%3+1, Patch{Email: strPtr(emails[(i+2)%len(emails)])})
	}

	seenID := map[int]bool{}
	seenEmail := map[string]bool{}
	for _, u := range repo.snapshot() {
		assert.False(t, seenID[u.ID])
		seenID[u.ID] = true
		key := strings.ToLower(u.Email)
		assert.False(t, seenEmail[key], "邮箱重复: %s", u.Email)
		seenEmail[key] = true
	}
}

func TestService_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc := NewService(newMemRepo(SeedUsers()...))
	_ = svc.Delete(context.Background(), 99)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "user.Delete", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1, "错误应记录在Span上")
}
