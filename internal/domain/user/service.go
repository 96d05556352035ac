package user

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/xiebiao/usercenter/pkg/errors"
	"github.com/xiebiao/usercenter/pkg/tracing"
)

const tracerName = "usercenter/domain/user"

// Service 用户领域服务（查询引擎）
// 设计说明：
// 1. 在Repository的整体读写之上实现搜索、排序、分页和增删改
// 2. 写操作全部通过Repository.Mutate，读取→校验→保存在同一临界区内完成
// 3. 返回的记录都是副本，调用方修改不会影响存储
type Service interface {
	// List 过滤 → 排序 → 分页
	List(ctx context.Context, params ListParams) (*Page, error)

	// GetByID 按ID查找，不存在时found=false（不是错误）
	GetByID(ctx context.Context, id int) (u *User, found bool, err error)

	// GetByEmail 按邮箱查找（不区分大小写），不存在时found=false
	GetByEmail(ctx context.Context, email string) (u *User, found bool, err error)

	// Create 创建用户，ID为max+1
	Create(ctx context.Context, name, email, role string) (*User, error)

	// Update 部分更新，只修改patch中提供的字段
	Update(ctx context.Context, id int, patch Patch) (*User, error)

	// Delete 删除用户
	Delete(ctx context.Context, id int) error

	// Export 返回完整集合（存储顺序），供导出使用
	Export(ctx context.Context) ([]*User, error)
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List 列表查询
// 业务规则：
// 1. page、limit必须 >= 1
// 2. 未识别的排序字段保持存储顺序
// 3. 页码越界返回空列表
func (s *service) List(ctx context.Context, params ListParams) (*Page, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("search", params.Search),
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
		attribute.String("sort_by", params.SortBy),
	)

	var violations []string
	if params.Page < 1 {
		violations = append(violations, "page必须是正整数")
	}
	if params.Limit < 1 {
		violations = append(violations, "limit必须是正整数")
	}
	if len(violations) > 0 {
		return nil, fail(span, apperrors.Validation(violations...))
	}

	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	filtered := Filter(users, params.Search)
	sorted := Sort(filtered, params.SortBy, params.Order)
	page := Paginate(sorted, params.Page, params.Limit)
	page.Data = CloneAll(page.Data)

	span.SetAttributes(attribute.Int("total", page.Total))
	return page, nil
}

// GetByID 按ID查找
func (s *service) GetByID(ctx context.Context, id int) (*User, bool, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.GetByID")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", id))

	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, false, fail(span, err)
	}
	if i := indexOf(users, id); i >= 0 {
		return users[i].Clone(), true, nil
	}
	return nil, false, nil
}

// GetByEmail 按邮箱查找
func (s *service) GetByEmail(ctx context.Context, email string) (*User, bool, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.GetByEmail")
	defer span.End()

	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, false, fail(span, err)
	}
	if u := findByEmail(users, email); u != nil {
		return u.Clone(), true, nil
	}
	return nil, false, nil
}

// Create 创建用户
// 业务规则：
// 1. 姓名、邮箱、角色必填，邮箱必须包含@，一次返回全部违规项
// 2. 邮箱不区分大小写唯一
// 3. ID = max(已有ID)+1
func (s *service) Create(ctx context.Context, name, email, role string) (*User, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.Create")
	defer span.End()

	candidate := &User{Name: name, Email: email, Role: role}
	if violations := candidate.Validate(); len(violations) > 0 {
		return nil, fail(span, apperrors.Validation(violations...))
	}

	var created *User
	err := s.repo.Mutate(ctx, func(users []*User) ([]*User, error) {
		if findByEmail(users, email) != nil {
			return nil, emailConflict(email)
		}
		candidate.ID = NextID(users)
		created = candidate.Clone()
		return append(users, candidate), nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("user_id", created.ID))
	return created, nil
}

// Update 部分更新
// 业务规则：
// 1. 记录不存在返回ErrCodeUserNotFound
// 2. 校验的是合并后的完整记录，而不是补丁本身
// 3. 邮箱被其他记录占用时冲突，保持自己原邮箱不冲突
func (s *service) Update(ctx context.Context, id int, patch Patch) (*User, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.Update")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", id))

	var updated *User
	err := s.repo.Mutate(ctx, func(users []*User) ([]*User, error) {
		i := indexOf(users, id)
		if i < 0 {
			return nil, userNotFound(id)
		}

		merged := patch.ApplyTo(users[i])
		if violations := merged.Validate(); len(violations) > 0 {
			return nil, apperrors.Validation(violations...)
		}

		if patch.Email != nil {
			for _, other := range users {
				if other.ID != id && other.SameEmail(*patch.Email) {
					return nil, emailConflict(*patch.Email)
				}
			}
		}

		users[i] = merged
		updated = merged.Clone()
		return users, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return updated, nil
}

// Delete 删除用户，删除后邮箱可被重新使用
func (s *service) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", id))

	err := s.repo.Mutate(ctx, func(users []*User) ([]*User, error) {
		i := indexOf(users, id)
		if i < 0 {
			return nil, userNotFound(id)
		}
		return append(users[:i], users[i+1:]...), nil
	})
	if err != nil {
		return fail(span, err)
	}
	return nil
}

// Export 导出完整集合
func (s *service) Export(ctx context.Context) ([]*User, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "user.Export")
	defer span.End()

	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("total", len(users)))
	return CloneAll(users), nil
}

// =========================================
// 辅助函数
// =========================================

func userNotFound(id int) error {
	return apperrors.New(apperrors.ErrCodeUserNotFound, fmt.Sprintf("用户 %d 不存在", id))
}

func emailConflict(email string) error {
	return apperrors.New(apperrors.ErrCodeEmailDuplicate, fmt.Sprintf("邮箱 %s 已被使用", email))
}

// fail 在Span上记录错误后原样返回
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
