package user

import (
	"context"
	"time"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// CreateUserUseCase 创建用户用例
// 设计说明：
// 1. 校验、查重、分配ID都在领域服务的同一临界区内完成
// 2. 创建成功后发布user.created事件
type CreateUserUseCase struct {
	userService user.Service
	publisher   EventPublisher
}

// NewCreateUserUseCase 创建用例
func NewCreateUserUseCase(userService user.Service, publisher EventPublisher) *CreateUserUseCase {
	return &CreateUserUseCase{userService: userService, publisher: publisher}
}

// CreateUserRequest 创建请求
type CreateUserRequest struct {
	Name  string
	Email string
	Role  string
}

// Execute 执行创建
func (uc *CreateUserUseCase) Execute(ctx context.Context, req CreateUserRequest) (dto *UserDTO, err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("create", err, time.Since(start)) }(time.Now())

	u, err := uc.userService.Create(ctx, req.Name, req.Email, req.Role)
	if err != nil {
		return nil, err
	}

	dto = toDTO(u)
	notify(ctx, uc.publisher, EventUserCreated, u.ID, dto)
	return dto, nil
}
