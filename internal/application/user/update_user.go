package user

import (
	"context"
	"time"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// UpdateUserUseCase 部分更新用例
type UpdateUserUseCase struct {
	userService user.Service
	publisher   EventPublisher
}

// NewUpdateUserUseCase 创建更新用例
func NewUpdateUserUseCase(userService user.Service, publisher EventPublisher) *UpdateUserUseCase {
	return &UpdateUserUseCase{userService: userService, publisher: publisher}
}

// UpdateUserRequest 更新请求，nil字段表示不修改
type UpdateUserRequest struct {
	Name  *string
	Email *string
	Role  *string
}

// Execute 执行更新
func (uc *UpdateUserUseCase) Execute(ctx context.Context, id int, req UpdateUserRequest) (dto *UserDTO, err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("update", err, time.Since(start)) }(time.Now())

	u, err := uc.userService.Update(ctx, id, user.Patch{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return nil, err
	}

	dto = toDTO(u)
	notify(ctx, uc.publisher, EventUserUpdated, u.ID, dto)
	return dto, nil
}
