package user

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/usercenter/internal/domain/user"
	apperrors "github.com/xiebiao/usercenter/pkg/errors"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// GetUserUseCase 用户详情查询用例
type GetUserUseCase struct {
	userService user.Service
}

// NewGetUserUseCase 创建详情查询用例
func NewGetUserUseCase(userService user.Service) *GetUserUseCase {
	return &GetUserUseCase{userService: userService}
}

// Execute 按ID查询，不存在时返回ErrCodeUserNotFound
func (uc *GetUserUseCase) Execute(ctx context.Context, id int) (dto *UserDTO, err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("get", err, time.Since(start)) }(time.Now())

	u, found, err := uc.userService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, fmt.Sprintf("用户 %d 不存在", id))
	}
	return toDTO(u), nil
}
