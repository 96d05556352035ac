package user

import (
	"context"
	"time"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// DeleteUserUseCase 删除用户用例，删除后邮箱可被重新使用
type DeleteUserUseCase struct {
	userService user.Service
	publisher   EventPublisher
}

// NewDeleteUserUseCase 创建删除用例
func NewDeleteUserUseCase(userService user.Service, publisher EventPublisher) *DeleteUserUseCase {
	return &DeleteUserUseCase{userService: userService, publisher: publisher}
}

// Execute 执行删除
func (uc *DeleteUserUseCase) Execute(ctx context.Context, id int) (err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("delete", err, time.Since(start)) }(time.Now())

	if err := uc.userService.Delete(ctx, id); err != nil {
		return err
	}

	notify(ctx, uc.publisher, EventUserDeleted, id, nil)
	return nil
}
