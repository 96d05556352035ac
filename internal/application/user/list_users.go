package user

import (
	"context"
	"time"

	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/pkg/metrics"
)

// ListUsersUseCase 用户列表查询用例
// 设计说明:
// 1. 支持搜索（姓名或邮箱，不区分大小写）、排序、分页
// 2. 参数默认值由HTTP层绑定时填充，page/limit的合法性由领域服务校验
type ListUsersUseCase struct {
	userService user.Service
}

// NewListUsersUseCase 创建列表查询用例
func NewListUsersUseCase(userService user.Service) *ListUsersUseCase {
	return &ListUsersUseCase{userService: userService}
}

// ListUsersRequest 列表查询请求
type ListUsersRequest struct {
	Search string
	Page   int
	Limit  int
	SortBy string // id | name | email | role，其他值保持存储顺序
	Order  string // asc | desc
}

// ListUsersResponse 列表查询响应
type ListUsersResponse struct {
	Data  []*UserDTO `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

// Execute 执行列表查询
func (uc *ListUsersUseCase) Execute(ctx context.Context, req ListUsersRequest) (resp *ListUsersResponse, err error) {
	defer func(start time.Time) { metrics.ObserveUserOperation("list", err, time.Since(start)) }(time.Now())

	page, err := uc.userService.List(ctx, user.ListParams{
		Search: req.Search,
		Page:   req.Page,
		Limit:  req.Limit,
		SortBy: req.SortBy,
		Order:  req.Order,
	})
	if err != nil {
		return nil, err
	}

	if req.Search == "" {
		metrics.SetUsersStored(page.Total)
	}

	return &ListUsersResponse{
		Data:  toDTOs(page.Data),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.Pages,
	}, nil
}
