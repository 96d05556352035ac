//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
// 依赖链：Config → Repository → Service → UseCase → Handler → gin.Engine → http.Server → App
package main

import (
	"github.com/google/wire"

	appuser "github.com/xiebiao/usercenter/internal/application/user"
	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/internal/infrastructure/config"
	"github.com/xiebiao/usercenter/internal/interface/http/handler"
	"github.com/xiebiao/usercenter/internal/interface/http/router"
)

// infrastructureSet 存储和消息队列
var infrastructureSet = wire.NewSet(
	provideRepository,
	provideEventPublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewListUsersUseCase,
	appuser.NewGetUserUseCase,
	appuser.NewCreateUserUseCase,
	appuser.NewUpdateUserUseCase,
	appuser.NewDeleteUserUseCase,
	appuser.NewExportUsersUseCase,
)

// interfaceSet HTTP层
var interfaceSet = wire.NewSet(
	handler.NewUserHandler,
	router.New,
	provideServer,
	newApp,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭消息队列和存储连接
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
