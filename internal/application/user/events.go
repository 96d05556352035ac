package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/usercenter/pkg/circuitbreaker"
	"github.com/xiebiao/usercenter/pkg/metrics"
	"github.com/xiebiao/usercenter/pkg/tracing"
)

// 事件路由键
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// EventPublisher 事件发布接口（mq.Publisher实现）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// UserEvent 用户变更事件
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int       `json:"user_id"`
	User       *UserDTO  `json:"user,omitempty"` // 删除事件为空
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// BreakerPublisher 经过熔断器发布事件
// 消息队列不可用时熔断器打开，后续事件直接丢弃，不拖慢请求
type BreakerPublisher struct {
	next EventPublisher
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerPublisher 创建带熔断的发布者
func NewBreakerPublisher(next EventPublisher, cb *circuitbreaker.CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, cb: cb}
}

// Publish 发布事件并记录熔断器、消息指标
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	err := p.cb.Execute(func() error {
		return p.next.Publish(ctx, routingKey, message)
	})

	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.IncCircuitBreakerRequest(p.cb.Name(), metrics.ResultRejected)
	case err != nil:
		metrics.IncCircuitBreakerRequest(p.cb.Name(), metrics.ResultFailure)
	default:
		metrics.IncCircuitBreakerRequest(p.cb.Name(), metrics.ResultSuccess)
	}
	metrics.IncMessagePublished(routingKey, err)
	return err
}

// NewEventBreaker 事件发布熔断器：连续5次失败打开，30秒后探测
func NewEventBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("user-events", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			zap.L().Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
}

// notify 发布用户变更事件
// 变更已经持久化，发布失败只记录日志，不影响请求结果
func notify(ctx context.Context, pub EventPublisher, eventType string, userID int, dto *UserDTO) {
	if pub == nil {
		return
	}
	evt := UserEvent{
		Type:       eventType,
		UserID:     userID,
		User:       dto,
		TraceID:    tracing.ExtractTraceID(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if err := pub.Publish(ctx, eventType, evt); err != nil {
		zap.L().Warn("发布用户事件失败",
			zap.String("event", eventType),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}
}
