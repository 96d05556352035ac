package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("序列化为持久化JSON消息", func(t *testing.T) {
		ch := &fakeChannel{}
		p := newPublisher(ch, "usercenter.events")
		p.now = func() time.Time { return at }

		err := p.Publish(context.Background(), "user.created", map[string]int{"id": 6})
		require.NoError(t, err)

		require.Len(t, ch.sent, 1)
		got := ch.sent[0]
		assert.Equal(t, "usercenter.events", got.exchange)
		assert.Equal(t, "user.created", got.key)
		assert.Equal(t, "application/json", got.msg.ContentType)
		assert.Equal(t, uint8(amqp.Persistent), got.msg.DeliveryMode)
		assert.Equal(t, at, got.msg.Timestamp)
		assert.JSONEq(t, `{"id":6}`, string(got.msg.Body))
	})

	t.Run("发布失败返回错误", func(t *testing.T) {
		ch := &fakeChannel{err: errors.New("channel closed")}
		p := newPublisher(ch, "usercenter.events")

		err := p.Publish(context.Background(), "user.deleted", map[string]int{"id": 1})
		assert.ErrorContains(t, err, "channel closed")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMQError))
	})

	t.Run("无法序列化的消息", func(t *testing.T) {
		p := newPublisher(&fakeChannel{}, "usercenter.events")
		err := p.Publish(context.Background(), "user.created", make(chan int))
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMQError))
	})
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "x")
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
