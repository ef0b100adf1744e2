package service

import (
	"context"

	"bridge-core/internal/model"
	"bridge-core/internal/service/mq"
	"bridge-core/pkg/logger"

	"go.uber.org/zap"
)

// OutboxRelay publishes pending outbox messages.
type OutboxRelay struct {
	store    BundleStore
	producer mq.Producer
	batch    int
}

func NewOutboxRelay(store BundleStore, producer mq.Producer, batch int) *OutboxRelay {
	if batch <= 0 {
		batch = 100
	}
	return &OutboxRelay{store: store, producer: producer, batch: batch}
}

// RelayOnce publishes one batch and returns how many messages were sent.
// A message that fails to publish stays PENDING for the next run.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	msgs, err := r.store.PendingOutbox(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, m := range msgs {
		if err := r.producer.Publish(ctx, m.Topic, m.Key, m.Payload); err != nil {
			logger.Warn("outbox publish failed", zap.Uint64("id", m.ID), zap.String("topic", m.Topic), zap.Error(err))
			continue
		}
		if err := r.store.SetOutboxStatus(ctx, m.ID, model.OutboxSent); err != nil {
			// 消息已经发出, 下次会重复发送, 消费方按 nonce 去重
			logger.Error("outbox mark sent failed", zap.Uint64("id", m.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
