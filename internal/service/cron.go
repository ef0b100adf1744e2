package service

import (
	"context"
	"time"

	"bridge-core/pkg/logger"
	"bridge-core/pkg/utils/lock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	maxSubmitAttempts = 5
	retryBatch        = 20
)

// CronService 定时任务: outbox 投递和失败 bundle 的重新提交
type CronService struct {
	cron    *cron.Cron
	locker  lock.DistributedLock
	relay   *OutboxRelay
	bridge  *BridgeService
	store   BundleStore
	enqueue Enqueuer
}

func NewCronService(locker lock.DistributedLock, relay *OutboxRelay, bridge *BridgeService, store BundleStore, enqueue Enqueuer) *CronService {
	return &CronService{
		cron:    cron.New(cron.WithSeconds()),
		locker:  locker,
		relay:   relay,
		bridge:  bridge,
		store:   store,
		enqueue: enqueue,
	}
}

func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("@every 5s", s.RelayOutbox); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 1m", s.RetryFailed); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Cron Service started")
	return nil
}

func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron Service stopped")
}

// withLock 防止多实例同时执行同一个任务
func (s *CronService) withLock(name string, ttl time.Duration, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()

	key := "cron:" + name
	token, ok, err := s.locker.Acquire(ctx, key, ttl)
	if err != nil || !ok {
		logger.Debug("cron: 获取锁失败或已有实例在运行", zap.String("job", name))
		return
	}
	defer func() { _ = s.locker.Release(context.Background(), key, token) }()
	fn(ctx)
}

// RelayOutbox 投递 outbox 里的 lock 事件
func (s *CronService) RelayOutbox() {
	s.withLock("relay_outbox", 30*time.Second, func(ctx context.Context) {
		n, err := s.relay.RelayOnce(ctx)
		if err != nil {
			logger.Error("relay outbox failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("outbox relayed", zap.Int("messages", n))
		}
	})
}

// RetryFailed 重新提交失败的 bundle, 有 worker 时交给队列
func (s *CronService) RetryFailed() {
	s.withLock("retry_failed", 50*time.Second, func(ctx context.Context) {
		recs, err := s.store.ListFailed(ctx, maxSubmitAttempts, retryBatch)
		if err != nil {
			logger.Error("list failed bundles", zap.Error(err))
			return
		}
		for _, rec := range recs {
			if s.enqueue != nil {
				if err := s.enqueue.EnqueueSubmit(ctx, rec.Nonce); err != nil {
					logger.Warn("enqueue resubmission failed", zap.String("nonce", rec.Nonce), zap.Error(err))
				}
				continue
			}
			if _, err := s.bridge.Resubmit(ctx, rec.Nonce); err != nil {
				logger.Warn("resubmission failed", zap.String("nonce", rec.Nonce), zap.Error(err))
			}
		}
	})
}
