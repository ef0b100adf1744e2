package service

import (
	"context"
	"time"

	"bridge-core/internal/bridge"
	"bridge-core/internal/model"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/rpc"
)

// LockBuilder builds lock bundles. *bridge.Builder implements it.
type LockBuilder interface {
	Lock(ctx context.Context, req bridge.LockRequest, updateStatus bridge.StatusFunc) (*bridge.Result, error)
}

// Submitter pushes spend bundles to a node. *rpc.Client implements it.
type Submitter interface {
	PushTx(ctx context.Context, sb *coinset.SpendBundle) (*rpc.PushTxResponse, error)
}

// Enqueuer schedules an asynchronous resubmission of a stored bundle.
type Enqueuer interface {
	EnqueueSubmit(ctx context.Context, nonce string) error
}

// BundleStore persists bundle records and the outbox.
type BundleStore interface {
	Create(ctx context.Context, rec *model.BundleRecord) error
	GetByNonce(ctx context.Context, nonce string) (*model.BundleRecord, error)
	// MarkSubmitted 更新状态并在同一事务里写入 outbox 事件
	MarkSubmitted(ctx context.Context, nonce string, event LockEvent) error
	// MarkFailed 记录失败原因, retryable=false 表示节点已明确拒绝
	MarkFailed(ctx context.Context, nonce string, reason string, retryable bool) error
	// ListFailed 只返回可重试且次数未用完的记录
	ListFailed(ctx context.Context, maxAttempts, limit int) ([]model.BundleRecord, error)

	PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	SetOutboxStatus(ctx context.Context, id uint64, status string) error
}

// Cache is the read-through cache in front of BundleStore.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, target interface{}) error
}
