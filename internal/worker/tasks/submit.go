package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bridge-core/internal/model"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/rpc"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// 任务类型常量
const (
	TypeBundleSubmit = "bundle:submit"
)

// BundleSubmitPayload 重新提交任务参数
type BundleSubmitPayload struct {
	Nonce string `json:"nonce"`
}

// NewBundleSubmitTask 创建重新提交任务, 同一个 nonce 同时只排一个
func NewBundleSubmitTask(nonce string) (*asynq.Task, error) {
	payload, err := json.Marshal(BundleSubmitPayload{Nonce: nonce})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBundleSubmit, payload,
		asynq.TaskID("submit:"+nonce),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue("critical"),
	), nil
}

// Resubmitter is the service call the handler drives.
type Resubmitter interface {
	Resubmit(ctx context.Context, nonce string) (*model.BundleRecord, error)
}

// HandleBundleSubmit returns the handler for TypeBundleSubmit.
func HandleBundleSubmit(svc Resubmitter) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p BundleSubmitPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			// JSON 解析失败，重试也没用
			return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
		}

		rec, err := svc.Resubmit(ctx, p.Nonce)
		if errors.Is(err, errno.ErrBundleNotFound) || errors.Is(err, errno.ErrEncoding) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		// 节点明确拒绝 (double spend 等), 重试也没用
		if errors.Is(err, errno.ErrSubmission) && !rpc.Retryable(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			return err
		}
		logger.Info("bundle resubmitted", zap.String("nonce", p.Nonce), zap.String("status", rec.Status))
		return nil
	}
}
