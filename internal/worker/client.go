package worker

import (
	"context"
	"errors"

	"bridge-core/internal/worker/tasks"

	"github.com/hibiken/asynq"
)

// Client 封装 Asynq Client
type Client struct {
	client *asynq.Client
}

// NewClient 初始化 Client
// addr: "localhost:6379"
func NewClient(addr string, password string, db int) *Client {
	c := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{client: c}
}

// EnqueueSubmit schedules a resubmission of the bundle with nonce. A task for
// the same nonce that is already queued is left alone.
func (c *Client) EnqueueSubmit(ctx context.Context, nonce string) error {
	task, err := tasks.NewBundleSubmitTask(nonce)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.client.Close()
}
