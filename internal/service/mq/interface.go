package mq

import "context"

// TopicLockEvents carries a LockEvent per accepted lock bundle.
const TopicLockEvents = "bridge_lock_events"

// Message 代表一条通用的业务消息
type Message struct {
	ID      string // 消息ID (Redis Stream ID 或 Kafka partition/offset)
	Topic   string
	Key     string // 分区键, 这里是 nonce
	Payload []byte // 消息体 (JSON)
}

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 分区键, 同一个 key 的消息保持有序
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

// Consumer 消费者接口
type Consumer interface {
	// Subscribe 订阅主题并阻塞到 ctx 结束
	// handler 返回 error 时消息不会被确认
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error
	Close() error
}

// Backend names accepted by redis.mq_type.
const (
	BackendRedis = "redis"
	BackendKafka = "kafka"
)
