package mq

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen 大约保留的 Redis Stream 长度
const streamMaxLen = 100000

// NewProducer 按 mq_type 选择 Redis Streams 或 Kafka
func NewProducer(backend string, rdb *redis.Client, brokers []string) (Producer, error) {
	switch backend {
	case BackendRedis, "":
		return NewRedisProducer(rdb, streamMaxLen), nil
	case BackendKafka:
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka backend needs at least one broker")
		}
		return NewKafkaProducer(brokers), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", backend)
	}
}

// NewConsumer is NewProducer for the consuming side.
func NewConsumer(backend string, rdb *redis.Client, brokers []string, group, name string) (Consumer, error) {
	switch backend {
	case BackendRedis, "":
		return NewRedisConsumer(rdb, group, name), nil
	case BackendKafka:
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka backend needs at least one broker")
		}
		return NewKafkaConsumer(brokers, group), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", backend)
	}
}
