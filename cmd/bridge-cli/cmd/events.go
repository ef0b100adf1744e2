package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridge-core/internal/service"
	"bridge-core/internal/service/mq"
	"bridge-core/pkg/database"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅 lock 事件",
	Long:  `从 Redis Streams 或 Kafka 订阅已广播成功的 lock 事件并打印，Ctrl+C 退出。`,
	Run: func(cmd *cobra.Command, args []string) {
		group, _ := cmd.Flags().GetString("group")
		name, _ := cmd.Flags().GetString("name")
		cfg := loadConfig()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil && cfg.Redis.MQType != mq.BackendKafka {
			fmt.Printf("Redis 连接失败: %v\n", err)
			os.Exit(1)
		}
		consumer, err := mq.NewConsumer(cfg.Redis.MQType, rdb, cfg.Kafka.Brokers, group, name)
		if err != nil {
			fmt.Printf("初始化消费者失败: %v\n", err)
			os.Exit(1)
		}
		defer consumer.Close()

		fmt.Printf("正在订阅 %s (%s) ...\n", mq.TopicLockEvents, cfg.Redis.MQType)
		err = consumer.Subscribe(ctx, mq.TopicLockEvents, func(msg *mq.Message) error {
			ev, err := service.DecodeLockEvent(msg.Payload)
			if err != nil {
				fmt.Printf("无法解析消息 %s: %v\n", msg.ID, err)
				return nil
			}
			fmt.Printf("[%s] nonce=%s asset=%s amount=%s -> %s:%s receiver=%s\n",
				msg.ID, ev.Nonce, ev.AssetID, ev.AssetAmount,
				ev.DestinationChain, ev.DestinationContract, ev.Receiver)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			fmt.Printf("订阅失败: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().String("group", "bridge_cli", "消费组")
	eventsCmd.Flags().String("name", "cli-0", "消费者名称")
}
