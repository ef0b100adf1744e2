package cmd

import (
	"fmt"
	"os"

	"bridge-core/internal/bridge"
	"bridge-core/pkg/config"
	"bridge-core/pkg/kms"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "bridge-cli",
	Short: "跨链桥 lock 交易命令行工具",
	Long: `构建、广播 coin-set 一侧的 lock spend bundle。
支持从 offer 构建锁定交易、计算 locker/unlocker puzzle、报价以及订阅 lock 事件。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认 ./config.yaml)")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func loadBuilder(cfg *config.Config) *bridge.Builder {
	b, err := bridge.NewFromConfig(cfg.Coinset, kms.NewLocalKMS())
	if err != nil {
		fmt.Printf("初始化 lock builder 失败: %v\n", err)
		os.Exit(1)
	}
	return b
}
