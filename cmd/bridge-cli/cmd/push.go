package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bridge-core/pkg/coinset"
	"bridge-core/pkg/rpc"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "广播 spend bundle (Online)",
	Long:  `读取 lock 命令生成的 spend bundle 文件，并通过 push_tx 广播到全节点。`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("input")
		rpcURL, _ := cmd.Flags().GetString("rpc")
		if rpcURL == "" {
			rpcURL = loadConfig().Coinset.RpcUrl
		}

		data, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Printf("读取文件失败: %v\n", err)
			os.Exit(1)
		}
		var sb coinset.SpendBundle
		if err := json.Unmarshal(data, &sb); err != nil {
			fmt.Printf("解析文件失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("正在广播 %d 个 coin spend 到 %s ...\n", len(sb.CoinSpends), rpcURL)
		resp, err := rpc.NewClient(rpcURL).PushTx(context.Background(), &sb)
		if err != nil {
			fmt.Printf("❌ 广播失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ 广播成功! status=%s\n", resp.Status)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().StringP("input", "i", "bundle.json", "spend bundle 文件")
	pushCmd.Flags().String("rpc", "", "全节点 RPC 地址 (默认取配置 coinset.rpc_url)")
}
