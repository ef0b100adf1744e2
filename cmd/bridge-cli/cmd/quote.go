package cmd

import (
	"fmt"
	"os"

	"bridge-core/pkg/units"

	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [amount]",
	Short: "计算 lock offer 需要提供的金额",
	Long:  `根据锁定数量和 message toll 计算 offer 需要提供的 XCH / CAT 以及扣除手续费后目标链收到的数量。`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, _ := cmd.Flags().GetBool("token")
		toll, _ := cmd.Flags().GetUint64("toll")
		if !cmd.Flags().Changed("toll") {
			toll = loadConfig().Coinset.MessageToll
		}

		q, err := units.QuoteLock(args[0], !token, toll)
		if err != nil {
			fmt.Printf("报价失败: %v\n", err)
			os.Exit(1)
		}

		decimals := units.XCHDecimals
		if token {
			decimals = units.CATDecimals
		}
		fmt.Printf("Lock:       %s (%d base units)\n", args[0], q.Amount)
		fmt.Printf("Offer XCH:  %s\n", units.FormatUnits(q.OfferXCH, units.XCHDecimals))
		if token {
			fmt.Printf("Offer CAT:  %s\n", units.FormatUnits(q.OfferToken, units.CATDecimals))
		}
		fmt.Printf("Receiver:   %s (tip %d bps)\n", units.FormatUnits(q.Received, decimals), units.TipBasisPoints)
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().Bool("token", false, "锁定 CAT 而不是 XCH")
	quoteCmd.Flags().Uint64("toll", 0, "message toll (mojo), 默认取配置")
}
