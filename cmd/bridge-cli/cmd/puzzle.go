package cmd

import (
	"fmt"
	"os"

	"bridge-core/internal/puzzles"
	"bridge-core/pkg/address"

	"github.com/spf13/cobra"
)

var puzzleCmd = &cobra.Command{
	Use:   "puzzle",
	Short: "计算 locker / unlocker / vault puzzle hash",
	Long:  `根据目标链、合约地址和资产计算 locker、unlocker 和 vault 的 puzzle hash 以及 bech32m 地址。`,
	Run: func(cmd *cobra.Command, args []string) {
		chain, _ := cmd.Flags().GetString("chain")
		contractHex, _ := cmd.Flags().GetString("contract")
		assetID, _ := cmd.Flags().GetString("asset")

		contract, err := address.ParseEVM(contractHex)
		if err != nil {
			fmt.Printf("contract 地址无效: %v\n", err)
			os.Exit(1)
		}
		asset, err := puzzles.ParseAssetRef(assetID)
		if err != nil {
			fmt.Printf("asset 无效: %v\n", err)
			os.Exit(1)
		}

		builder := loadBuilder(loadConfig())
		network := builder.Network()
		drivers := builder.Drivers()

		_, lockerHash, err := drivers.LockerPuzzle(chain, contract.Bytes(), network.PortalLauncherID, asset)
		if err != nil {
			fmt.Printf("计算 locker puzzle 失败: %v\n", err)
			os.Exit(1)
		}
		_, unlockerHash, err := drivers.UnlockerPuzzle(chain, contract.Bytes(), network.PortalLauncherID, asset)
		if err != nil {
			fmt.Printf("计算 unlocker puzzle 失败: %v\n", err)
			os.Exit(1)
		}
		vault, err := drivers.VaultPuzzleHash(chain, contract.Bytes(), network.PortalLauncherID, asset)
		if err != nil {
			fmt.Printf("计算 vault 失败: %v\n", err)
			os.Exit(1)
		}

		gen := address.NewXCHGenerator(address.PrefixForChain(network.ChainID))
		lockerAddr, err := gen.PuzzleHashToAddress(lockerHash)
		if err != nil {
			fmt.Printf("地址编码失败: %v\n", err)
			os.Exit(1)
		}
		vaultAddr, err := gen.PuzzleHashToAddress(vault)
		if err != nil {
			fmt.Printf("地址编码失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("\n================ Bridge Puzzles ================")
		fmt.Printf("Route:     %s -> %s\n", chain, contract.Hex())
		fmt.Printf("Asset:     %s\n", asset)
		fmt.Printf("Locker:    %s\n", lockerHash.Hex())
		fmt.Printf("           %s\n", lockerAddr)
		fmt.Printf("Unlocker:  %s\n", unlockerHash.Hex())
		fmt.Printf("Vault:     %s\n", vault.Hex())
		fmt.Printf("           %s\n", vaultAddr)
		fmt.Println("================================================")
	},
}

func init() {
	rootCmd.AddCommand(puzzleCmd)
	puzzleCmd.Flags().String("chain", "", "目标链 ID")
	puzzleCmd.Flags().String("contract", "", "目标链合约地址")
	puzzleCmd.Flags().String("asset", "xch", "资产: xch 或 CAT tail hash")
	_ = puzzleCmd.MarkFlagRequired("chain")
	_ = puzzleCmd.MarkFlagRequired("contract")
}
