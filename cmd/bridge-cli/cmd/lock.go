package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"bridge-core/internal/bridge"
	"bridge-core/pkg/address"
	"bridge-core/pkg/keystore"
	"bridge-core/pkg/rpc"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "从 offer 构建 lock spend bundle",
	Long:  `读取 offer JSON 文件，构建锁定交易并输出 spend bundle 和 message nonce。`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("offer")
		outputFile, _ := cmd.Flags().GetString("output")
		chain, _ := cmd.Flags().GetString("chain")
		contractHex, _ := cmd.Flags().GetString("contract")
		receiverHex, _ := cmd.Flags().GetString("receiver")
		promptKey, _ := cmd.Flags().GetBool("prompt-key")
		keystoreFile, _ := cmd.Flags().GetString("keystore")
		submit, _ := cmd.Flags().GetBool("submit")

		contract, err := address.ParseEVM(contractHex)
		if err != nil {
			fmt.Printf("contract 地址无效: %v\n", err)
			os.Exit(1)
		}
		receiver, err := address.ParseEVM(receiverHex)
		if err != nil {
			fmt.Printf("receiver 地址无效: %v\n", err)
			os.Exit(1)
		}

		// 1. 读取 offer
		raw, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Printf("读取 offer 失败: %v\n", err)
			os.Exit(1)
		}

		// 2. offer 里没有 security coin 私钥时从 keystore 或终端输入
		missing, err := lacksSecurityKey(raw)
		if err != nil {
			fmt.Printf("解析 offer 失败: %v\n", err)
			os.Exit(1)
		}
		if missing && keystoreFile != "" {
			sk, err := unlockKeystore(keystoreFile)
			if err != nil {
				fmt.Printf("解密 keystore 失败: %v\n", err)
				os.Exit(1)
			}
			raw, err = withSecurityKey(raw, hexutil.Encode(sk))
			if err != nil {
				fmt.Printf("写入私钥失败: %v\n", err)
				os.Exit(1)
			}
		} else if missing && promptKey {
			secret, err := readSecret("请输入 security coin 私钥 (hex): ")
			if err != nil {
				fmt.Println("读取私钥失败:", err)
				os.Exit(1)
			}
			raw, err = withSecurityKey(raw, secret)
			if err != nil {
				fmt.Printf("私钥格式错误: %v\n", err)
				os.Exit(1)
			}
		}

		// 3. 构建
		cfg := loadConfig()
		builder := loadBuilder(cfg)
		ctx := context.Background()
		res, err := builder.Lock(ctx, bridge.LockRequest{
			Offer:               raw,
			DestinationChain:    chain,
			DestinationContract: contract,
			Receiver:            receiver,
		}, func(status string) {
			fmt.Println(status)
		})
		if err != nil {
			fmt.Printf("❌ 构建失败: %v\n", err)
			os.Exit(1)
		}

		bundleJSON, err := rpc.BundleJSON(res.Bundle)
		if err != nil {
			fmt.Printf("序列化 bundle 失败: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(outputFile, bundleJSON, 0644); err != nil {
			fmt.Printf("保存 bundle 失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("\n================ Lock Bundle ================")
		fmt.Printf("Nonce:        %s\n", res.Nonce.Hex())
		fmt.Printf("Locker Coin:  %s\n", res.LockerCoinID.Hex())
		fmt.Printf("Asset:        %s\n", res.Asset)
		fmt.Printf("Amount:       %d\n", res.AssetAmount)
		fmt.Printf("Spends:       %d\n", len(res.Bundle.CoinSpends))
		fmt.Printf("已保存到:     %s\n", outputFile)
		fmt.Println("=============================================")

		// 4. 可选: 直接广播
		if !submit {
			return
		}
		resp, err := rpc.NewClient(cfg.Coinset.RpcUrl).PushTx(ctx, res.Bundle)
		if err != nil {
			fmt.Printf("❌ 广播失败: %v\n", err)
			fmt.Printf("bundle 已保存在 %s, 可以稍后用 push 命令重新广播\n", outputFile)
			os.Exit(1)
		}
		fmt.Printf("✅ 广播成功! status=%s\n", resp.Status)
	},
}

// lacksSecurityKey reports whether the offer document has no security_coin_sk.
func lacksSecurityKey(raw []byte) (bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	v, ok := doc["security_coin_sk"]
	if !ok {
		return true, nil
	}
	s := strings.TrimSpace(string(v))
	return s == "null" || s == `""` || s == `"0x"`, nil
}

// readSecret 从终端读取, 不回显
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func unlockKeystore(file string) ([]byte, error) {
	encrypted, err := keystore.LoadFromFile(file)
	if err != nil {
		return nil, err
	}
	password, err := readSecret("请输入 Keystore 密码: ")
	if err != nil {
		return nil, err
	}
	return keystore.DecryptKey(encrypted, password)
}

// withSecurityKey returns the offer document with security_coin_sk set.
func withSecurityKey(raw []byte, secretHex string) ([]byte, error) {
	if !strings.HasPrefix(secretHex, "0x") {
		secretHex = "0x" + secretHex
	}
	sk, err := hexutil.Decode(secretHex)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(hexutil.Bytes(sk))
	if err != nil {
		return nil, err
	}
	doc["security_coin_sk"] = encoded
	return json.Marshal(doc)
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.Flags().StringP("offer", "i", "offer.json", "offer JSON 文件")
	lockCmd.Flags().StringP("output", "o", "bundle.json", "spend bundle 输出文件")
	lockCmd.Flags().String("chain", "", "目标链 ID, 例如 eth, bse")
	lockCmd.Flags().String("contract", "", "目标链合约地址")
	lockCmd.Flags().String("receiver", "", "目标链接收地址")
	lockCmd.Flags().Bool("prompt-key", false, "offer 中缺少私钥时从终端输入")
	lockCmd.Flags().String("keystore", "", "offer 中缺少私钥时从加密 keystore 文件读取")
	lockCmd.Flags().Bool("submit", false, "构建后直接广播")
	_ = lockCmd.MarkFlagRequired("chain")
	_ = lockCmd.MarkFlagRequired("contract")
	_ = lockCmd.MarkFlagRequired("receiver")
}
