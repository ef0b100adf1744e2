package cmd

import (
	"fmt"
	"os"

	"bridge-core/pkg/bls"
	"bridge-core/pkg/keystore"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "把 security coin 私钥加密保存为 keystore 文件",
	Long:  `从终端读取 BLS 私钥 (hex) 和密码，使用 scrypt + AES-256-GCM 加密后保存，供 lock --keystore 使用。`,
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")
		light, _ := cmd.Flags().GetBool("light")

		if _, err := os.Stat(outputFile); err == nil {
			fmt.Printf("⚠️  文件 %s 已存在，请先移除或换一个路径\n", outputFile)
			os.Exit(1)
		}

		if err := bls.Init(); err != nil {
			fmt.Printf("BLS 初始化失败: %v\n", err)
			os.Exit(1)
		}

		secretHex, err := readSecret("请输入 security coin 私钥 (hex): ")
		if err != nil {
			fmt.Println("读取私钥失败:", err)
			os.Exit(1)
		}
		secret, err := hexutil.Decode(ensure0x(secretHex))
		if err != nil {
			fmt.Printf("私钥格式错误: %v\n", err)
			os.Exit(1)
		}
		sk, err := bls.SecretKeyFromBytes(secret)
		if err != nil {
			fmt.Printf("私钥无效: %v\n", err)
			os.Exit(1)
		}

		password, err := readSecret("设置 Keystore 密码: ")
		if err != nil {
			fmt.Println("读取密码失败:", err)
			os.Exit(1)
		}
		confirm, err := readSecret("再次输入密码: ")
		if err != nil || confirm != password {
			fmt.Println("两次输入的密码不一致")
			os.Exit(1)
		}

		n := keystore.StandardScryptN
		if light {
			n = keystore.LightScryptN
		}
		encrypted, err := keystore.EncryptKey(sk.Bytes(), password, n)
		if err != nil {
			fmt.Printf("加密失败: %v\n", err)
			os.Exit(1)
		}
		if err := encrypted.SaveToFile(outputFile); err != nil {
			fmt.Printf("保存失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n✅ Keystore 已保存到: %s\n", outputFile)
		fmt.Printf("Public Key: %s\n", sk.PublicKey().Hex())
	},
}

func ensure0x(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s
	}
	return "0x" + s
}

func init() {
	rootCmd.AddCommand(keystoreCmd)
	keystoreCmd.Flags().StringP("output", "o", "security_key.json", "keystore 输出文件")
	keystoreCmd.Flags().Bool("light", false, "使用较低的 scrypt 参数 (仅测试用)")
}
