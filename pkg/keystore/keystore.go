// Package keystore stores BLS secret keys encrypted under a password
// (scrypt + AES-256-GCM), in a layout close to Ethereum keystore v3.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// ErrDecrypt is returned for a wrong password or a corrupted file.
var ErrDecrypt = errors.New("invalid password or corrupted data (MAC mismatch)")

type EncryptedKeyJSON struct {
	Crypto  CryptoJSON `json:"crypto"`
	Id      string     `json:"id"`
	Version int        `json:"version"` // 3
}

type CryptoJSON struct {
	Cipher       string        `json:"cipher"` // "aes-256-gcm"
	CipherText   hexutil.Bytes `json:"ciphertext"`
	CipherParams CipherParams  `json:"cipherparams"`
	KDF          string        `json:"kdf"` // "scrypt"
	KDFParams    KDFParams     `json:"kdfparams"`
	MAC          hexutil.Bytes `json:"mac"`
}

type CipherParams struct {
	IV hexutil.Bytes `json:"iv"`
}

type KDFParams struct {
	DKLen int           `json:"dklen"`
	N     int           `json:"n"`
	R     int           `json:"r"`
	P     int           `json:"p"`
	Salt  hexutil.Bytes `json:"salt"`
}

// Scrypt cost parameters. LightScryptN is for tests and throwaway keys.
const (
	StandardScryptN = 1 << 18
	LightScryptN    = 1 << 12

	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

// EncryptKey 用密码加密私钥
func EncryptKey(secret []byte, password string, scryptN int) (*EncryptedKeyJSON, error) {
	// 1. 随机 Salt, 派生 AES key
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, err
	}

	// 2. AES-256-GCM 加密
	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, secret, nil)

	return &EncryptedKeyJSON{
		Version: 3,
		Id:      uuid.NewString(),
		Crypto: CryptoJSON{
			Cipher:       "aes-256-gcm",
			CipherText:   ciphertext,
			CipherParams: CipherParams{IV: nonce},
			KDF:          "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				Salt:  salt,
			},
			MAC: mac(derivedKey, ciphertext),
		},
	}, nil
}

// DecryptKey 解密得到私钥
func DecryptKey(k *EncryptedKeyJSON, password string) ([]byte, error) {
	if k.Crypto.KDF != "scrypt" || k.Crypto.Cipher != "aes-256-gcm" {
		return nil, fmt.Errorf("unsupported keystore: kdf=%s cipher=%s", k.Crypto.KDF, k.Crypto.Cipher)
	}
	p := k.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), p.Salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(k.Crypto.MAC, mac(derivedKey, k.Crypto.CipherText)) {
		return nil, ErrDecrypt
	}

	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, k.Crypto.CipherParams.IV, k.Crypto.CipherText, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// SaveToFile 保存到文件, 权限 0600
func (k *EncryptedKeyJSON) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// LoadFromFile 从文件加载
func LoadFromFile(filename string) (*EncryptedKeyJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var k EncryptedKeyJSON
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse keystore %s: %w", filename, err)
	}
	return &k, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// MAC = SHA256(derivedKey || ciphertext)
func mac(derivedKey, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(derivedKey)
	h.Write(ciphertext)
	return h.Sum(nil)
}
