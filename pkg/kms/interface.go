package kms

import (
	"errors"
)

// KeyType 定义了支持的密钥类型
type KeyType string

const (
	KeyTypeBLS KeyType = "BLS12-381" // AugSchemeMPL 签名密钥 (coin-set 链标准交易)
)

// KeyMetadata 包含密钥的元数据，不包含敏感的私钥信息
type KeyMetadata struct {
	KeyID     string  `json:"key_id"`     // 密钥唯一标识符
	Type      KeyType `json:"type"`       // 密钥类型
	CreatedAt int64   `json:"created_at"` // 创建时间戳
	Enabled   bool    `json:"enabled"`    // 是否启用
	Imported  bool    `json:"imported"`   // 是否由外部导入 (例如 offer 附带的一次性密钥)
}

// KeyManager 定义了密钥管理服务的核心行为。
// 调用方只持有 KeyID (key handle)，私钥不离开 KMS。
type KeyManager interface {
	// CreateKey 创建一个新的密钥，并返回其 ID。
	CreateKey(kType KeyType) (string, error)

	// ImportKey 导入已有私钥，返回其 ID。
	ImportKey(kType KeyType, secret []byte) (string, error)

	// GetPublicKey 获取指定密钥 ID 的公钥。
	GetPublicKey(keyID string) (any, error)

	// Sign 使用指定的密钥对数据进行签名。
	Sign(keyID string, data []byte) ([]byte, error)

	// Verify 验证签名是否有效。
	Verify(keyID string, data []byte, signature []byte) error

	// Metadata 返回密钥元数据。
	Metadata(keyID string) (KeyMetadata, error)

	// DeleteKey 销毁密钥 (一次性密钥用完即删)。
	DeleteKey(keyID string) error
}

var (
	ErrKeyNotFound      = errors.New("密钥未找到")
	ErrKeyDisabled      = errors.New("密钥已禁用")
	ErrUnsupportedOp    = errors.New("该密钥类型不支持此操作")
	ErrInvalidSignature = errors.New("签名无效")
)
