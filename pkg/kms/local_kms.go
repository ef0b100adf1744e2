package kms

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"bridge-core/pkg/bls"

	"github.com/google/uuid"
)

// keyEntry 是内部存储结构，包含私钥（敏感数据）和元数据
type keyEntry struct {
	Metadata   KeyMetadata
	PrivateKey bls.SecretKey
	PublicKey  bls.PublicKey
}

// LocalKMS 是 KeyManager 接口的本地内存实现。
// 私钥存储在内存中，不直接暴露给外部。
type LocalKMS struct {
	mu   sync.RWMutex
	keys map[string]*keyEntry
}

// NewLocalKMS 创建一个新的 LocalKMS 实例。
func NewLocalKMS() *LocalKMS {
	return &LocalKMS{
		keys: make(map[string]*keyEntry),
	}
}

// CreateKey 创建一个新的密钥，并返回其 ID。
func (kms *LocalKMS) CreateKey(kType KeyType) (string, error) {
	if kType != KeyTypeBLS {
		return "", fmt.Errorf("不支持的密钥类型: %s", kType)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("生成随机种子失败: %w", err)
	}
	sk, err := bls.KeyGen(seed)
	if err != nil {
		return "", err
	}
	return kms.store(kType, sk, false), nil
}

// ImportKey 导入一个 32 字节的 BLS 私钥。
func (kms *LocalKMS) ImportKey(kType KeyType, secret []byte) (string, error) {
	if kType != KeyTypeBLS {
		return "", fmt.Errorf("不支持的密钥类型: %s", kType)
	}
	sk, err := bls.SecretKeyFromBytes(secret)
	if err != nil {
		return "", fmt.Errorf("导入私钥失败: %w", err)
	}
	return kms.store(kType, sk, true), nil
}

func (kms *LocalKMS) store(kType KeyType, sk bls.SecretKey, imported bool) string {
	keyID := uuid.NewString()
	entry := &keyEntry{
		Metadata: KeyMetadata{
			KeyID:     keyID,
			Type:      kType,
			CreatedAt: time.Now().Unix(),
			Enabled:   true,
			Imported:  imported,
		},
		PrivateKey: sk,
		PublicKey:  sk.PublicKey(),
	}

	kms.mu.Lock()
	defer kms.mu.Unlock()
	kms.keys[keyID] = entry
	return keyID
}

func (kms *LocalKMS) lookup(keyID string) (*keyEntry, error) {
	entry, exists := kms.keys[keyID]
	if !exists {
		return nil, ErrKeyNotFound
	}
	if !entry.Metadata.Enabled {
		return nil, ErrKeyDisabled
	}
	return entry, nil
}

// GetPublicKey 获取指定密钥 ID 的公钥 (bls.PublicKey)。
func (kms *LocalKMS) GetPublicKey(keyID string) (any, error) {
	kms.mu.RLock()
	defer kms.mu.RUnlock()

	entry, err := kms.lookup(keyID)
	if err != nil {
		return nil, err
	}
	return entry.PublicKey, nil
}

// Sign 使用指定的密钥对数据进行签名, 返回 96 字节压缩签名。
func (kms *LocalKMS) Sign(keyID string, data []byte) ([]byte, error) {
	kms.mu.RLock()
	defer kms.mu.RUnlock()

	entry, err := kms.lookup(keyID)
	if err != nil {
		return nil, err
	}
	sig, err := bls.Sign(entry.PrivateKey, data)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

// Verify 验证签名是否有效。
func (kms *LocalKMS) Verify(keyID string, data []byte, signature []byte) error {
	kms.mu.RLock()
	defer kms.mu.RUnlock()

	entry, err := kms.lookup(keyID)
	if err != nil {
		return err
	}
	if len(signature) != bls.SignatureSize {
		return ErrInvalidSignature
	}
	var sig bls.Signature
	copy(sig[:], signature)
	valid, err := bls.Verify(entry.PublicKey, data, sig)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidSignature
	}
	return nil
}

// Metadata 返回密钥元数据。
func (kms *LocalKMS) Metadata(keyID string) (KeyMetadata, error) {
	kms.mu.RLock()
	defer kms.mu.RUnlock()

	entry, exists := kms.keys[keyID]
	if !exists {
		return KeyMetadata{}, ErrKeyNotFound
	}
	return entry.Metadata, nil
}

// DeleteKey 删除密钥。
func (kms *LocalKMS) DeleteKey(keyID string) error {
	kms.mu.Lock()
	defer kms.mu.Unlock()

	if _, exists := kms.keys[keyID]; !exists {
		return ErrKeyNotFound
	}
	delete(kms.keys, keyID)
	return nil
}
