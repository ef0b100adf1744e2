package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bundle record statuses.
const (
	BundleStatusBuilt     = "BUILT"
	BundleStatusSubmitted = "SUBMITTED"
	BundleStatusFailed    = "FAILED"
)

// BundleRecord 保存构建好的 spend bundle, 提交失败时 BundleJSON 就是恢复用的原始数据
type BundleRecord struct {
	ID                  uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID           string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"request_id"`
	Nonce               string          `gorm:"type:varchar(66);not null;uniqueIndex" json:"nonce"`
	OfferHash           string          `gorm:"type:varchar(66);not null;index" json:"offer_hash"`
	LockerCoinID        string          `gorm:"type:varchar(66);not null" json:"locker_coin_id"`
	DestinationChain    string          `gorm:"type:varchar(32);not null" json:"destination_chain"`
	DestinationContract string          `gorm:"type:varchar(42);not null" json:"destination_contract"`
	Receiver            string          `gorm:"type:varchar(42);not null" json:"receiver"`
	AssetID             string          `gorm:"type:varchar(66);not null" json:"asset_id"`
	AssetAmount         decimal.Decimal `gorm:"type:numeric(20,0);not null" json:"asset_amount"`
	BundleJSON          string          `gorm:"type:text;not null" json:"bundle_json"`
	Status              string          `gorm:"type:varchar(20);not null;default:'BUILT';index" json:"status"`
	Attempts            int             `gorm:"not null;default:0" json:"attempts"`
	LastError           string          `gorm:"type:text" json:"last_error,omitempty"`
	Retryable           bool            `gorm:"not null;default:false" json:"retryable"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (BundleRecord) TableName() string {
	return "bundle_records"
}
