package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bridge-core/internal/model"
	"bridge-core/internal/service/mq"
	"bridge-core/pkg/errno"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements BundleStore on PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, rec *model.BundleRecord) error {
	// 同一个 nonce 重复构建时保留第一条记录
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nonce"}}, DoNothing: true}).
		Create(rec).Error
}

func (s *GormStore) GetByNonce(ctx context.Context, nonce string) (*model.BundleRecord, error) {
	var rec model.BundleRecord
	err := s.db.WithContext(ctx).Where("nonce = ?", nonce).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", errno.ErrBundleNotFound, nonce)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	return &rec, nil
}

func (s *GormStore) MarkSubmitted(ctx context.Context, nonce string, event LockEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.BundleRecord{}).
			Where("nonce = ? AND status <> ?", nonce, model.BundleStatusSubmitted).
			Updates(map[string]interface{}{
				"status":     model.BundleStatusSubmitted,
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已经提交过, 不重复发事件
			return nil
		}
		return model.CreateOutboxMessage(tx, mq.TopicLockEvents, nonce, event)
	})
}

func (s *GormStore) MarkFailed(ctx context.Context, nonce string, reason string, retryable bool) error {
	return s.db.WithContext(ctx).Model(&model.BundleRecord{}).
		Where("nonce = ? AND status <> ?", nonce, model.BundleStatusSubmitted).
		Updates(map[string]interface{}{
			"status":     model.BundleStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
			"retryable":  retryable,
		}).Error
}

func (s *GormStore) ListFailed(ctx context.Context, maxAttempts, limit int) ([]model.BundleRecord, error) {
	var recs []model.BundleRecord
	err := s.db.WithContext(ctx).
		Where("status = ? AND retryable = ? AND attempts < ?", model.BundleStatusFailed, true, maxAttempts).
		Order("updated_at").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (s *GormStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	var msgs []model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (s *GormStore) SetOutboxStatus(ctx context.Context, id uint64, status string) error {
	return s.db.WithContext(ctx).Model(&model.OutboxMessage{}).Where("id = ?", id).Update("status", status).Error
}

// DecodeLockEvent parses a payload published on mq.TopicLockEvents.
func DecodeLockEvent(payload []byte) (LockEvent, error) {
	var ev LockEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}
