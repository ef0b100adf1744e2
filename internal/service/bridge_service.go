package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bridge-core/internal/bridge"
	"bridge-core/internal/model"
	"bridge-core/internal/offer"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/monitor"
	"bridge-core/pkg/rpc"
	"bridge-core/pkg/utils/lock"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	offerLockTTL = 2 * time.Minute
	recordTTL    = 10 * time.Minute
)

// LockInput is one lock request as received from the API or CLI.
type LockInput struct {
	Offer               []byte
	DestinationChain    string
	DestinationContract common.Address
	Receiver            common.Address
	Submit              bool
}

// LockEvent is published once a lock bundle has been accepted by the node.
type LockEvent struct {
	Nonce               string `json:"nonce"`
	LockerCoinID        string `json:"locker_coin_id"`
	DestinationChain    string `json:"destination_chain"`
	DestinationContract string `json:"destination_contract"`
	Receiver            string `json:"receiver"`
	AssetID             string `json:"asset_id"`
	AssetAmount         string `json:"asset_amount"`
}

// LockOutput is the stored record plus the bundle itself.
type LockOutput struct {
	Record *model.BundleRecord
	Bundle *coinset.SpendBundle
}

// BridgeService 负责锁定流程: 防重 -> 构建 -> 落库 -> 提交 -> outbox 事件
type BridgeService struct {
	builder   LockBuilder
	submitter Submitter
	store     BundleStore
	locker    lock.DistributedLock
	cache     Cache
	enqueuer  Enqueuer
}

// Option configures optional collaborators.
type Option func(*BridgeService)

// WithCache puts a read-through cache in front of Get.
func WithCache(c Cache) Option { return func(s *BridgeService) { s.cache = c } }

// WithEnqueuer schedules asynchronous retries when a submission fails.
func WithEnqueuer(e Enqueuer) Option { return func(s *BridgeService) { s.enqueuer = e } }

func NewBridgeService(builder LockBuilder, submitter Submitter, store BundleStore, locker lock.DistributedLock, opts ...Option) *BridgeService {
	s := &BridgeService{builder: builder, submitter: submitter, store: store, locker: locker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OfferHash identifies an offer for de-duplication. Offer documents are hashed
// by content; anything else falls back to the raw bytes and fails in the builder.
func OfferHash(raw []byte) string {
	if fp, ok := offer.Fingerprint(raw); ok {
		return fp.Hex()
	}
	sum := sha256.Sum256(raw)
	return common.BytesToHash(sum[:]).Hex()
}

// Lock builds the bundle for in, stores it and, when in.Submit is set, pushes
// it. A rejected submission returns both the output (status FAILED) and an
// error wrapping errno.ErrSubmission.
func (s *BridgeService) Lock(ctx context.Context, in LockInput) (*LockOutput, error) {
	offerHash := OfferHash(in.Offer)
	lockKey := "offer:" + offerHash

	// 1. 同一个 offer 同时只允许一个构建
	token, ok, err := s.locker.Acquire(ctx, lockKey, offerLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire offer lock: %w", err)
	}
	if !ok {
		monitor.ObserveInFlightReject()
		return nil, fmt.Errorf("%w: %s", errno.ErrOfferInFlight, offerHash)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			logger.Warn("release offer lock failed", zap.String("offer_hash", offerHash), zap.Error(err))
		}
	}()

	// 2. 构建
	start := time.Now()
	res, err := s.builder.Lock(ctx, bridge.LockRequest{
		Offer:               in.Offer,
		DestinationChain:    in.DestinationChain,
		DestinationContract: in.DestinationContract,
		Receiver:            in.Receiver,
	}, func(status string) {
		logger.Debug("lock status", zap.String("offer_hash", offerHash), zap.String("status", status))
	})
	if err != nil {
		code, _ := errno.Decode(err)
		monitor.ObserveBuildFailure(code)
		logger.Error("build lock bundle failed", zap.String("offer_hash", offerHash), zap.Error(err))
		return nil, err
	}
	monitor.ObserveBuild(res.Asset.String(), res.AssetAmount, time.Since(start))

	// 3. 落库
	bundleJSON, err := rpc.BundleJSON(res.Bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrEncoding, err)
	}
	rec := &model.BundleRecord{
		RequestID:           uuid.NewString(),
		Nonce:               res.Nonce.Hex(),
		OfferHash:           offerHash,
		LockerCoinID:        res.LockerCoinID.Hex(),
		DestinationChain:    in.DestinationChain,
		DestinationContract: in.DestinationContract.Hex(),
		Receiver:            in.Receiver.Hex(),
		AssetID:             res.Asset.String(),
		AssetAmount:         decimal.NewFromBigInt(new(big.Int).SetUint64(res.AssetAmount), 0),
		BundleJSON:          string(bundleJSON),
		Status:              model.BundleStatusBuilt,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	logger.Info("lock bundle stored",
		zap.String("request_id", rec.RequestID),
		zap.String("nonce", rec.Nonce),
		zap.String("asset", rec.AssetID))

	out := &LockOutput{Record: rec, Bundle: res.Bundle}
	if !in.Submit {
		return out, nil
	}

	// 4. 提交
	if err := s.submit(ctx, rec, res.Bundle); err != nil {
		return out, err
	}
	return out, nil
}

// Resubmit pushes a stored bundle again.
func (s *BridgeService) Resubmit(ctx context.Context, nonce string) (*model.BundleRecord, error) {
	rec, err := s.store.GetByNonce(ctx, nonce)
	if err != nil {
		return nil, err
	}
	if rec.Status == model.BundleStatusSubmitted {
		return rec, nil
	}
	var sb coinset.SpendBundle
	if err := json.Unmarshal([]byte(rec.BundleJSON), &sb); err != nil {
		return nil, fmt.Errorf("%w: stored bundle %s: %v", errno.ErrEncoding, nonce, err)
	}
	return rec, s.submit(ctx, rec, &sb)
}

func (s *BridgeService) submit(ctx context.Context, rec *model.BundleRecord, sb *coinset.SpendBundle) error {
	resp, err := s.submitter.PushTx(ctx, sb)
	if err != nil {
		monitor.ObserveSubmission("rejected")
		logger.Error("push_tx failed", zap.String("nonce", rec.Nonce), zap.Error(err))

		retry := rpc.Retryable(err)
		rec.Status = model.BundleStatusFailed
		rec.Attempts++
		rec.LastError = err.Error()
		rec.Retryable = retry
		if markErr := s.store.MarkFailed(ctx, rec.Nonce, err.Error(), retry); markErr != nil {
			logger.Error("mark bundle failed", zap.String("nonce", rec.Nonce), zap.Error(markErr))
		}
		if s.enqueuer != nil && retry {
			if qErr := s.enqueuer.EnqueueSubmit(ctx, rec.Nonce); qErr != nil {
				logger.Warn("enqueue resubmission failed", zap.String("nonce", rec.Nonce), zap.Error(qErr))
			}
		}
		if !errors.Is(err, errno.ErrSubmission) {
			err = fmt.Errorf("%w: %v", errno.ErrSubmission, err)
		}
		return err
	}

	monitor.ObserveSubmission("accepted")
	event := LockEvent{
		Nonce:               rec.Nonce,
		LockerCoinID:        rec.LockerCoinID,
		DestinationChain:    rec.DestinationChain,
		DestinationContract: rec.DestinationContract,
		Receiver:            rec.Receiver,
		AssetID:             rec.AssetID,
		AssetAmount:         rec.AssetAmount.String(),
	}
	if err := s.store.MarkSubmitted(ctx, rec.Nonce, event); err != nil {
		return fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	rec.Status = model.BundleStatusSubmitted
	rec.Attempts++
	rec.LastError = ""
	logger.Info("lock bundle submitted", zap.String("nonce", rec.Nonce), zap.String("status", resp.Status))
	return nil
}

// Get returns the record for nonce.
func (s *BridgeService) Get(ctx context.Context, nonce string) (*model.BundleRecord, error) {
	key := "bundle:" + nonce
	if s.cache != nil {
		var rec model.BundleRecord
		if err := s.cache.Get(ctx, key, &rec); err == nil {
			return &rec, nil
		}
	}
	rec, err := s.store.GetByNonce(ctx, nonce)
	if err != nil {
		return nil, err
	}
	// 只缓存已经提交成功的记录, 其它状态还会变化
	if s.cache != nil && rec.Status == model.BundleStatusSubmitted {
		_ = s.cache.Set(ctx, key, rec, recordTTL)
	}
	return rec, nil
}
