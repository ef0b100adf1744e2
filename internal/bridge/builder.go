// Package bridge sequences the coin spends of a lock and assembles them into a
// single spend bundle together with the message nonce.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bridge-core/internal/offer"
	"bridge-core/internal/portal"
	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/kms"
	"bridge-core/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Status milestones reported while a lock is built.
const (
	StatusInitializing = "Initializing BLS..."
	StatusParsing      = "Parsing offer..."
	StatusBuilding     = "Building transaction..."
)

// StatusFunc receives progress messages. It may be nil.
type StatusFunc func(status string)

// LockRequest describes one lock: the offer funding it and where the wrapped
// asset should be minted.
type LockRequest struct {
	Offer               []byte
	DestinationChain    string
	DestinationContract common.Address
	Receiver            common.Address
}

// Result is the built bundle plus the identifiers a caller tracks it by.
type Result struct {
	Bundle       *coinset.SpendBundle
	Nonce        common.Hash
	LockerCoinID common.Hash
	Asset        puzzles.AssetRef
	AssetAmount  uint64
}

// Builder turns offers into lock bundles for one coin-set network.
type Builder struct {
	network coinset.Network
	drivers *puzzles.Drivers
	parser  offer.Parser
	portal  portal.Portal
	keys    kms.KeyManager
}

// Option configures a Builder.
type Option func(*Builder)

// WithKeyRelease deletes the offer's security key from keys when Lock returns,
// whether or not the bundle was built.
func WithKeyRelease(keys kms.KeyManager) Option {
	return func(b *Builder) {
		b.keys = keys
	}
}

// NewBuilder wires a builder.
func NewBuilder(network coinset.Network, drivers *puzzles.Drivers, parser offer.Parser, p portal.Portal, opts ...Option) *Builder {
	b := &Builder{network: network, drivers: drivers, parser: parser, portal: p}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Network returns the network the builder targets.
func (b *Builder) Network() coinset.Network { return b.network }

// Drivers returns the puzzle drivers the builder curries with.
func (b *Builder) Drivers() *puzzles.Drivers { return b.drivers }

// LockAssets builds the bundle that locks the offered asset and emits the
// bridge message. It returns the bundle and the message nonce, or an error
// without any partial bundle.
func (b *Builder) LockAssets(ctx context.Context, req LockRequest, updateStatus StatusFunc) (*coinset.SpendBundle, common.Hash, error) {
	res, err := b.Lock(ctx, req, updateStatus)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return res.Bundle, res.Nonce, nil
}

// Lock is LockAssets with the extra bookkeeping fields of Result.
func (b *Builder) Lock(ctx context.Context, req LockRequest, updateStatus StatusFunc) (*Result, error) {
	if updateStatus == nil {
		updateStatus = func(string) {}
	}
	start := time.Now()

	updateStatus(StatusInitializing)
	if err := bls.Init(); err != nil {
		return nil, fmt.Errorf("init bls: %w", err)
	}

	updateStatus(StatusParsing)
	parsed, err := b.parser.Parse(ctx, req.Offer)
	if err != nil {
		return nil, fmt.Errorf("parse offer: %w", err)
	}
	if b.keys != nil {
		defer b.releaseKey(parsed.SecurityCoinKey)
	}

	updateStatus(StatusBuilding)
	seq := newSequence(b, req, parsed)
	if err := seq.run(ctx); err != nil {
		return nil, err
	}

	bundle, err := AssembleBundle(seq.spends, seq.sigs)
	if err != nil {
		return nil, err
	}
	nonce := seq.messageCoin.ID()

	logger.Debug("lock bundle built",
		zap.String("locker_coin", seq.lockerCoin.ID().Hex()),
		zap.String("nonce", nonce.Hex()),
		zap.String("asset", parsed.Asset.Ref.String()),
		zap.Int("spends", len(bundle.CoinSpends)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Bundle:       bundle,
		Nonce:        nonce,
		LockerCoinID: seq.lockerCoin.ID(),
		Asset:        parsed.Asset.Ref,
		AssetAmount:  seq.assetAmount,
	}, nil
}

// releaseKey drops a one-time security key once its coin has been signed.
func (b *Builder) releaseKey(keyID string) {
	if err := b.keys.DeleteKey(keyID); err != nil && !errors.Is(err, kms.ErrKeyNotFound) {
		logger.Warn("delete security key failed", zap.String("key_id", keyID), zap.Error(err))
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errno.ErrMalformedOffer, fmt.Sprintf(format, args...))
}

// findSpendByCoinID returns the index of the only spend of coin id.
func findSpendByCoinID(spends []coinset.CoinSpend, id common.Hash) (int, error) {
	index := make(map[common.Hash][]int, len(spends))
	for i, cs := range spends {
		cid := cs.Coin.ID()
		index[cid] = append(index[cid], i)
	}
	switch matches := index[id]; len(matches) {
	case 0:
		return -1, malformed("no offer spend creates the security coin's parent %s", id.Hex())
	case 1:
		return matches[0], nil
	default:
		return -1, malformed("%d offer spends consume the security coin's parent %s", len(matches), id.Hex())
	}
}

// lockPayment is the notarized payment that moves the locked amount into the vault.
func lockPayment(lockerCoinID, vault common.Hash, amount uint64) coinset.NotarizedPayment {
	return coinset.NotarizedPayment{
		Nonce:    lockerCoinID,
		Payments: []coinset.Payment{{PuzzleHash: vault, Amount: amount}},
	}
}

// securityConditions binds the security spend to the locker coin and the receiver.
func securityConditions(lockerCoin coinset.Coin, receiver common.Address) []*clvm.Program {
	lockerID := lockerCoin.ID()
	return []*clvm.Program{
		coinset.AssertCoinAnnouncementCondition(coinset.AnnouncementID(lockerID, receiver.Bytes())),
		coinset.AssertConcurrentSpendCondition(lockerID),
		coinset.CreateCoin(lockerCoin.PuzzleHash, lockerCoin.Amount),
	}
}
