package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bridge-core/internal/bridge"
	"bridge-core/internal/model"
	"bridge-core/internal/offer"
	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/cache"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/rpc"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	err   error
	calls int
}

func (b *fakeBuilder) Lock(ctx context.Context, req bridge.LockRequest, updateStatus bridge.StatusFunc) (*bridge.Result, error) {
	b.calls++
	updateStatus(bridge.StatusBuilding)
	if b.err != nil {
		return nil, b.err
	}
	sb := coinset.NewSpendBundle([]coinset.CoinSpend{{
		Coin:         coinset.Coin{ParentCoinInfo: common.HexToHash("0x01"), PuzzleHash: clvm.Uint(1).TreeHash(), Amount: 1000},
		PuzzleReveal: clvm.Uint(1),
		Solution:     clvm.Nil(),
	}}, bls.InfinitySignature)
	return &bridge.Result{
		Bundle:       sb,
		Nonce:        common.HexToHash("0xaa"),
		LockerCoinID: common.HexToHash("0xbb"),
		Asset:        puzzles.NativeAsset(),
		AssetAmount:  4000,
	}, nil
}

type fakeSubmitter struct {
	err    error
	pushed int
}

func (s *fakeSubmitter) PushTx(ctx context.Context, sb *coinset.SpendBundle) (*rpc.PushTxResponse, error) {
	s.pushed++
	if s.err != nil {
		return nil, s.err
	}
	return &rpc.PushTxResponse{Success: true, Status: "SUCCESS"}, nil
}

type memStore struct {
	mu      sync.Mutex
	records map[string]*model.BundleRecord
	outbox  []model.OutboxMessage
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*model.BundleRecord)}
}

func (m *memStore) Create(ctx context.Context, rec *model.BundleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.Nonce] = &cp
	return nil
}

func (m *memStore) GetByNonce(ctx context.Context, nonce string) (*model.BundleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[nonce]
	if !ok {
		return nil, errno.ErrBundleNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) MarkSubmitted(ctx context.Context, nonce string, event LockEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[nonce]
	rec.Status = model.BundleStatusSubmitted
	rec.Attempts++
	payload, _ := json.Marshal(event)
	m.outbox = append(m.outbox, model.OutboxMessage{ID: uint64(len(m.outbox) + 1), Topic: "bridge_lock_events", Key: nonce, Payload: payload, Status: model.OutboxPending})
	return nil
}

func (m *memStore) MarkFailed(ctx context.Context, nonce string, reason string, retryable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[nonce]
	rec.Status = model.BundleStatusFailed
	rec.Attempts++
	rec.LastError = reason
	rec.Retryable = retryable
	return nil
}

func (m *memStore) ListFailed(ctx context.Context, maxAttempts, limit int) ([]model.BundleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BundleRecord
	for _, rec := range m.records {
		if rec.Status == model.BundleStatusFailed && rec.Retryable && rec.Attempts < maxAttempts && len(out) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.OutboxMessage
	for _, msg := range m.outbox {
		if msg.Status == model.OutboxPending && len(out) < limit {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) SetOutboxStatus(ctx context.Context, id uint64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.outbox {
		if m.outbox[i].ID == id {
			m.outbox[i].Status = status
		}
	}
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]string)
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "t-" + key
	return l.held[key], true, nil
}

func (l *memLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type recordingEnqueuer struct{ nonces []string }

func (e *recordingEnqueuer) EnqueueSubmit(ctx context.Context, nonce string) error {
	e.nonces = append(e.nonces, nonce)
	return nil
}

func lockInput(submit bool) LockInput {
	return LockInput{
		Offer:               []byte(`{"coin_spends":[]}`),
		DestinationChain:    "bse",
		DestinationContract: common.HexToAddress("0x4444444444444444444444444444444444444444"),
		Receiver:            common.HexToAddress("0x6666666666666666666666666666666666666666"),
		Submit:              submit,
	}
}

func TestLockBuildOnly(t *testing.T) {
	store := newMemStore()
	sub := &fakeSubmitter{}
	svc := NewBridgeService(&fakeBuilder{}, sub, store, &memLocker{})

	out, err := svc.Lock(context.Background(), lockInput(false))
	require.NoError(t, err)
	assert.Equal(t, model.BundleStatusBuilt, out.Record.Status)
	assert.Equal(t, common.HexToHash("0xaa").Hex(), out.Record.Nonce)
	assert.Equal(t, "4000", out.Record.AssetAmount.String())
	assert.Equal(t, "xch", out.Record.AssetID)
	assert.NotEmpty(t, out.Record.RequestID)
	assert.Equal(t, 0, sub.pushed)

	stored, err := store.GetByNonce(context.Background(), out.Record.Nonce)
	require.NoError(t, err)
	assert.Equal(t, out.Record.BundleJSON, stored.BundleJSON)
}

func TestLockSubmit(t *testing.T) {
	store := newMemStore()
	svc := NewBridgeService(&fakeBuilder{}, &fakeSubmitter{}, store, &memLocker{})

	out, err := svc.Lock(context.Background(), lockInput(true))
	require.NoError(t, err)
	assert.Equal(t, model.BundleStatusSubmitted, out.Record.Status)

	require.Len(t, store.outbox, 1)
	ev, err := DecodeLockEvent(store.outbox[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, out.Record.Nonce, ev.Nonce)
	assert.Equal(t, "bse", ev.DestinationChain)
	assert.Equal(t, "4000", ev.AssetAmount)
}

func TestLockSubmitFailure(t *testing.T) {
	store := newMemStore()
	enq := &recordingEnqueuer{}
	sub := &fakeSubmitter{err: &rpc.SubmissionError{Reason: "connection refused", Bundle: []byte("{}")}}
	svc := NewBridgeService(&fakeBuilder{}, sub, store, &memLocker{}, WithEnqueuer(enq))

	out, err := svc.Lock(context.Background(), lockInput(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrSubmission)
	require.NotNil(t, out, "the record is returned so the bundle can be recovered")
	assert.Equal(t, model.BundleStatusFailed, out.Record.Status)
	assert.Empty(t, store.outbox)
	assert.Equal(t, []string{out.Record.Nonce}, enq.nonces)
	assert.True(t, out.Record.Retryable)

	// 节点明确拒绝的不重试
	enq.nonces = nil
	sub.err = &rpc.SubmissionError{HTTPStatus: 200, Reason: "DOUBLE_SPEND"}
	out, err = svc.Lock(context.Background(), lockInput(true))
	assert.ErrorIs(t, err, errno.ErrSubmission)
	assert.Empty(t, enq.nonces)
	assert.False(t, out.Record.Retryable)
	stored, err := store.GetByNonce(context.Background(), out.Record.Nonce)
	require.NoError(t, err)
	assert.False(t, stored.Retryable)
}

func TestRetryFailedSkipsRejected(t *testing.T) {
	store := newMemStore()
	locker := &memLocker{}
	sub := &fakeSubmitter{err: &rpc.SubmissionError{HTTPStatus: 400, Reason: "DOUBLE_SPEND"}}
	svc := NewBridgeService(&fakeBuilder{}, sub, store, locker)
	out, err := svc.Lock(context.Background(), lockInput(true))
	require.ErrorIs(t, err, errno.ErrSubmission)

	enq := &recordingEnqueuer{}
	jobs := NewCronService(locker, NewOutboxRelay(store, &fakeProducer{}, 10), svc, store, enq)
	jobs.RetryFailed()
	assert.Empty(t, enq.nonces, "rejected bundles stay FAILED")

	// 传输层失败的记录会被重新排队
	store.records[out.Record.Nonce].Retryable = true
	jobs.RetryFailed()
	assert.Equal(t, []string{out.Record.Nonce}, enq.nonces)

	store.records[out.Record.Nonce].Attempts = maxSubmitAttempts
	enq.nonces = nil
	jobs.RetryFailed()
	assert.Empty(t, enq.nonces)
}

func TestLockOfferInFlight(t *testing.T) {
	locker := &memLocker{}
	svc := NewBridgeService(&fakeBuilder{}, &fakeSubmitter{}, newMemStore(), locker)

	in := lockInput(false)
	_, ok, err := locker.Acquire(context.Background(), "offer:"+OfferHash(in.Offer), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Lock(context.Background(), in)
	assert.ErrorIs(t, err, errno.ErrOfferInFlight)
}

func TestLockOfferInFlightReformatted(t *testing.T) {
	doc := offer.Document{
		CoinSpends: []coinset.CoinSpend{{
			Coin:         coinset.Coin{ParentCoinInfo: common.HexToHash("0x01"), PuzzleHash: clvm.Uint(1).TreeHash(), Amount: 1000},
			PuzzleReveal: clvm.Uint(1),
			Solution:     clvm.Nil(),
		}},
		AggregatedSignature: bls.InfinitySignature,
	}
	compact, err := json.Marshal(doc)
	require.NoError(t, err)
	indented, err := json.MarshalIndent(doc, "", "\t")
	require.NoError(t, err)
	assert.Equal(t, OfferHash(compact), OfferHash(indented))

	locker := &memLocker{}
	svc := NewBridgeService(&fakeBuilder{}, &fakeSubmitter{}, newMemStore(), locker)
	_, ok, err := locker.Acquire(context.Background(), "offer:"+OfferHash(compact), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	in := lockInput(false)
	in.Offer = indented
	_, err = svc.Lock(context.Background(), in)
	assert.ErrorIs(t, err, errno.ErrOfferInFlight)
}

func TestLockBuildError(t *testing.T) {
	locker := &memLocker{}
	svc := NewBridgeService(&fakeBuilder{err: errno.ErrMalformedOffer}, &fakeSubmitter{}, newMemStore(), locker)

	_, err := svc.Lock(context.Background(), lockInput(false))
	assert.ErrorIs(t, err, errno.ErrMalformedOffer)
	assert.Empty(t, locker.held, "offer lock released after failure")
}

func TestResubmit(t *testing.T) {
	store := newMemStore()
	sub := &fakeSubmitter{err: errors.New("timeout")}
	svc := NewBridgeService(&fakeBuilder{}, sub, store, &memLocker{})

	out, err := svc.Lock(context.Background(), lockInput(true))
	require.Error(t, err)

	sub.err = nil
	rec, err := svc.Resubmit(context.Background(), out.Record.Nonce)
	require.NoError(t, err)
	assert.Equal(t, model.BundleStatusSubmitted, rec.Status)
	assert.Equal(t, 2, sub.pushed)

	_, err = svc.Resubmit(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, errno.ErrBundleNotFound)
}

func TestGetCachesSubmitted(t *testing.T) {
	store := newMemStore()
	svc := NewBridgeService(&fakeBuilder{}, &fakeSubmitter{}, store, &memLocker{}, WithCache(cache.NewMemoryCache(time.Minute, time.Minute)))

	out, err := svc.Lock(context.Background(), lockInput(true))
	require.NoError(t, err)

	rec, err := svc.Get(context.Background(), out.Record.Nonce)
	require.NoError(t, err)
	assert.Equal(t, model.BundleStatusSubmitted, rec.Status)

	delete(store.records, out.Record.Nonce)
	rec, err = svc.Get(context.Background(), out.Record.Nonce)
	require.NoError(t, err, "served from cache")
	assert.Equal(t, out.Record.Nonce, rec.Nonce)
}

func TestOutboxRelay(t *testing.T) {
	store := newMemStore()
	svc := NewBridgeService(&fakeBuilder{}, &fakeSubmitter{}, store, &memLocker{})
	_, err := svc.Lock(context.Background(), lockInput(true))
	require.NoError(t, err)

	prod := &fakeProducer{fail: true}
	relay := NewOutboxRelay(store, prod, 10)
	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.OutboxPending, store.outbox[0].Status)

	prod.fail = false
	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.OutboxSent, store.outbox[0].Status)
	assert.Equal(t, []string{common.HexToHash("0xaa").Hex()}, prod.keys)
}

type fakeProducer struct {
	fail bool
	keys []string
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakeProducer) Close() error { return nil }
