package bridge

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"bridge-core/internal/offer"
	"bridge-core/internal/portal"
	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/kms"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToll = 1000

var (
	testLauncher   = common.BytesToHash(bytes.Repeat([]byte{0x33}, 32))
	testContract   = common.BytesToAddress(bytes.Repeat([]byte{0x44}, 20))
	testReceiver   = common.BytesToAddress(bytes.Repeat([]byte{0x66}, 20))
	testTail       = common.BytesToHash(bytes.Repeat([]byte{0x55}, 32))
	testAggSigData = common.HexToHash("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb").Bytes()
)

type fixture struct {
	store    *puzzles.Store
	drivers  *puzzles.Drivers
	keys     *kms.LocalKMS
	network  coinset.Network
	maker    bls.SecretKey
	security bls.SecretKey
	makerMsg []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, bls.Init())

	store := puzzles.NewStore()
	store.Pin(puzzles.MessageCoinMod, common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)))
	store.Register(puzzles.BridgingPuzzle, clvm.List(clvm.Uint(1), clvm.String("bridging")))
	// CAT 和 settlement 只有 hash 内置，测试里注册替身程序
	store.Register(puzzles.CATMod, clvm.List(clvm.Uint(2), clvm.String("cat")))
	store.Register(puzzles.OfferMod, clvm.List(clvm.Uint(1), clvm.String("settlement")))

	maker, err := bls.KeyGen(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	security, err := bls.KeyGen(bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	return &fixture{
		store:   store,
		drivers: puzzles.NewDrivers(store),
		keys:    kms.NewLocalKMS(),
		network: coinset.Network{
			ChainID:          "testnet11",
			MessageToll:      testToll,
			PortalLauncherID: testLauncher,
			AggSigData:       testAggSigData,
		},
		maker:    maker,
		security: security,
		makerMsg: []byte("maker offer"),
	}
}

func (f *fixture) settlement(t *testing.T) *clvm.Program {
	t.Helper()
	prog, err := f.store.Program(puzzles.OfferMod)
	require.NoError(t, err)
	return prog
}

// nativeOffer returns an offer whose settlement spend creates the security coin
// with amount, next to one unrelated spend.
func (f *fixture) nativeOffer(t *testing.T, amount uint64) *offer.Parsed {
	t.Helper()
	settlement := f.settlement(t)
	settlementCoin := coinset.Coin{ParentCoinInfo: common.HexToHash("0x01"), PuzzleHash: settlement.TreeHash(), Amount: amount}
	other := clvm.List(clvm.Uint(9))
	otherCoin := coinset.Coin{ParentCoinInfo: common.HexToHash("0x02"), PuzzleHash: other.TreeHash(), Amount: 77}

	return f.withSecurityCoin(t, &offer.Parsed{
		CoinSpends: []coinset.CoinSpend{
			{Coin: settlementCoin, PuzzleReveal: settlement, Solution: clvm.Nil()},
			{Coin: otherCoin, PuzzleReveal: other, Solution: clvm.List(clvm.Uint(3))},
		},
		Asset: offer.AssetSource{Ref: puzzles.NativeAsset()},
	}, settlementCoin.ID(), amount)
}

// tokenOffer returns an offer locking a CAT settlement coin of amount.
func (f *fixture) tokenOffer(t *testing.T, amount uint64) *offer.Parsed {
	t.Helper()
	settlement, err := f.store.Lookup(puzzles.OfferMod)
	require.NoError(t, err)
	catHash, err := f.drivers.CATPuzzleHash(testTail, settlement.Hash)
	require.NoError(t, err)

	fee := clvm.List(clvm.Uint(8))
	feeCoin := coinset.Coin{ParentCoinInfo: common.HexToHash("0x03"), PuzzleHash: fee.TreeHash(), Amount: testToll}
	return f.withSecurityCoin(t, &offer.Parsed{
		CoinSpends: []coinset.CoinSpend{{Coin: feeCoin, PuzzleReveal: fee, Solution: clvm.Nil()}},
		Asset: offer.AssetSource{
			Ref:          puzzles.TokenAsset(testTail),
			Coin:         coinset.Coin{ParentCoinInfo: common.HexToHash("0x0a"), PuzzleHash: catHash, Amount: amount},
			LineageProof: coinset.LineageProof{ParentName: common.HexToHash("0x0b"), InnerPuzzleHash: common.HexToHash("0x0c"), Amount: amount},
		},
	}, feeCoin.ID(), testToll)
}

func (f *fixture) withSecurityCoin(t *testing.T, parsed *offer.Parsed, parent common.Hash, amount uint64) *offer.Parsed {
	t.Helper()
	keyID, err := f.keys.ImportKey(kms.KeyTypeBLS, f.security.Bytes())
	require.NoError(t, err)
	makerSig, err := bls.Sign(f.maker, f.makerMsg)
	require.NoError(t, err)

	puzzle := clvm.List(clvm.Uint(7), clvm.String("standard"))
	parsed.AggregatedSignature = makerSig
	parsed.SecurityCoin = coinset.Coin{ParentCoinInfo: parent, PuzzleHash: puzzle.TreeHash(), Amount: amount}
	parsed.SecurityCoinPuzzle = puzzle
	parsed.SecurityCoinKey = keyID
	return parsed
}

func (f *fixture) builder(parsed *offer.Parsed, opts ...Option) *Builder {
	parser := offer.ParserFunc(func(ctx context.Context, raw []byte) (*offer.Parsed, error) {
		return parsed, nil
	})
	return NewBuilder(f.network, f.drivers, parser, portal.New(f.store, f.keys), opts...)
}

func lockRequest() LockRequest {
	return LockRequest{
		Offer:               []byte("offer1..."),
		DestinationChain:    "bse",
		DestinationContract: testContract,
		Receiver:            testReceiver,
	}
}

func assertRevealsMatch(t *testing.T, bundle *coinset.SpendBundle) {
	t.Helper()
	for i, cs := range bundle.CoinSpends {
		assert.Equal(t, cs.Coin.PuzzleHash, cs.PuzzleReveal.TreeHash(), "spend %d", i)
	}
}

func (f *fixture) assertSignature(t *testing.T, bundle *coinset.SpendBundle, securityCoin coinset.Coin, lockerCoin coinset.Coin) {
	t.Helper()
	msg := coinset.AggSigMeMessage(securityCoin, securityConditions(lockerCoin, testReceiver), testAggSigData)
	ok, err := bls.AggregateVerify(
		[]bls.PublicKey{f.maker.PublicKey(), f.security.PublicKey()},
		[][]byte{f.makerMsg, msg},
		bundle.AggregatedSignature,
	)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockNative(t *testing.T) {
	f := newFixture(t)
	parsed := f.nativeOffer(t, 5000)
	originalSolution := parsed.CoinSpends[0].Solution

	var statuses []string
	res, err := f.builder(parsed).Lock(context.Background(), lockRequest(), func(s string) { statuses = append(statuses, s) })
	require.NoError(t, err)
	assert.Equal(t, []string{StatusInitializing, StatusParsing, StatusBuilding}, statuses)

	spends := res.Bundle.CoinSpends
	require.Len(t, spends, 5)
	assertRevealsMatch(t, res.Bundle)
	assert.Equal(t, uint64(4000), res.AssetAmount)
	assert.True(t, res.Asset.IsNative())

	// security coin 金额被改写成 toll
	securityCoin := parsed.SecurityCoin
	securityCoin.Amount = testToll
	locker, security, message := spends[2], spends[3], spends[4]

	_, lockerHash, err := f.drivers.LockerPuzzle("bse", testContract.Bytes(), testLauncher, puzzles.NativeAsset())
	require.NoError(t, err)
	assert.Equal(t, coinset.Coin{ParentCoinInfo: securityCoin.ID(), PuzzleHash: lockerHash, Amount: testToll}, locker.Coin)
	assert.Equal(t, res.LockerCoinID, locker.Coin.ID())
	assert.True(t, locker.Solution.Equal(puzzles.LockerSolution(testToll, locker.Coin.ID(), 4000, testReceiver.Bytes())))

	vault, err := f.drivers.VaultPuzzleHash("bse", testContract.Bytes(), testLauncher, puzzles.NativeAsset())
	require.NoError(t, err)
	want := coinset.NotarizedPayments(
		coinset.NotarizedPayment{
			Nonce:    spends[0].Coin.ID(),
			Payments: []coinset.Payment{{PuzzleHash: securityCoin.PuzzleHash, Amount: testToll}},
		},
		lockPayment(locker.Coin.ID(), vault, 4000),
	)
	assert.True(t, spends[0].Solution.Equal(want))
	assert.True(t, spends[1].Solution.Equal(clvm.List(clvm.Uint(3))), "unrelated spend must be untouched")
	assert.Same(t, originalSolution, parsed.CoinSpends[0].Solution, "parsed offer must not be mutated")

	assert.Equal(t, securityCoin, security.Coin)
	assert.True(t, security.Solution.Equal(coinset.StandardSolution(securityConditions(locker.Coin, testReceiver)...)))

	assert.Equal(t, locker.Coin.ID(), message.Coin.ParentCoinInfo)
	assert.Equal(t, message.Coin.ID(), res.Nonce)

	f.assertSignature(t, res.Bundle, securityCoin, locker.Coin)
}

func TestLockToken(t *testing.T) {
	f := newFixture(t)
	parsed := f.tokenOffer(t, 250)

	bundle, nonce, err := f.builder(parsed).LockAssets(context.Background(), lockRequest(), nil)
	require.NoError(t, err)

	spends := bundle.CoinSpends
	require.Len(t, spends, 5)
	assertRevealsMatch(t, bundle)
	assert.Equal(t, spends[4].Coin.ID(), nonce)
	assert.True(t, spends[0].Solution.IsNil(), "offer spends pass through for tokens")

	locker, cat := spends[1], spends[2]
	assert.True(t, locker.Solution.Equal(puzzles.LockerSolution(testToll, locker.Coin.ID(), 250, testReceiver.Bytes())))

	src := parsed.Asset
	assert.Equal(t, src.Coin, cat.Coin)
	settlement, err := f.store.Lookup(puzzles.OfferMod)
	require.NoError(t, err)
	vault, err := f.drivers.VaultPuzzleHash("bse", testContract.Bytes(), testLauncher, src.Ref)
	require.NoError(t, err)
	want := puzzles.CATSolution(
		coinset.NotarizedPayments(lockPayment(locker.Coin.ID(), vault, 250)),
		src.LineageProof,
		src.Coin.ID(),
		src.Coin,
		coinset.LineageProof{ParentName: src.Coin.ParentCoinInfo, InnerPuzzleHash: settlement.Hash, Amount: 250},
		250,
		0,
	)
	assert.True(t, cat.Solution.Equal(want))

	securityCoin := parsed.SecurityCoin
	assert.Equal(t, securityCoin, spends[3].Coin)
	f.assertSignature(t, bundle, securityCoin, locker.Coin)
}

func TestLockDeterministic(t *testing.T) {
	f := newFixture(t)
	parsed := f.nativeOffer(t, 5000)
	a, err := f.builder(parsed).Lock(context.Background(), lockRequest(), nil)
	require.NoError(t, err)
	b, err := f.builder(parsed).Lock(context.Background(), lockRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, a.Nonce, b.Nonce)
	assert.Equal(t, a.Bundle.AggregatedSignature, b.Bundle.AggregatedSignature)
	for i := range a.Bundle.CoinSpends {
		assert.True(t, a.Bundle.CoinSpends[i].Solution.Equal(b.Bundle.CoinSpends[i].Solution))
	}
}

func TestLockMalformed(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(p *offer.Parsed) *offer.Parsed
		want   error
	}{
		{"no spend creates the security coin", func(p *offer.Parsed) *offer.Parsed {
			p.SecurityCoin.ParentCoinInfo = common.HexToHash("0xdead")
			return p
		}, errno.ErrMalformedOffer},
		{"security parent spent twice", func(p *offer.Parsed) *offer.Parsed {
			p.CoinSpends = append(p.CoinSpends, p.CoinSpends[0])
			return p
		}, errno.ErrMalformedOffer},
		{"amount below toll", func(p *offer.Parsed) *offer.Parsed {
			p.SecurityCoin.Amount = testToll - 1
			return p
		}, errno.ErrMalformedOffer},
		{"unknown security key", func(p *offer.Parsed) *offer.Parsed {
			p.SecurityCoinKey = "missing"
			return p
		}, kms.ErrKeyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, nonce, err := f.builder(tt.mutate(f.nativeOffer(t, 5000))).LockAssets(context.Background(), lockRequest(), nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, bundle)
			assert.Equal(t, common.Hash{}, nonce)
		})
	}
}

func TestLockTokenWrongSourcePuzzle(t *testing.T) {
	f := newFixture(t)
	parsed := f.tokenOffer(t, 250)
	parsed.Asset.Coin.PuzzleHash = common.HexToHash("0xbeef")

	_, _, err := f.builder(parsed).LockAssets(context.Background(), lockRequest(), nil)
	assert.ErrorIs(t, err, errno.ErrMalformedOffer)
}

func TestLockTokenPublishedTemplates(t *testing.T) {
	f := newFixture(t)
	// 只有内置的 cat_v2 / settlement hash, 没有字节
	store := puzzles.NewStore()
	store.Pin(puzzles.MessageCoinMod, common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)))
	store.Register(puzzles.BridgingPuzzle, clvm.List(clvm.Uint(1), clvm.String("bridging")))
	f.store, f.drivers = store, puzzles.NewDrivers(store)

	catHash := func(tail common.Hash) common.Hash {
		return clvm.CurryTreeHash(puzzles.CATModHash,
			clvm.AtomHash(puzzles.CATModHash.Bytes()), clvm.AtomHash(tail.Bytes()), puzzles.OfferModHash)
	}

	parsed := f.tokenOffer(t, 250)
	require.Equal(t, catHash(testTail), parsed.Asset.Coin.PuzzleHash)
	_, _, err := f.builder(parsed).LockAssets(context.Background(), lockRequest(), nil)
	assert.ErrorIs(t, err, errno.ErrInvalidTemplate)
	assert.NotErrorIs(t, err, errno.ErrMalformedOffer)

	parsed = f.tokenOffer(t, 250)
	parsed.Asset.Coin.PuzzleHash = catHash(common.HexToHash("0x99"))
	_, _, err = f.builder(parsed).LockAssets(context.Background(), lockRequest(), nil)
	assert.ErrorIs(t, err, errno.ErrMalformedOffer)
}

func TestLockReleasesSecurityKey(t *testing.T) {
	f := newFixture(t)

	parsed := f.nativeOffer(t, 5000)
	_, err := f.builder(parsed, WithKeyRelease(f.keys)).Lock(context.Background(), lockRequest(), nil)
	require.NoError(t, err)
	_, err = f.keys.Metadata(parsed.SecurityCoinKey)
	assert.ErrorIs(t, err, kms.ErrKeyNotFound)

	parsed = f.nativeOffer(t, 5000)
	parsed.SecurityCoin.Amount = testToll - 1
	_, err = f.builder(parsed, WithKeyRelease(f.keys)).Lock(context.Background(), lockRequest(), nil)
	require.ErrorIs(t, err, errno.ErrMalformedOffer)
	_, err = f.keys.Metadata(parsed.SecurityCoinKey)
	assert.ErrorIs(t, err, kms.ErrKeyNotFound)

	// 不带 option 时 key 保留给调用方
	parsed = f.nativeOffer(t, 5000)
	_, err = f.builder(parsed).Lock(context.Background(), lockRequest(), nil)
	require.NoError(t, err)
	_, err = f.keys.Metadata(parsed.SecurityCoinKey)
	assert.NoError(t, err)
}

func TestLockRejectsEmptyRoute(t *testing.T) {
	f := newFixture(t)

	req := lockRequest()
	req.Receiver = common.Address{}
	_, _, err := f.builder(f.nativeOffer(t, 5000)).LockAssets(context.Background(), req, nil)
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)

	req = lockRequest()
	req.DestinationChain = ""
	_, _, err = f.builder(f.nativeOffer(t, 5000)).LockAssets(context.Background(), req, nil)
	assert.ErrorIs(t, err, errno.ErrEncoding)
}

func TestLockParserError(t *testing.T) {
	f := newFixture(t)
	parser := offer.ParserFunc(func(ctx context.Context, raw []byte) (*offer.Parsed, error) {
		return nil, errno.ErrMalformedOffer
	})
	var statuses []string
	b := NewBuilder(f.network, f.drivers, parser, portal.New(f.store, f.keys))
	_, _, err := b.LockAssets(context.Background(), lockRequest(), func(s string) { statuses = append(statuses, s) })
	assert.True(t, errors.Is(err, errno.ErrMalformedOffer))
	assert.Equal(t, []string{StatusInitializing, StatusParsing}, statuses)
}

func TestAssembleBundle(t *testing.T) {
	require.NoError(t, bls.Init())
	bundle, err := AssembleBundle(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, bundle.CoinSpends)
	assert.Equal(t, bls.InfinitySignature, bundle.AggregatedSignature)
}
