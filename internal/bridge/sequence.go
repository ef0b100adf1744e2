package bridge

import (
	"context"
	"fmt"

	"bridge-core/internal/offer"
	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
)

// sequence owns the spend and signature lists of one lock while it is built.
// Spends are appended in protocol order: offer spends, locker spend, asset
// source spend (tokens only), security coin spend, message coin spend.
type sequence struct {
	b     *Builder
	req   LockRequest
	offer *offer.Parsed

	spends      []coinset.CoinSpend
	offerSpends int
	sigs        []bls.Signature

	securityCoin coinset.Coin
	lockerCoin   coinset.Coin
	messageCoin  coinset.Coin
	assetAmount  uint64
}

func newSequence(b *Builder, req LockRequest, parsed *offer.Parsed) *sequence {
	spends := make([]coinset.CoinSpend, len(parsed.CoinSpends), len(parsed.CoinSpends)+4)
	copy(spends, parsed.CoinSpends)
	return &sequence{
		b:           b,
		req:         req,
		offer:       parsed,
		spends:      spends,
		offerSpends: len(spends),
		sigs:        []bls.Signature{parsed.AggregatedSignature},
	}
}

func (s *sequence) run(ctx context.Context) error {
	net := s.b.network
	asset := s.offer.Asset.Ref

	if s.req.Receiver == ([20]byte{}) {
		return fmt.Errorf("%w: empty receiver", errno.ErrInvalidAddress)
	}

	// security coin 的声明金额 X 里只留下 toll，其余 X-T 锁进 vault
	declared := s.offer.SecurityCoin.Amount
	s.securityCoin = s.offer.SecurityCoin
	s.securityCoin.Amount = net.MessageToll

	switch asset.Kind {
	case puzzles.AssetNative:
		if declared < net.MessageToll {
			return malformed("security coin amount %d is below the message toll %d", declared, net.MessageToll)
		}
		s.assetAmount = declared - net.MessageToll
	case puzzles.AssetToken:
		s.assetAmount = s.offer.Asset.Coin.Amount
	default:
		return malformed("unknown asset kind %d", asset.Kind)
	}

	if err := s.appendLockerSpend(); err != nil {
		return err
	}

	vault, err := s.b.drivers.VaultPuzzleHash(s.req.DestinationChain, s.req.DestinationContract.Bytes(), net.PortalLauncherID, asset)
	if err != nil {
		return fmt.Errorf("vault puzzle: %w", err)
	}
	payment := lockPayment(s.lockerCoin.ID(), vault, s.assetAmount)

	switch asset.Kind {
	case puzzles.AssetToken:
		err = s.appendTokenSpend(payment)
	case puzzles.AssetNative:
		err = s.spliceNativePayment(payment)
	}
	if err != nil {
		return err
	}

	if err := s.appendSecuritySpend(ctx); err != nil {
		return err
	}
	return s.appendMessageSpend(ctx)
}

// appendLockerSpend derives the locker coin from the rewritten security coin
// and spends it with the locker solution.
func (s *sequence) appendLockerSpend() error {
	net := s.b.network
	puzzle, puzzleHash, err := s.b.drivers.LockerPuzzle(s.req.DestinationChain, s.req.DestinationContract.Bytes(), net.PortalLauncherID, s.offer.Asset.Ref)
	if err != nil {
		return fmt.Errorf("locker puzzle: %w", err)
	}
	s.lockerCoin = coinset.Coin{
		ParentCoinInfo: s.securityCoin.ID(),
		PuzzleHash:     puzzleHash,
		Amount:         net.MessageToll,
	}
	s.spends = append(s.spends, coinset.CoinSpend{
		Coin:         s.lockerCoin,
		PuzzleReveal: puzzle,
		Solution:     puzzles.LockerSolution(s.lockerCoin.Amount, s.lockerCoin.ID(), s.assetAmount, s.req.Receiver.Bytes()),
	})
	return nil
}

// appendTokenSpend spends the offered CAT coin, whose inner puzzle is the
// settlement template, paying the locked amount into the vault.
func (s *sequence) appendTokenSpend(payment coinset.NotarizedPayment) error {
	src := s.offer.Asset
	templates := s.b.drivers.Templates()
	settlement, err := templates.Lookup(puzzles.OfferMod)
	if err != nil {
		return err
	}
	// 先按 hash 校验, 不需要模板字节
	wantHash, err := s.b.drivers.CATPuzzleHash(src.Ref.TailHash, settlement.Hash)
	if err != nil {
		return fmt.Errorf("token puzzle hash: %w", err)
	}
	if wantHash != src.Coin.PuzzleHash {
		return malformed("asset source coin %s is not a %s settlement coin", src.Coin.ID().Hex(), src.Ref)
	}
	inner, err := templates.Program(puzzles.OfferMod)
	if err != nil {
		return err
	}
	puzzle, _, err := s.b.drivers.CATPuzzle(src.Ref.TailHash, inner)
	if err != nil {
		return fmt.Errorf("token puzzle: %w", err)
	}

	nextProof := coinset.LineageProof{
		ParentName:      src.Coin.ParentCoinInfo,
		InnerPuzzleHash: settlement.Hash,
		Amount:          src.Coin.Amount,
	}
	solution := puzzles.CATSolution(
		coinset.NotarizedPayments(payment),
		src.LineageProof,
		src.Coin.ID(),
		src.Coin,
		nextProof,
		src.Coin.Amount,
		0,
	)
	s.spends = append(s.spends, coinset.CoinSpend{Coin: src.Coin, PuzzleReveal: puzzle, Solution: solution})
	return nil
}

// spliceNativePayment rewrites the settlement spend that creates the security
// coin so it also pays the locked amount into the vault.
func (s *sequence) spliceNativePayment(payment coinset.NotarizedPayment) error {
	idx, err := findSpendByCoinID(s.spends[:s.offerSpends], s.securityCoin.ParentCoinInfo)
	if err != nil {
		return err
	}
	spentID := s.spends[idx].Coin.ID()
	s.spends[idx].Solution = coinset.NotarizedPayments(
		coinset.NotarizedPayment{
			Nonce:    spentID,
			Payments: []coinset.Payment{{PuzzleHash: s.securityCoin.PuzzleHash, Amount: s.securityCoin.Amount}},
		},
		payment,
	)
	return nil
}

func (s *sequence) appendSecuritySpend(ctx context.Context) error {
	net := s.b.network
	conds := securityConditions(s.lockerCoin, s.req.Receiver)
	s.spends = append(s.spends, coinset.CoinSpend{
		Coin:         s.securityCoin,
		PuzzleReveal: s.offer.SecurityCoinPuzzle,
		Solution:     coinset.StandardSolution(conds...),
	})
	sig, err := s.b.portal.SecurityCoinSig(ctx, s.securityCoin, conds, s.offer.SecurityCoinKey, net.AggSigData)
	if err != nil {
		return err
	}
	s.sigs = append(s.sigs, sig)
	return nil
}

func (s *sequence) appendMessageSpend(ctx context.Context) error {
	cs, err := s.b.portal.SpendOutgoingMessageCoin(ctx, s.b.network, s.lockerCoin.ID())
	if err != nil {
		return fmt.Errorf("message coin: %w", err)
	}
	s.spends = append(s.spends, cs)
	s.messageCoin = cs.Coin
	return nil
}
