// Package portal builds the spends that talk to the bridge portal: the outgoing
// message coin and the signature over the security coin's conditions.
package portal

import (
	"context"
	"fmt"

	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/kms"

	"github.com/ethereum/go-ethereum/common"
)

// Portal is what the lock builder needs from the messaging layer.
type Portal interface {
	// SpendOutgoingMessageCoin returns the spend that emits the cross-chain
	// message correlated with lockerCoinName.
	SpendOutgoingMessageCoin(ctx context.Context, network coinset.Network, lockerCoinName common.Hash) (coinset.CoinSpend, error)
	// SecurityCoinSig signs the AGG_SIG_ME message of a standard spend of coin
	// with the given conditions using the key behind keyID.
	SecurityCoinSig(ctx context.Context, coin coinset.Coin, conditions []*clvm.Program, keyID string, aggSigData []byte) (bls.Signature, error)
}

// Client implements Portal over a template store and a KMS.
type Client struct {
	templates *puzzles.Store
	keys      kms.KeyManager
}

// New returns a portal client.
func New(templates *puzzles.Store, keys kms.KeyManager) *Client {
	return &Client{templates: templates, keys: keys}
}

// SpendOutgoingMessageCoin spends the message coin created by the locker coin:
// it carries the message toll, runs the bridging puzzle and is solved with
// the locker coin name.
func (c *Client) SpendOutgoingMessageCoin(ctx context.Context, network coinset.Network, lockerCoinName common.Hash) (coinset.CoinSpend, error) {
	if err := ctx.Err(); err != nil {
		return coinset.CoinSpend{}, err
	}
	puzzle, err := c.templates.Program(puzzles.BridgingPuzzle)
	if err != nil {
		return coinset.CoinSpend{}, err
	}
	coin := coinset.Coin{
		ParentCoinInfo: lockerCoinName,
		PuzzleHash:     puzzle.TreeHash(),
		Amount:         network.MessageToll,
	}
	return coinset.CoinSpend{
		Coin:         coin,
		PuzzleReveal: puzzle,
		Solution:     clvm.List(clvm.Hash(lockerCoinName)),
	}, nil
}

// SecurityCoinSig signs sha256tree((q . conditions)) || coin_id || aggSigData.
func (c *Client) SecurityCoinSig(ctx context.Context, coin coinset.Coin, conditions []*clvm.Program, keyID string, aggSigData []byte) (bls.Signature, error) {
	if err := ctx.Err(); err != nil {
		return bls.Signature{}, err
	}
	msg := coinset.AggSigMeMessage(coin, conditions, aggSigData)
	raw, err := c.keys.Sign(keyID, msg)
	if err != nil {
		return bls.Signature{}, fmt.Errorf("sign security coin %s: %w", coin.ID().Hex(), err)
	}
	var sig bls.Signature
	if len(raw) != len(sig) {
		return bls.Signature{}, fmt.Errorf("sign security coin %s: unexpected signature length %d", coin.ID().Hex(), len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}
