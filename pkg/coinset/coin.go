// Package coinset holds the coin-set chain value types: coins, coin spends,
// spend bundles and the condition and solution shapes the bridge emits.
package coinset

import (
	"crypto/sha256"

	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"

	"github.com/ethereum/go-ethereum/common"
)

// Coin is an unspent output identified by its parent, puzzle hash and amount.
type Coin struct {
	ParentCoinInfo common.Hash `json:"parent_coin_info"`
	PuzzleHash     common.Hash `json:"puzzle_hash"`
	Amount         uint64      `json:"amount"`
}

// ID returns sha256(parent || puzzle_hash || amount) with the amount in
// minimal integer-atom form.
func (c Coin) ID() common.Hash {
	h := sha256.New()
	h.Write(c.ParentCoinInfo[:])
	h.Write(c.PuzzleHash[:])
	h.Write(clvm.UintBytes(c.Amount))
	return common.BytesToHash(h.Sum(nil))
}

// Program renders the coin as (parent puzzle_hash amount).
func (c Coin) Program() *clvm.Program {
	return clvm.List(clvm.Hash(c.ParentCoinInfo), clvm.Hash(c.PuzzleHash), clvm.Uint(c.Amount))
}

// CoinSpend reveals the puzzle of a coin together with the solution spending it.
type CoinSpend struct {
	Coin         Coin          `json:"coin"`
	PuzzleReveal *clvm.Program `json:"puzzle_reveal"`
	Solution     *clvm.Program `json:"solution"`
}

// SpendBundle is the atomic submission unit.
type SpendBundle struct {
	CoinSpends          []CoinSpend   `json:"coin_spends"`
	AggregatedSignature bls.Signature `json:"aggregated_signature"`
}

// NewSpendBundle packages spends and an aggregated signature. The spend slice is
// copied so later changes by the caller do not leak into the bundle.
func NewSpendBundle(spends []CoinSpend, sig bls.Signature) *SpendBundle {
	out := make([]CoinSpend, len(spends))
	copy(out, spends)
	return &SpendBundle{CoinSpends: out, AggregatedSignature: sig}
}

// LineageProof proves the parent of a tokenized coin was itself a valid token.
type LineageProof struct {
	ParentName      common.Hash `json:"parent_name"`
	InnerPuzzleHash common.Hash `json:"inner_puzzle_hash"`
	Amount          uint64      `json:"amount"`
}

// Program renders the proof as (parent_name inner_puzzle_hash amount).
func (l LineageProof) Program() *clvm.Program {
	return clvm.List(clvm.Hash(l.ParentName), clvm.Hash(l.InnerPuzzleHash), clvm.Uint(l.Amount))
}
