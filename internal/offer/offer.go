// Package offer decodes a signed offer into the pieces the lock builder splices
// into its bundle.
package offer

import (
	"context"

	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
)

// Parsed is an offer broken down for bridging. The security coin is the
// offer-created coin whose spend the builder signs; its key is held by a KMS
// and referenced by SecurityCoinKey.
type Parsed struct {
	CoinSpends          []coinset.CoinSpend
	AggregatedSignature bls.Signature

	SecurityCoin       coinset.Coin
	SecurityCoinPuzzle *clvm.Program
	SecurityCoinKey    string

	Asset AssetSource
}

// AssetSource describes the asset being locked. For native locks only Ref is set.
type AssetSource struct {
	Ref          puzzles.AssetRef
	Coin         coinset.Coin
	LineageProof coinset.LineageProof
}

// Parser turns raw offer bytes into a Parsed offer.
type Parser interface {
	Parse(ctx context.Context, raw []byte) (*Parsed, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, raw []byte) (*Parsed, error)

func (f ParserFunc) Parse(ctx context.Context, raw []byte) (*Parsed, error) { return f(ctx, raw) }
