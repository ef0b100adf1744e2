package offer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bridge-core/internal/puzzles"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/kms"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Document is the JSON form of a decoded offer as exported by the wallet.
type Document struct {
	CoinSpends              []coinset.CoinSpend   `json:"coin_spends"`
	AggregatedSignature     bls.Signature         `json:"aggregated_signature"`
	SecurityCoin            coinset.Coin          `json:"security_coin"`
	SecurityCoinPuzzle      *clvm.Program         `json:"security_coin_puzzle"`
	SecurityCoinSK          hexutil.Bytes         `json:"security_coin_sk"`
	AssetID                 string                `json:"asset_id"`
	AssetSourceCoin         *coinset.Coin         `json:"asset_source_coin,omitempty"`
	AssetSourceLineageProof *coinset.LineageProof `json:"asset_source_lineage_proof,omitempty"`
}

// JSONParser reads Document values and imports the security-coin key into a KMS.
type JSONParser struct {
	keys kms.KeyManager
}

// NewJSONParser returns a parser that stores security keys in keys.
func NewJSONParser(keys kms.KeyManager) *JSONParser {
	return &JSONParser{keys: keys}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errno.ErrMalformedOffer, fmt.Sprintf(format, args...))
}

// Parse validates the document and returns the parsed offer. Every spend's
// puzzle reveal must hash to its coin's puzzle hash.
func (p *JSONParser) Parse(ctx context.Context, raw []byte) (*Parsed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, malformed("decode offer: %v", err)
	}
	if len(doc.CoinSpends) == 0 {
		return nil, malformed("offer has no coin spends")
	}
	if err := doc.AggregatedSignature.Validate(); err != nil {
		return nil, malformed("aggregated signature: %v", err)
	}
	for i, cs := range doc.CoinSpends {
		if cs.PuzzleReveal == nil || cs.Solution == nil {
			return nil, malformed("coin spend %d is missing its puzzle reveal or solution", i)
		}
		if got := cs.PuzzleReveal.TreeHash(); got != cs.Coin.PuzzleHash {
			return nil, malformed("coin %s: puzzle reveal hashes to %s", cs.Coin.ID().Hex(), got.Hex())
		}
	}
	if doc.SecurityCoinPuzzle == nil {
		return nil, malformed("missing security coin puzzle")
	}
	if doc.SecurityCoinPuzzle.TreeHash() != doc.SecurityCoin.PuzzleHash {
		return nil, malformed("security coin %s: puzzle does not match puzzle hash", doc.SecurityCoin.ID().Hex())
	}

	ref, err := puzzles.ParseAssetRef(doc.AssetID)
	if err != nil {
		return nil, malformed("%v", err)
	}
	asset := AssetSource{Ref: ref}
	if !ref.IsNative() {
		if doc.AssetSourceCoin == nil || doc.AssetSourceLineageProof == nil {
			return nil, malformed("token offer for %s lacks the asset source coin or its lineage proof", ref)
		}
		asset.Coin = *doc.AssetSourceCoin
		asset.LineageProof = *doc.AssetSourceLineageProof
	}

	keyID, err := p.keys.ImportKey(kms.KeyTypeBLS, doc.SecurityCoinSK)
	if errors.Is(err, errno.ErrCryptoBackend) {
		return nil, err
	}
	if err != nil {
		return nil, malformed("security coin key: %v", err)
	}

	return &Parsed{
		CoinSpends:          doc.CoinSpends,
		AggregatedSignature: doc.AggregatedSignature,
		SecurityCoin:        doc.SecurityCoin,
		SecurityCoinPuzzle:  doc.SecurityCoinPuzzle,
		SecurityCoinKey:     keyID,
		Asset:               asset,
	}, nil
}
