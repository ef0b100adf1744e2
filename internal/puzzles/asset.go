package puzzles

import (
	"fmt"
	"strings"

	"bridge-core/pkg/clvm"
	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AssetKind tells native-coin locks apart from tokenized (CAT) locks.
type AssetKind int

const (
	AssetNative AssetKind = iota
	AssetToken
)

// AssetRef identifies the asset being locked. TailHash is only meaningful for AssetToken.
type AssetRef struct {
	Kind     AssetKind
	TailHash common.Hash
}

// NativeAsset is the chain's native coin.
func NativeAsset() AssetRef { return AssetRef{Kind: AssetNative} }

// TokenAsset is the CAT with the given tail hash.
func TokenAsset(tail common.Hash) AssetRef { return AssetRef{Kind: AssetToken, TailHash: tail} }

// ParseAssetRef accepts "", "xch" or 32 zero bytes for the native coin, and a
// 32-byte hex tail hash otherwise.
func ParseAssetRef(s string) (AssetRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "xch") {
		return NativeAsset(), nil
	}
	b, err := hexutil.Decode("0x" + strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != common.HashLength {
		return AssetRef{}, fmt.Errorf("%w: asset id %q is not a 32-byte hex value", errno.ErrEncoding, s)
	}
	tail := common.BytesToHash(b)
	if tail == (common.Hash{}) {
		return NativeAsset(), nil
	}
	return TokenAsset(tail), nil
}

// IsNative reports whether the asset is the native coin.
func (a AssetRef) IsNative() bool { return a.Kind == AssetNative }

// Program is the curried asset argument: nil for native, the tail hash otherwise.
func (a AssetRef) Program() *clvm.Program {
	if a.IsNative() {
		return clvm.Nil()
	}
	return clvm.Hash(a.TailHash)
}

func (a AssetRef) String() string {
	if a.IsNative() {
		return "xch"
	}
	return a.TailHash.Hex()
}
