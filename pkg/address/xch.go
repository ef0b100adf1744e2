package address

import (
	"fmt"
	"strings"

	"bridge-core/pkg/errno"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Address prefixes of the coin-set networks.
const (
	MainnetPrefix = "xch"
	TestnetPrefix = "txch"
)

// XCHGenerator 在 puzzle hash 和 bech32m 地址之间转换
type XCHGenerator struct {
	prefix string
}

func NewXCHGenerator(prefix string) *XCHGenerator {
	return &XCHGenerator{prefix: prefix}
}

// PrefixForChain maps a network id to its address prefix: mainnet ids use xch,
// everything else txch.
func PrefixForChain(chainID string) string {
	switch strings.ToLower(chainID) {
	case "xch", "mainnet":
		return MainnetPrefix
	default:
		return TestnetPrefix
	}
}

// PuzzleHashToAddress encodes a puzzle hash as a bech32m address.
func (g *XCHGenerator) PuzzleHashToAddress(puzzleHash common.Hash) (string, error) {
	data, err := bech32.ConvertBits(puzzleHash.Bytes(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(g.prefix, data)
}

// AddressToPuzzleHash decodes a bech32m address of this generator's prefix.
func (g *XCHGenerator) AddressToPuzzleHash(addr string) (common.Hash, error) {
	hrp, data, version, err := bech32.DecodeGeneric(addr)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", errno.ErrInvalidAddress, err)
	}
	if version != bech32.VersionM {
		return common.Hash{}, fmt.Errorf("%w: %s is not bech32m", errno.ErrInvalidAddress, addr)
	}
	if hrp != g.prefix {
		return common.Hash{}, fmt.Errorf("%w: prefix %q, want %q", errno.ErrInvalidAddress, hrp, g.prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", errno.ErrInvalidAddress, err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %d byte payload", errno.ErrInvalidAddress, len(raw))
	}
	return common.BytesToHash(raw), nil
}
