package address

import (
	"testing"

	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPuzzleHashToAddress(t *testing.T) {
	tests := []struct {
		prefix string
		ph     common.Hash
		want   string
	}{
		{MainnetPrefix, common.Hash{}, "xch1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq2u30kz"},
		{TestnetPrefix, common.HexToHash("a9a99b9965d671d4e8910b8270f613aecdba885b2c604af2144d6dfa6a1b908c"),
			"txch14x5ehxt96ecaf6y3pwp8pasn4mxm4zzm93sy4us5f4kl56smjzxq4pmmct"},
	}
	for _, tt := range tests {
		g := NewXCHGenerator(tt.prefix)
		addr, err := g.PuzzleHashToAddress(tt.ph)
		require.NoError(t, err)
		assert.Equal(t, tt.want, addr)

		back, err := g.AddressToPuzzleHash(addr)
		require.NoError(t, err)
		assert.Equal(t, tt.ph, back)
	}
}

func TestAddressToPuzzleHashErrors(t *testing.T) {
	g := NewXCHGenerator(MainnetPrefix)

	_, err := g.AddressToPuzzleHash("txch14x5ehxt96ecaf6y3pwp8pasn4mxm4zzm93sy4us5f4kl56smjzxq4pmmct")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress, "wrong prefix")

	_, err = g.AddressToPuzzleHash("xch1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq2u30ka")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress, "bad checksum")

	_, err = g.AddressToPuzzleHash("not an address")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)
}

func TestPrefixForChain(t *testing.T) {
	assert.Equal(t, MainnetPrefix, PrefixForChain("xch"))
	assert.Equal(t, TestnetPrefix, PrefixForChain("testnet11"))
}

func TestParseEVM(t *testing.T) {
	addr, err := ParseEVM("0x4444444444444444444444444444444444444444")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x4444444444444444444444444444444444444444"), addr)

	_, err = ParseEVM("0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)
	_, err = ParseEVM("0x1234")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)
}
