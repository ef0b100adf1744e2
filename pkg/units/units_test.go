package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals int32
		want     uint64
		err      error
	}{
		{"1", XCHDecimals, 1_000_000_000_000, nil},
		{"0.000000000001", XCHDecimals, 1, nil},
		{"12.345", CATDecimals, 12345, nil},
		{"0", CATDecimals, 0, nil},
		{"1.2345", CATDecimals, 0, ErrPrecision},
		{"-1", CATDecimals, 0, ErrNegativeAmount},
		{"18446744073709551616", 0, 0, ErrOverflow},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, tt.decimals)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseUnits("abc", CATDecimals)
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1", FormatUnits(1_000_000_000_000, XCHDecimals))
	assert.Equal(t, "12.345", FormatUnits(12345, CATDecimals))
	assert.Equal(t, "0.5", FormatUnits(500, CATDecimals))
	assert.Equal(t, "0", FormatUnits(0, CATDecimals))
}

func TestAfterTip(t *testing.T) {
	assert.Equal(t, uint64(9970), AfterTip(10000))
	assert.Equal(t, uint64(997), AfterTip(1000))
	assert.Equal(t, uint64(333), AfterTip(333))
	assert.Equal(t, uint64(0), AfterTip(0))
}

func TestQuoteLock(t *testing.T) {
	q, err := QuoteLock("1.5", true, 1000)
	require.NoError(t, err)
	assert.Equal(t, Quote{Amount: 1_500_000_000_000, OfferXCH: 1_500_000_001_000, Received: 1_495_500_000_000}, q)

	q, err = QuoteLock("10", false, 1000)
	require.NoError(t, err)
	assert.Equal(t, Quote{Amount: 10000, OfferXCH: 1000, OfferToken: 10000, Received: 9970}, q)

	_, err = QuoteLock("0.0001", false, 1000)
	assert.ErrorIs(t, err, ErrPrecision)
}
