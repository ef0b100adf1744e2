// Package units converts between human-readable amounts and base units and
// quotes what a lock offer has to contain.
package units

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	XCHDecimals int32 = 12 // mojos per XCH
	CATDecimals int32 = 3

	// TipBasisPoints is the protocol tip taken from the bridged amount.
	TipBasisPoints = 30
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrPrecision      = errors.New("amount has more decimal places than the asset allows")
	ErrOverflow       = errors.New("amount does not fit in 64 bits")
)

// ParseUnits converts a decimal string to base units.
func ParseUnits(amount string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s with %d decimals", ErrPrecision, amount, decimals)
	}
	return toUint64(shifted)
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(v uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals).String()
}

// AfterTip is v minus the protocol tip, rounded in the receiver's disfavor.
func AfterTip(v uint64) uint64 {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
	tip := d.Mul(decimal.NewFromInt(TipBasisPoints)).Div(decimal.NewFromInt(10000)).Floor()
	out, _ := toUint64(d.Sub(tip))
	return out
}

// Quote is what a lock offer must give and what the receiver gets.
type Quote struct {
	Amount     uint64 `json:"amount"`      // bridged amount in base units
	OfferXCH   uint64 `json:"offer_xch"`   // mojos the offer gives
	OfferToken uint64 `json:"offer_token"` // CAT base units the offer gives
	Received   uint64 `json:"received"`
}

// QuoteLock prices a lock of amount. A native lock asks for toll + amount XCH;
// a token lock asks for amount CAT plus toll XCH.
func QuoteLock(amount string, native bool, toll uint64) (Quote, error) {
	decimals := CATDecimals
	if native {
		decimals = XCHDecimals
	}
	v, err := ParseUnits(amount, decimals)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Amount: v, OfferXCH: toll, Received: AfterTip(v)}
	if !native {
		q.OfferToken = v
		return q, nil
	}
	if v > ^uint64(0)-toll {
		return Quote{}, ErrOverflow
	}
	q.OfferXCH += v
	return q, nil
}

func toUint64(d decimal.Decimal) (uint64, error) {
	b := d.BigInt()
	if !b.IsUint64() {
		return 0, ErrOverflow
	}
	return b.Uint64(), nil
}
