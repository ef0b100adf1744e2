package bridge

import (
	"fmt"

	"bridge-core/pkg/bls"
	"bridge-core/pkg/coinset"
)

// AssembleBundle aggregates sigs and packages them with spends. Spend order is
// preserved; signature order does not affect the result.
func AssembleBundle(spends []coinset.CoinSpend, sigs []bls.Signature) (*coinset.SpendBundle, error) {
	agg, err := bls.Aggregate(sigs)
	if err != nil {
		return nil, fmt.Errorf("aggregate signatures: %w", err)
	}
	return coinset.NewSpendBundle(spends, agg), nil
}
