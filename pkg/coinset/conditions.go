package coinset

import (
	"crypto/sha256"

	"bridge-core/pkg/clvm"

	"github.com/ethereum/go-ethereum/common"
)

// Condition opcodes.
const (
	AggSigMe               = 50
	CreateCoinOp           = 51
	CreateCoinAnnouncement = 60
	AssertCoinAnnouncement = 61
	AssertConcurrentSpend  = 64
)

func condition(op uint64, args ...*clvm.Program) *clvm.Program {
	return clvm.List(append([]*clvm.Program{clvm.Uint(op)}, args...)...)
}

// CreateCoin returns (51 puzzle_hash amount).
func CreateCoin(puzzleHash common.Hash, amount uint64) *clvm.Program {
	return condition(CreateCoinOp, clvm.Hash(puzzleHash), clvm.Uint(amount))
}

// AssertCoinAnnouncementCondition returns (61 announcement_id).
func AssertCoinAnnouncementCondition(announcementID common.Hash) *clvm.Program {
	return condition(AssertCoinAnnouncement, clvm.Hash(announcementID))
}

// AssertConcurrentSpendCondition returns (64 coin_id).
func AssertConcurrentSpendCondition(coinID common.Hash) *clvm.Program {
	return condition(AssertConcurrentSpend, clvm.Hash(coinID))
}

// AnnouncementID is sha256(coin_id || message), the id a coin announcement is asserted by.
func AnnouncementID(coinID common.Hash, message []byte) common.Hash {
	h := sha256.New()
	h.Write(coinID[:])
	h.Write(message)
	return common.BytesToHash(h.Sum(nil))
}

// DelegatedPuzzle quotes conditions: (q . conditions).
func DelegatedPuzzle(conditions ...*clvm.Program) *clvm.Program {
	return clvm.Cons(clvm.Uint(1), clvm.List(conditions...))
}

// StandardSolution is the standard-transaction solution (() (q . conditions) ()).
func StandardSolution(conditions ...*clvm.Program) *clvm.Program {
	return clvm.List(clvm.Nil(), DelegatedPuzzle(conditions...), clvm.Nil())
}

// AggSigMeMessage is the byte string a standard puzzle's key must sign:
// sha256tree(delegated puzzle) || coin_id || agg_sig_data.
func AggSigMeMessage(coin Coin, conditions []*clvm.Program, aggSigData []byte) []byte {
	dp := DelegatedPuzzle(conditions...).TreeHash()
	id := coin.ID()
	msg := make([]byte, 0, 64+len(aggSigData))
	msg = append(msg, dp[:]...)
	msg = append(msg, id[:]...)
	return append(msg, aggSigData...)
}
