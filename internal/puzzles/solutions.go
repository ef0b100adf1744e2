package puzzles

import (
	"math/big"

	"bridge-core/pkg/clvm"
	"bridge-core/pkg/coinset"

	"github.com/ethereum/go-ethereum/common"
)

// LockerSolution is (my_amount my_id asset_amount receiver).
func LockerSolution(myAmount uint64, myID common.Hash, assetAmount uint64, receiver []byte) *clvm.Program {
	return clvm.List(clvm.Uint(myAmount), clvm.Hash(myID), clvm.Uint(assetAmount), clvm.Atom(receiver))
}

// LockedCoinProof names a vault coin the unlocker spends, by id and amount.
type LockedCoinProof struct {
	CoinID common.Hash
	Amount uint64
}

// UnlockerSolution is (message_coin_parent_id nonce_hash receiver amount_b32
// my_puzzle_hash my_id ((coin_id . amount) ...)). The nonce is hashed as an atom.
func UnlockerSolution(messageCoinParentID, nonce common.Hash, receiver common.Hash, assetAmount uint64,
	myPuzzleHash, myID common.Hash, proofs []LockedCoinProof) *clvm.Program {
	items := make([]*clvm.Program, len(proofs))
	for i, p := range proofs {
		items[i] = clvm.Cons(clvm.Hash(p.CoinID), clvm.Uint(p.Amount))
	}
	amount := common.BigToHash(new(big.Int).SetUint64(assetAmount))
	return clvm.List(
		clvm.Hash(messageCoinParentID),
		clvm.Hash(clvm.AtomHash(nonce[:])),
		clvm.Hash(receiver),
		clvm.Hash(amount),
		clvm.Hash(myPuzzleHash),
		clvm.Hash(myID),
		clvm.List(items...),
	)
}

// P2ControllerPuzzleHashInnerSolution is (my_id controller_parent_info
// controller_amount delegated_puzzle delegated_solution).
func P2ControllerPuzzleHashInnerSolution(myID, controllerParentInfo common.Hash, controllerAmount uint64,
	delegatedPuzzle, delegatedSolution *clvm.Program) *clvm.Program {
	return clvm.List(
		clvm.Hash(myID),
		clvm.Hash(controllerParentInfo),
		clvm.Uint(controllerAmount),
		delegatedPuzzle,
		delegatedSolution,
	)
}

// CATSolution is the CAT layer solution (inner_solution lineage_proof prev_coin_id
// this_coin_info next_coin_proof prev_subtotal extra_delta).
func CATSolution(innerSolution *clvm.Program, lineage coinset.LineageProof, prevCoinID common.Hash,
	thisCoin coinset.Coin, nextCoinProof coinset.LineageProof, prevSubtotal, extraDelta uint64) *clvm.Program {
	return clvm.List(
		innerSolution,
		lineage.Program(),
		clvm.Hash(prevCoinID),
		thisCoin.Program(),
		nextCoinProof.Program(),
		clvm.Uint(prevSubtotal),
		clvm.Uint(extraDelta),
	)
}
