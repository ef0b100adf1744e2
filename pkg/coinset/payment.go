package coinset

import (
	"bridge-core/pkg/clvm"

	"github.com/ethereum/go-ethereum/common"
)

// Payment is one (puzzle_hash amount [memos]) entry of a notarized payment.
type Payment struct {
	PuzzleHash common.Hash
	Amount     uint64
	Memos      [][]byte
}

// Program renders the payment in settlement-payments form.
func (p Payment) Program() *clvm.Program {
	items := []*clvm.Program{clvm.Hash(p.PuzzleHash), clvm.Uint(p.Amount)}
	if len(p.Memos) > 0 {
		memos := make([]*clvm.Program, len(p.Memos))
		for i, m := range p.Memos {
			memos[i] = clvm.Atom(m)
		}
		items = append(items, clvm.List(memos...))
	}
	return clvm.List(items...)
}

// NotarizedPayment binds a set of payments to a nonce: (nonce . payments).
type NotarizedPayment struct {
	Nonce    common.Hash
	Payments []Payment
}

// Program renders (nonce (ph amount) ...).
func (n NotarizedPayment) Program() *clvm.Program {
	payments := make([]*clvm.Program, len(n.Payments))
	for i, p := range n.Payments {
		payments[i] = p.Program()
	}
	return clvm.Cons(clvm.Hash(n.Nonce), clvm.List(payments...))
}

// NotarizedPayments renders a settlement-payments solution: a list of notarized payments.
func NotarizedPayments(nps ...NotarizedPayment) *clvm.Program {
	items := make([]*clvm.Program, len(nps))
	for i, np := range nps {
		items[i] = np.Program()
	}
	return clvm.List(items...)
}
