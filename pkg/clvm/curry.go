package clvm

import (
	"fmt"

	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// Operator atoms used by the curry wrapper.
var (
	opQuote = Atom([]byte{0x01})
	opApply = Atom([]byte{0x02})
	opCons  = Atom([]byte{0x04})
	envAtom = Atom([]byte{0x01})
)

var (
	quoteHash = opQuote.TreeHash()
	applyHash = opApply.TreeHash()
	consHash  = opCons.TreeHash()
	envHash   = envAtom.TreeHash()
	nilHash   = nilProgram.TreeHash()
)

// Curry binds args as the leading arguments of mod:
//
//	(a (q . mod) (c (q . arg1) (c (q . arg2) ... 1)))
func Curry(mod *Program, args ...*Program) (*Program, error) {
	if mod == nil {
		return nil, fmt.Errorf("%w: curry of nil module", errno.ErrEncoding)
	}
	env := envAtom
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] == nil {
			return nil, fmt.Errorf("%w: curried argument %d is nil", errno.ErrEncoding, i)
		}
		env = List(opCons, Cons(opQuote, args[i]), env)
	}
	return List(opApply, Cons(opQuote, mod), env), nil
}

// Uncurry reverses Curry. ok is false when p is not in curried form.
func Uncurry(p *Program) (mod *Program, args []*Program, ok bool) {
	items, err := p.Items()
	if err != nil || len(items) != 3 || !items[0].Equal(opApply) {
		return nil, nil, false
	}
	quoted := items[1]
	if !quoted.pair || !quoted.first.Equal(opQuote) {
		return nil, nil, false
	}
	mod = quoted.rest
	env := items[2]
	for env.pair {
		step, err := env.Items()
		if err != nil || len(step) != 3 || !step[0].Equal(opCons) {
			return nil, nil, false
		}
		q := step[1]
		if !q.pair || !q.first.Equal(opQuote) {
			return nil, nil, false
		}
		args = append(args, q.rest)
		env = step[2]
	}
	if !env.Equal(envAtom) {
		return nil, nil, false
	}
	return mod, args, true
}

// CurryTreeHash computes the tree hash of Curry(mod, args...) from the module
// hash and the argument tree hashes alone.
func CurryTreeHash(modHash common.Hash, argHashes ...common.Hash) common.Hash {
	env := envHash
	for i := len(argHashes) - 1; i >= 0; i-- {
		quoted := PairHash(quoteHash, argHashes[i])
		env = PairHash(consHash, PairHash(quoted, PairHash(env, nilHash)))
	}
	quotedMod := PairHash(quoteHash, modHash)
	return PairHash(applyHash, PairHash(quotedMod, PairHash(env, nilHash)))
}
