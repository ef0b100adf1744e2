// Package clvm implements the S-expression value model used by coin-set puzzles:
// atoms and pairs, the canonical byte serialization, tree hashing and currying.
package clvm

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// Program is an immutable S-expression node. A node is either an atom (a byte
// string, possibly empty) or a pair of two nodes. The empty atom doubles as nil,
// the list terminator.
type Program struct {
	atom  []byte
	first *Program
	rest  *Program
	pair  bool
}

var nilProgram = &Program{atom: []byte{}}

// Nil returns the empty atom.
func Nil() *Program { return nilProgram }

// Atom wraps b as an atom. The slice is copied.
func Atom(b []byte) *Program {
	if len(b) == 0 {
		return nilProgram
	}
	return &Program{atom: bytes.Clone(b)}
}

// Hash wraps a 32-byte value as an atom.
func Hash(h common.Hash) *Program { return Atom(h.Bytes()) }

// String wraps the raw bytes of s as an atom.
func String(s string) *Program { return Atom([]byte(s)) }

// Cons builds the pair (first . rest).
func Cons(first, rest *Program) *Program {
	return &Program{first: first, rest: rest, pair: true}
}

// List builds a nil-terminated proper list.
func List(items ...*Program) *Program {
	out := nilProgram
	for i := len(items) - 1; i >= 0; i-- {
		out = Cons(items[i], out)
	}
	return out
}

// IsPair reports whether p is a pair node.
func (p *Program) IsPair() bool { return p.pair }

// IsNil reports whether p is the empty atom.
func (p *Program) IsNil() bool { return !p.pair && len(p.atom) == 0 }

// AtomBytes returns the atom payload, or nil and false for pairs.
func (p *Program) AtomBytes() ([]byte, bool) {
	if p.pair {
		return nil, false
	}
	return p.atom, true
}

// First returns the left element of a pair.
func (p *Program) First() (*Program, error) {
	if !p.pair {
		return nil, fmt.Errorf("%w: first of atom", errno.ErrEncoding)
	}
	return p.first, nil
}

// Rest returns the right element of a pair.
func (p *Program) Rest() (*Program, error) {
	if !p.pair {
		return nil, fmt.Errorf("%w: rest of atom", errno.ErrEncoding)
	}
	return p.rest, nil
}

// Items flattens a proper list into its elements.
func (p *Program) Items() ([]*Program, error) {
	var out []*Program
	cur := p
	for cur.pair {
		out = append(out, cur.first)
		cur = cur.rest
	}
	if !cur.IsNil() {
		return nil, fmt.Errorf("%w: improper list", errno.ErrEncoding)
	}
	return out, nil
}

// At returns the i-th element of a proper list.
func (p *Program) At(i int) (*Program, error) {
	items, err := p.Items()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: list index %d out of range (len %d)", errno.ErrEncoding, i, len(items))
	}
	return items[i], nil
}

// Equal compares two programs structurally.
func (p *Program) Equal(o *Program) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil || p.pair != o.pair {
		return false
	}
	if !p.pair {
		return bytes.Equal(p.atom, o.atom)
	}
	return p.first.Equal(o.first) && p.rest.Equal(o.rest)
}

// Hex returns the serialized program as lowercase hex without a prefix.
func (p *Program) Hex() string {
	return hex.EncodeToString(p.Serialize())
}

// String renders p in a compact debug notation: atoms as 0x-hex, pairs as
// (a . b) and proper lists as (a b c).
func (p *Program) String() string {
	var sb strings.Builder
	p.write(&sb)
	return sb.String()
}

func (p *Program) write(sb *strings.Builder) {
	if !p.pair {
		if len(p.atom) == 0 {
			sb.WriteString("()")
			return
		}
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString(p.atom))
		return
	}
	sb.WriteByte('(')
	cur := p
	for {
		cur.first.write(sb)
		if cur.rest.pair {
			sb.WriteByte(' ')
			cur = cur.rest
			continue
		}
		if !cur.rest.IsNil() {
			sb.WriteString(" . ")
			cur.rest.write(sb)
		}
		break
	}
	sb.WriteByte(')')
}
