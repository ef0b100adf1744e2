package clvm

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
)

const (
	atomTag byte = 0x01
	pairTag byte = 0x02
)

// AtomHash is the tree hash of an atom: sha256(0x01 || b). It is also the
// domain-separated hash the bridge puzzles expect for addresses and nonces.
func AtomHash(b []byte) common.Hash {
	h := sha256.New()
	h.Write([]byte{atomTag})
	h.Write(b)
	return common.BytesToHash(h.Sum(nil))
}

// PairHash combines two subtree hashes: sha256(0x02 || left || right).
func PairHash(left, right common.Hash) common.Hash {
	h := sha256.New()
	h.Write([]byte{pairTag})
	h.Write(left[:])
	h.Write(right[:])
	return common.BytesToHash(h.Sum(nil))
}

// TreeHash returns the canonical structural hash of p.
func (p *Program) TreeHash() common.Hash {
	if !p.pair {
		return AtomHash(p.atom)
	}
	// 后序遍历，避免深层递归
	type item struct {
		node    *Program
		visited bool
	}
	var hashes []common.Hash
	stack := []item{{node: p}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !it.node.pair {
			hashes = append(hashes, AtomHash(it.node.atom))
			continue
		}
		if it.visited {
			right := hashes[len(hashes)-1]
			left := hashes[len(hashes)-2]
			hashes = append(hashes[:len(hashes)-2], PairHash(left, right))
			continue
		}
		stack = append(stack, item{node: it.node, visited: true}, item{node: it.node.rest}, item{node: it.node.first})
	}
	return hashes[0]
}
