package clvm

import (
	"fmt"

	"bridge-core/pkg/errno"
)

// Uint encodes v as a minimal two's-complement big-endian atom. Zero is the
// empty atom; a 0x00 byte is prepended when the top bit would read as a sign.
func Uint(v uint64) *Program { return &Program{atom: UintBytes(v)} }

// UintBytes returns the atom payload Uint would produce.
func UintBytes(v uint64) []byte {
	if v == 0 {
		return []byte{}
	}
	var buf [9]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte(v)
		v >>= 8
	}
	if buf[i]&0x80 != 0 {
		i--
		buf[i] = 0
	}
	out := make([]byte, len(buf)-i)
	copy(out, buf[i:])
	return out
}

// AsUint decodes a non-negative integer atom.
func (p *Program) AsUint() (uint64, error) {
	if p.pair {
		return 0, fmt.Errorf("%w: expected integer atom, got pair", errno.ErrEncoding)
	}
	b := p.atom
	if len(b) > 0 && b[0]&0x80 != 0 {
		return 0, fmt.Errorf("%w: negative integer", errno.ErrEncoding)
	}
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: integer overflows uint64", errno.ErrEncoding)
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}
