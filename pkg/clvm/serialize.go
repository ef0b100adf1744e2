package clvm

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	pairMarker = 0xff
	nilMarker  = 0x80

	maxAtomLen = 0x400000000
)

// Serialize encodes p in the canonical wire form.
func (p *Program) Serialize() []byte {
	return p.appendTo(make([]byte, 0, 64))
}

func (p *Program) appendTo(out []byte) []byte {
	// 用显式栈避免深层列表递归
	stack := []*Program{p}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.pair {
			out = append(out, pairMarker)
			stack = append(stack, n.rest, n.first)
			continue
		}
		out = appendAtom(out, n.atom)
	}
	return out
}

func appendAtom(out, atom []byte) []byte {
	n := len(atom)
	switch {
	case n == 0:
		return append(out, nilMarker)
	case n == 1 && atom[0] <= 0x7f:
		return append(out, atom[0])
	case n < 0x40:
		out = append(out, 0x80|byte(n))
	case n < 0x2000:
		out = append(out, 0xc0|byte(n>>8), byte(n))
	case n < 0x100000:
		out = append(out, 0xe0|byte(n>>16), byte(n>>8), byte(n))
	case n < 0x8000000:
		out = append(out, 0xf0|byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		out = append(out, 0xf8|byte(uint64(n)>>32), byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	return append(out, atom...)
}

// cursor walks a serialized program.
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) readU8() (byte, error) {
	if c.pos >= len(c.b) {
		return 0, fmt.Errorf("%w: unexpected end of program at offset %d", errno.ErrEncoding, c.pos)
	}
	v := c.b[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readExact(n uint64) ([]byte, error) {
	if n > uint64(len(c.b)-c.pos) {
		return nil, fmt.Errorf("%w: atom of %d bytes overruns input at offset %d", errno.ErrEncoding, n, c.pos)
	}
	v := c.b[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return v, nil
}

func (c *cursor) readAtom(prefix byte) (*Program, error) {
	if prefix == nilMarker {
		return nilProgram, nil
	}
	if prefix <= 0x7f {
		return &Program{atom: []byte{prefix}}, nil
	}

	// 前缀的高位 1 的个数即长度字段的字节数
	var width int
	mask := byte(0x80)
	for prefix&mask != 0 {
		width++
		prefix &^= mask
		mask >>= 1
	}
	if width > 5 {
		return nil, fmt.Errorf("%w: invalid atom size prefix", errno.ErrEncoding)
	}
	size := uint64(prefix)
	for i := 1; i < width; i++ {
		b, err := c.readU8()
		if err != nil {
			return nil, err
		}
		size = size<<8 | uint64(b)
	}
	if size >= maxAtomLen {
		return nil, fmt.Errorf("%w: atom too large", errno.ErrEncoding)
	}
	payload, err := c.readExact(size)
	if err != nil {
		return nil, err
	}
	return Atom(payload), nil
}

// Parse decodes exactly one serialized program from b.
func Parse(b []byte) (*Program, error) {
	c := &cursor{b: b}

	// 迭代解析：ops 记录待合并的 pair
	var values []*Program
	var ops []bool // true = 合并 pair, false = 读取下一个节点
	ops = append(ops, false)
	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if op {
			rest := values[len(values)-1]
			first := values[len(values)-2]
			values = values[:len(values)-2]
			values = append(values, Cons(first, rest))
			continue
		}
		b, err := c.readU8()
		if err != nil {
			return nil, err
		}
		if b == pairMarker {
			ops = append(ops, true, false, false)
			continue
		}
		atom, err := c.readAtom(b)
		if err != nil {
			return nil, err
		}
		values = append(values, atom)
	}
	if c.pos != len(c.b) {
		return nil, fmt.Errorf("%w: %d trailing bytes after program", errno.ErrEncoding, len(c.b)-c.pos)
	}
	return values[0], nil
}

// FromHex parses a hex-encoded serialized program. A 0x prefix is accepted.
func FromHex(s string) (*Program, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrEncoding, err)
	}
	return Parse(raw)
}

// MustFromHex is FromHex for compiled-in constants.
func MustFromHex(s string) *Program {
	p, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON encodes the serialized program as a 0x-prefixed hex string.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(p.Serialize()))
}

// UnmarshalJSON accepts hex with or without the 0x prefix.
func (p *Program) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: program must be a hex string", errno.ErrEncoding)
	}
	parsed, err := FromHex(s)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}
