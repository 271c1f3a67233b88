// Package codec encodes expression trees into self-delimiting byte keys whose
// lexicographic order equals the canonical expression order.
//
// Atomgo intentionally treats the key format as a compatibility boundary: the
// trie, every derived index and any external serialization layer store these
// bytes, so the format is fixed and versioned by this package alone.
//
// # Wire format
//
//	Symbol:   0x01 <bytes, 0x00 escaped as 0x00 0xFF> 0x00 0x00
//	Compound: 0x02 <arity, big-endian uint32> <child keys...>
//
// The symbol tag sorts before the compound tag, so symbols precede compounds.
// The 0x00 escape keeps arbitrary symbol bytes bytewise-comparable while the
// 0x00 0x00 terminator makes symbol keys prefix-free: a short symbol can
// never be a prefix of a longer one. The fixed-width arity keeps compounds
// ordered by arity ascending; because every key is prefix-free, concatenated
// child keys compare left-to-right.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/atomgo/expr"
)

const (
	tagSymbol   = 0x01
	tagCompound = 0x02

	escByte  = 0x00
	escCont  = 0xFF
	termByte = 0x00
)

// ErrMalformedKey is the sentinel all decode failures wrap. Keys that were
// not produced by Encode are a caller contract violation, never silently
// recovered.
var ErrMalformedKey = errors.New("malformed key")

// MalformedKeyError reports where and why a key failed to decode.
type MalformedKeyError struct {
	Offset int
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed key at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedKeyError) Unwrap() error { return ErrMalformedKey }

// Encode serializes an expression into its canonical key.
//
// Encode is deterministic and injective: distinct expressions always produce
// distinct keys, and bytes.Compare over keys equals expr.Compare over the
// expressions they encode.
func Encode(e expr.Expression) []byte {
	return appendExpr(nil, e)
}

// AppendEncode appends the canonical key of e to dst and returns the extended
// slice. It allows key construction without intermediate allocations.
func AppendEncode(dst []byte, e expr.Expression) []byte {
	return appendExpr(dst, e)
}

func appendExpr(dst []byte, e expr.Expression) []byte {
	switch v := e.(type) {
	case expr.Symbol:
		dst = append(dst, tagSymbol)
		dst = AppendSymbolBytes(dst, v.Bytes())
		return append(dst, termByte, termByte)
	case expr.Compound:
		dst = append(dst, tagCompound)
		dst = binary.BigEndian.AppendUint32(dst, uint32(v.Arity()))
		for _, child := range v.Children() {
			dst = appendExpr(dst, child)
		}
		return dst
	default:
		panic(fmt.Sprintf("codec: unknown expression type %T", e))
	}
}

// AppendSymbolBytes appends sym with the 0x00 escape applied, without tag or
// terminator. It lets callers build composite order-preserving keys from raw
// symbol bytes.
func AppendSymbolBytes(dst, sym []byte) []byte {
	for _, b := range sym {
		if b == escByte {
			dst = append(dst, escByte, escCont)
			continue
		}
		dst = append(dst, b)
	}
	return dst
}

// Decode is the exact inverse of Encode. It fails with an error wrapping
// ErrMalformedKey on any byte sequence Encode never produces, including
// trailing bytes after a complete expression.
func Decode(key []byte) (expr.Expression, error) {
	e, rest, err := decodeExpr(key, 0)
	if err != nil {
		return nil, err
	}
	if rest != len(key) {
		return nil, &MalformedKeyError{Offset: rest, Reason: "trailing bytes after expression"}
	}
	return e, nil
}

func decodeExpr(key []byte, pos int) (expr.Expression, int, error) {
	if pos >= len(key) {
		return nil, pos, &MalformedKeyError{Offset: pos, Reason: "unexpected end of key"}
	}
	switch key[pos] {
	case tagSymbol:
		return decodeSymbol(key, pos+1)
	case tagCompound:
		return decodeCompound(key, pos+1)
	default:
		return nil, pos, &MalformedKeyError{Offset: pos, Reason: fmt.Sprintf("unknown tag 0x%02x", key[pos])}
	}
}

func decodeSymbol(key []byte, pos int) (expr.Expression, int, error) {
	var name []byte
	for pos < len(key) {
		b := key[pos]
		if b != escByte {
			name = append(name, b)
			pos++
			continue
		}
		if pos+1 >= len(key) {
			return nil, pos, &MalformedKeyError{Offset: pos, Reason: "truncated escape sequence"}
		}
		switch key[pos+1] {
		case escCont:
			name = append(name, escByte)
			pos += 2
		case termByte:
			return expr.NewSymbol(name), pos + 2, nil
		default:
			return nil, pos, &MalformedKeyError{Offset: pos + 1, Reason: fmt.Sprintf("invalid escape byte 0x%02x", key[pos+1])}
		}
	}
	return nil, pos, &MalformedKeyError{Offset: pos, Reason: "unterminated symbol"}
}

func decodeCompound(key []byte, pos int) (expr.Expression, int, error) {
	if pos+4 > len(key) {
		return nil, pos, &MalformedKeyError{Offset: pos, Reason: "truncated arity"}
	}
	arity := binary.BigEndian.Uint32(key[pos : pos+4])
	pos += 4
	if arity == 0 {
		return nil, pos - 4, &MalformedKeyError{Offset: pos - 4, Reason: "zero-arity compound"}
	}
	children := make([]expr.Expression, 0, arity)
	for i := uint32(0); i < arity; i++ {
		child, next, err := decodeExpr(key, pos)
		if err != nil {
			return nil, pos, err
		}
		children = append(children, child)
		pos = next
	}
	return expr.NewCompound(children...), pos, nil
}
