package codec

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/atomgo/expr"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		e    expr.Expression
	}{
		{"symbol", expr.S("socrates")},
		{"empty symbol", expr.S("")},
		{"symbol with zero byte", expr.NewSymbol([]byte{0x00})},
		{"symbol with escape-like bytes", expr.NewSymbol([]byte{0x00, 0xFF, 0x00, 0x00, 0x01})},
		{"unary compound", expr.C(expr.S("f"))},
		{"binary compound", expr.C(expr.S("human"), expr.S("socrates"))},
		{"nested", expr.C(expr.S("f"), expr.C(expr.S("g"), expr.S("x")), expr.S("y"))},
		{"deep nesting", expr.C(expr.C(expr.C(expr.S("a"))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := Encode(tt.e)
			got, err := Decode(key)
			require.NoError(t, err)
			assert.True(t, expr.Equal(tt.e, got), "decoded %s, want %s", got, tt.e)
		})
	}
}

func TestEncodeInjective(t *testing.T) {
	// Pairs that naive encodings tend to collide on.
	pairs := [][2]expr.Expression{
		{expr.S("ab"), expr.C(expr.S("a"), expr.S("b"))},
		{expr.C(expr.S("a"), expr.S("b")), expr.C(expr.C(expr.S("a"), expr.S("b")))},
		{expr.NewSymbol([]byte{0x00}), expr.NewSymbol([]byte{0x00, 0x00})},
		{expr.S(""), expr.NewSymbol([]byte{0x00})},
		{expr.C(expr.S("a"), expr.C(expr.S("b"), expr.S("c"))), expr.C(expr.C(expr.S("a"), expr.S("b")), expr.S("c"))},
	}
	for _, p := range pairs {
		assert.NotEqual(t, Encode(p[0]), Encode(p[1]), "%s vs %s", p[0], p[1])
	}
}

func TestAppendEncode(t *testing.T) {
	e := expr.C(expr.S("f"), expr.S("x"))
	dst := []byte{0xAA}
	out := AppendEncode(dst, e)
	require.Equal(t, byte(0xAA), out[0])
	assert.Equal(t, Encode(e), out[1:])
}

func TestAppendSymbolBytes(t *testing.T) {
	out := AppendSymbolBytes(nil, []byte{'a', 0x00, 'b'})
	assert.Equal(t, []byte{'a', 0x00, 0xFF, 'b'}, out)
}

// Key order must equal canonical expression order, including across symbol
// boundaries and arities. Verified on a randomized corpus.
func TestOrderPreservation(t *testing.T) {
	rng := rand.New(rand.NewSource(4711))
	exprs := make([]expr.Expression, 0, 300)
	for i := 0; i < 300; i++ {
		exprs = append(exprs, randomExpr(rng, 3))
	}

	keys := make([][]byte, len(exprs))
	for i, e := range exprs {
		keys[i] = Encode(e)
	}

	order := make([]int, len(exprs))
	for i := range order {
		order[i] = i
	}
	byExpr := append([]int(nil), order...)
	sort.SliceStable(byExpr, func(a, b int) bool {
		return expr.Compare(exprs[byExpr[a]], exprs[byExpr[b]]) < 0
	})
	byKey := append([]int(nil), order...)
	sort.SliceStable(byKey, func(a, b int) bool {
		return bytes.Compare(keys[byKey[a]], keys[byKey[b]]) < 0
	})

	for i := range byExpr {
		a, b := exprs[byExpr[i]], exprs[byKey[i]]
		require.True(t, expr.Equal(a, b), "rank %d: expr order has %s, key order has %s", i, a, b)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{0x7F}},
		{"unterminated symbol", []byte{0x01, 'a', 'b'}},
		{"truncated escape", []byte{0x01, 'a', 0x00}},
		{"invalid escape byte", []byte{0x01, 0x00, 0x42, 0x00, 0x00}},
		{"truncated arity", []byte{0x02, 0x00, 0x00}},
		{"zero arity", []byte{0x02, 0x00, 0x00, 0x00, 0x00}},
		{"missing children", []byte{0x02, 0x00, 0x00, 0x00, 0x02, 0x01, 'a', 0x00, 0x00}},
		{"trailing bytes", append(Encode(expr.S("a")), 0x01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.key)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedKey)

			var mk *MalformedKeyError
			require.ErrorAs(t, err, &mk)
			assert.NotEmpty(t, mk.Reason)
		})
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := Decode([]byte{0x7F})
	var mk *MalformedKeyError
	require.ErrorAs(t, err, &mk)
	assert.Equal(t, 0, mk.Offset)

	_, err = Decode(append(Encode(expr.S("a")), 0xEE))
	require.ErrorAs(t, err, &mk)
	assert.Equal(t, len(Encode(expr.S("a"))), mk.Offset)
}

func randomExpr(rng *rand.Rand, maxDepth int) expr.Expression {
	if maxDepth == 0 || rng.Intn(3) == 0 {
		n := rng.Intn(4)
		sym := make([]byte, n)
		for i := range sym {
			// Bias toward boundary bytes so escaping is exercised.
			sym[i] = []byte{0x00, 0x01, 0xFF, 'a', 'b'}[rng.Intn(5)]
		}
		return expr.NewSymbol(sym)
	}
	arity := 1 + rng.Intn(3)
	children := make([]expr.Expression, arity)
	for i := range children {
		children[i] = randomExpr(rng, maxDepth-1)
	}
	return expr.NewCompound(children...)
}

func TestDecodeDoesNotAliasKey(t *testing.T) {
	key := Encode(expr.S("abc"))
	e, err := Decode(key)
	require.NoError(t, err)
	key[1] = 'z'
	assert.True(t, expr.Equal(expr.S("abc"), e))
}
