package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	s := S("socrates")
	assert.Equal(t, 0, s.Arity())
	assert.Equal(t, []byte("socrates"), s.Bytes())
	assert.Equal(t, "socrates", s.String())
}

func TestNewSymbolCopies(t *testing.T) {
	buf := []byte("human")
	s := NewSymbol(buf)
	buf[0] = 'X'
	assert.Equal(t, []byte("human"), s.Bytes())
}

func TestCompound(t *testing.T) {
	c := C(S("human"), S("socrates"))
	assert.Equal(t, 2, c.Arity())
	assert.Equal(t, "(human socrates)", c.String())
}

func TestNewCompoundPanicsOnZeroChildren(t *testing.T) {
	assert.Panics(t, func() { NewCompound() })
}

func TestNewCompoundCopiesChildren(t *testing.T) {
	children := []Expression{S("a"), S("b")}
	c := NewCompound(children...)
	children[0] = S("z")
	assert.True(t, Equal(c.Children()[0], S("a")))
}

func TestStringQuoting(t *testing.T) {
	assert.Equal(t, `"two words"`, S("two words").String())
	assert.Equal(t, `""`, S("").String())
	assert.Equal(t, `"?x"`, S("?x").String())
	assert.Equal(t, `("a(b" c)`, C(S("a(b"), S("c")).String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Expression
		want int
	}{
		{"equal symbols", S("a"), S("a"), 0},
		{"symbol bytewise", S("a"), S("b"), -1},
		{"prefix symbol first", S("ab"), S("abc"), -1},
		{"symbol before compound", S("zzz"), C(S("a")), -1},
		{"compound after symbol", C(S("a")), S("zzz"), 1},
		{"arity ascending", C(S("z")), C(S("a"), S("a")), -1},
		{"same arity children l-to-r", C(S("a"), S("b")), C(S("a"), S("c")), -1},
		{"equal compounds", C(S("a"), C(S("b"))), C(S("a"), C(S("b"))), 0},
		{"nested difference", C(S("f"), C(S("a"))), C(S("f"), C(S("b"))), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestEqual(t *testing.T) {
	a := C(S("f"), C(S("g"), S("x")))
	b := C(S("f"), C(S("g"), S("x")))
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, C(S("f"), C(S("g"), S("y")))))
	require.False(t, Equal(S("f"), C(S("f"))))
}

func TestDepthAndSize(t *testing.T) {
	assert.Equal(t, 1, Depth(S("a")))
	assert.Equal(t, 1, Size(S("a")))

	e := C(S("f"), C(S("g"), S("x")), S("y"))
	assert.Equal(t, 3, Depth(e))
	assert.Equal(t, 5, Size(e))
}

func TestContainsSymbol(t *testing.T) {
	e := C(S("f"), C(S("g"), S("x")))
	assert.True(t, ContainsSymbol(e, []byte("f")))
	assert.True(t, ContainsSymbol(e, []byte("x")))
	assert.False(t, ContainsSymbol(e, []byte("y")))
	assert.True(t, ContainsSymbol(S("a"), []byte("a")))
}
