package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *Pattern {
	t.Helper()
	p, err := Parse(source)
	require.NoError(t, err)
	return p
}

func TestParseSymbol(t *testing.T) {
	p := mustParse(t, "socrates")
	assert.Equal(t, Symbol{Name: []byte("socrates")}, p.Root)
}

func TestParseQuotedSymbol(t *testing.T) {
	p := mustParse(t, `"two words"`)
	assert.Equal(t, Symbol{Name: []byte("two words")}, p.Root)

	p = mustParse(t, `"a\"b\\c"`)
	assert.Equal(t, Symbol{Name: []byte(`a"b\c`)}, p.Root)

	p = mustParse(t, `""`)
	assert.Equal(t, Symbol{Name: []byte(nil)}, p.Root)
}

func TestParseWildcard(t *testing.T) {
	p := mustParse(t, "(f _ b)")
	c := p.Root.(Compound)
	require.Len(t, c.Children, 3)
	assert.Equal(t, Wildcard{}, c.Children[1])

	// Underscore followed by name characters is a bare symbol, not a wildcard.
	p = mustParse(t, "_x")
	assert.Equal(t, Symbol{Name: []byte("_x")}, p.Root)
}

func TestParseVariable(t *testing.T) {
	tests := []struct {
		source string
		want   Variable
	}{
		{"?X", Variable{Name: "X", Constraint: ConstraintAny}},
		{"?name-1", Variable{Name: "name-1", Constraint: ConstraintAny}},
		{"?s:symbol", Variable{Name: "s", Constraint: ConstraintSymbol}},
		{"?c:compound", Variable{Name: "c", Constraint: ConstraintCompound}},
		{"?e:expr", Variable{Name: "e", Constraint: ConstraintAny}},
		{"?a:any", Variable{Name: "a", Constraint: ConstraintAny}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p := mustParse(t, tt.source)
			assert.Equal(t, tt.want, p.Root)
		})
	}
}

func TestParseCompound(t *testing.T) {
	p := mustParse(t, "(human ?X)")
	c, ok := p.Root.(Compound)
	require.True(t, ok)
	require.Len(t, c.Children, 2)
	assert.Equal(t, Symbol{Name: []byte("human")}, c.Children[0])
	assert.Equal(t, Variable{Name: "X"}, c.Children[1])
}

func TestParseNested(t *testing.T) {
	p := mustParse(t, "(f (g ?X) y)")
	outer := p.Root.(Compound)
	require.Len(t, outer.Children, 3)
	inner, ok := outer.Children[1].(Compound)
	require.True(t, ok)
	assert.Equal(t, Symbol{Name: []byte("g")}, inner.Children[0])
}

func TestParseAlternative(t *testing.T) {
	p := mustParse(t, "[(f ?X) (g ?X)]")
	alt, ok := p.Root.(Alternative)
	require.True(t, ok)
	require.Len(t, alt.Alts, 2)
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		source   string
		min, max int
	}{
		{"(list ?X*)", 0, -1},
		{"(list ?X+)", 1, -1},
		{"(list ?X{3})", 3, 3},
		{"(list ?X{2,})", 2, -1},
		{"(list ?X{1,4})", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p := mustParse(t, tt.source)
			c := p.Root.(Compound)
			seq, ok := c.Children[1].(Sequence)
			require.True(t, ok)
			assert.Equal(t, tt.min, seq.Min)
			assert.Equal(t, tt.max, seq.Max)
			assert.Equal(t, Variable{Name: "X"}, seq.Inner)
		})
	}
}

func TestParseConditional(t *testing.T) {
	p := mustParse(t, "(age ?N@numeric)")
	c := p.Root.(Compound)
	cond, ok := c.Children[1].(Conditional)
	require.True(t, ok)
	assert.Equal(t, "numeric", cond.Predicate)
	assert.Equal(t, Variable{Name: "N"}, cond.Inner)
}

func TestParseConditionalOnCompound(t *testing.T) {
	p := mustParse(t, "(f ?X)@check")
	cond, ok := p.Root.(Conditional)
	require.True(t, ok)
	assert.Equal(t, "check", cond.Predicate)
	_, ok = cond.Inner.(Compound)
	assert.True(t, ok)
}

func TestParseSequenceOfConditional(t *testing.T) {
	p := mustParse(t, "(xs ?N@numeric*)")
	c := p.Root.(Compound)
	seq, ok := c.Children[1].(Sequence)
	require.True(t, ok)
	_, ok = seq.Inner.(Conditional)
	assert.True(t, ok)
}

func TestParseWhitespace(t *testing.T) {
	p := mustParse(t, "  ( human\n\t?X )  ")
	c, ok := p.Root.(Compound)
	require.True(t, ok)
	assert.Len(t, c.Children, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		pos    int
	}{
		{"empty", "", 0},
		{"only spaces", "   ", 3},
		{"unclosed compound", "(f ?X", 0},
		{"empty compound", "()", 0},
		{"unclosed alternative", "[a b", 0},
		{"empty alternative", "[]", 0},
		{"stray close paren", ")", 0},
		{"stray close bracket", "(f ])", 3},
		{"missing variable name", "(f ?)", 4},
		{"unknown variable type", "?x:number", 3},
		{"unterminated quoted", `"abc`, 0},
		{"invalid quote escape", `"a\n"`, 3},
		{"top-level repetition", "a*", 1},
		{"repetition in alternative", "[a* b]", 2},
		{"double repetition", "(f a*+)", 5},
		{"unclosed bound", "(f a{2)", 4},
		{"bound without number", "(f a{})", 5},
		{"inverted bound", "(f a{4,2})", 4},
		{"missing predicate name", "(f a@)", 5},
		{"trailing garbage", "(f a) b", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)

			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos)
			assert.NotEmpty(t, se.Reason)
		})
	}
}

func TestHints(t *testing.T) {
	tests := []struct {
		source     string
		topSymbol  string
		leadSymbol string
		fixedArity int
	}{
		{"socrates", "socrates", "", 0},
		{"(human ?X)", "", "human", 2},
		{"(?f ?X)", "", "", 2},
		{"(human ?X*)", "", "human", -1},
		{"[(f ?X) (g ?X)]", "", "", -1},
		{"?X", "", "", -1},
		{"_", "", "", -1},
		{"(f ?X)@check", "", "f", 2},
		{"(f@check ?X)", "", "f", 2},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p := mustParse(t, tt.source)
			if tt.topSymbol == "" {
				assert.Nil(t, p.TopSymbol)
			} else {
				assert.Equal(t, []byte(tt.topSymbol), p.TopSymbol)
			}
			if tt.leadSymbol == "" {
				assert.Nil(t, p.LeadSymbol)
			} else {
				assert.Equal(t, []byte(tt.leadSymbol), p.LeadSymbol)
			}
			assert.Equal(t, tt.fixedArity, p.FixedArity)
		})
	}
}
