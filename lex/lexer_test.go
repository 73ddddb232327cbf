package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxy-lang/pngb/token"
)

func tags(toks []token.Token) []token.Tag {
	out := make([]token.Tag, len(toks))
	for i, t := range toks {
		out[i] = t.Tag
	}
	return out
}

func TestLexMacroDeclaration(t *testing.T) {
	toks, err := Lex([]byte(`#buffer vbo { size = 256, usage = [VERTEX] }`))
	require.Nil(t, err)
	assert.Equal(t, []token.Tag{
		token.MacroBuffer, token.Ident, token.LBrace,
		token.Ident, token.Equals, token.Integer, token.Comma,
		token.Ident, token.Equals, token.LBracket, token.Ident, token.RBracket,
		token.RBrace, token.EOF,
	}, tags(toks))
}

func TestLexReferenceIsAtomic(t *testing.T) {
	toks, err := Lex([]byte(`$wgsl.blur`))
	require.Nil(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Reference, toks[0].Tag)
	assert.Equal(t, "$wgsl.blur", string(toks[0].Range.Text([]byte(`$wgsl.blur`))))
}

func TestLexReferenceNamespacesAreClosed(t *testing.T) {
	for _, ns := range []string{"buffer", "wgsl", "pipelineLayout", "bindGroupLayout", "queue", "data", "string"} {
		_, err := Lex([]byte("$" + ns + ".x"))
		assert.Nil(t, err, "namespace %q", ns)
	}
	_, err := Lex([]byte(`$nonsense.x`))
	require.NotNil(t, err)
	assert.Equal(t, "unexpected-byte", string(err.Kind))
}

func TestLexDottedBuiltinIdent(t *testing.T) {
	src := []byte(`width = canvas.width`)
	toks, err := Lex(src)
	require.Nil(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Ident, toks[2].Tag)
	assert.Equal(t, "canvas.width", string(toks[2].Range.Text(src)))
}

func TestLexUnknownMacroFails(t *testing.T) {
	_, err := Lex([]byte(`#shader x {}`))
	require.NotNil(t, err)
	assert.Equal(t, "unexpected-byte", string(err.Kind))
}

func TestLexNumbers(t *testing.T) {
	toks, err := Lex([]byte(`1 -2 3.5 1e3 2.5e-2 +7`))
	require.Nil(t, err)
	assert.Equal(t, []token.Tag{
		token.Integer, token.Integer, token.Float, token.Float, token.Float, token.Integer,
		token.EOF,
	}, tags(toks))
}

func TestLexBadNumber(t *testing.T) {
	_, err := Lex([]byte(`123abc`))
	require.NotNil(t, err)
	assert.Equal(t, "bad-number", string(err.Kind))
}

func TestLexStringEscapes(t *testing.T) {
	src := []byte(`"a\"b\n\t\\c"`)
	toks, err := Lex(src)
	require.Nil(t, err)
	assert.Equal(t, token.String, toks[0].Tag)
	assert.Equal(t, string(src), string(toks[0].Range.Text(src)))
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex([]byte(`"never closed`))
	require.NotNil(t, err)
	assert.Equal(t, "unterminated-string", string(err.Kind))
}

func TestLexComments(t *testing.T) {
	src := `
// a line comment
#frame f { /* block
   comment */ perform = [] }
`
	toks, err := Lex([]byte(src))
	require.Nil(t, err)
	assert.Equal(t, token.MacroFrame, toks[0].Tag)
	assert.Equal(t, []token.Tag{
		token.MacroFrame, token.Ident, token.LBrace,
		token.Ident, token.Equals, token.LBracket, token.RBracket,
		token.RBrace, token.EOF,
	}, tags(toks))
}

func TestLexRangesAreOrdered(t *testing.T) {
	src := []byte(`#buffer b { size = 1 }`)
	toks, err := Lex(src)
	require.Nil(t, err)
	for _, tok := range toks {
		assert.LessOrEqual(t, tok.Range.Start, tok.Range.End)
		assert.LessOrEqual(t, int(tok.Range.End), len(src))
	}
}

func TestLexUnexpectedByte(t *testing.T) {
	_, err := Lex([]byte(`#buffer b { size = @ }`))
	require.NotNil(t, err)
	assert.Equal(t, "unexpected-byte", string(err.Kind))
}
