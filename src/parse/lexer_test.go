package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/typhon/src/lerrors"
)

type parseTokenTest struct {
	src   string
	token *token
}

func TestNextToken(t *testing.T) {
	t.Parallel()
	linfo := LineInfo{Filename: "<test>", Line: 1, Column: 1}
	tests := []parseTokenTest{
		{"foobar", &token{Kind: tokenIdentifier, StringVal: "foobar", LineInfo: linfo}},
		{"foobar42", &token{Kind: tokenIdentifier, StringVal: "foobar42", LineInfo: linfo}},
		{"_foo_bar42", &token{Kind: tokenIdentifier, StringVal: "_foo_bar42", LineInfo: linfo}},
		{"const", &token{Kind: tokenConst, LineInfo: linfo}},
		{"var", &token{Kind: tokenVar, LineInfo: linfo}},
		{"function", &token{Kind: tokenFunction, LineInfo: linfo}},
		{"", &token{Kind: tokenEOS, LineInfo: LineInfo{Filename: "<test>", Line: 1}}},
	}

	operators := []tokenType{
		tokenComma, tokenPeriod, tokenColon, tokenLt, tokenGt,
		tokenOpenParen, tokenCloseParen, tokenOpenBracket, tokenCloseBracket,
	}
	for _, op := range operators {
		tests = append(tests, parseTokenTest{string(op), &token{Kind: op, LineInfo: linfo}})
	}

	for _, test := range tests {
		lex := newLexer("<test>", strings.NewReader(test.src))
		tk, err := lex.Next()
		require.NoError(t, err, "src: %q", test.src)
		assert.Equal(t, test.token, tk, "src: %q", test.src)
	}
}

func TestLexerPositions(t *testing.T) {
	t.Parallel()
	lex := newLexer("<test>", strings.NewReader("List<\n  int>"))
	expected := []*token{
		{Kind: tokenIdentifier, StringVal: "List", LineInfo: LineInfo{Filename: "<test>", Line: 1, Column: 1}},
		{Kind: tokenLt, LineInfo: LineInfo{Filename: "<test>", Line: 1, Column: 5}},
		{Kind: tokenIdentifier, StringVal: "int", LineInfo: LineInfo{Filename: "<test>", Line: 2, Column: 3}},
		{Kind: tokenGt, LineInfo: LineInfo{Filename: "<test>", Line: 2, Column: 6}},
	}
	for _, exp := range expected {
		tk, err := lex.Next()
		require.NoError(t, err)
		assert.Equal(t, exp, tk)
	}
}

func TestLexerPeekAndBack(t *testing.T) {
	t.Parallel()
	lex := newLexer("<test>", strings.NewReader("a b"))
	peeked, err := lex.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", peeked.StringVal)
	first, err := lex.Next()
	require.NoError(t, err)
	assert.Same(t, peeked, first)

	_, err = lex.Peek()
	require.NoError(t, err)
	lex.back(first)
	tk, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tk.StringVal)
	tk, err = lex.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", tk.StringVal)
}

func TestLexerBadCharacter(t *testing.T) {
	t.Parallel()
	lex := newLexer("<test>", strings.NewReader("$"))
	_, err := lex.Next()
	var typErr *lerrors.Error
	require.ErrorAs(t, err, &typErr)
	assert.Equal(t, lerrors.LexerErr, typErr.Kind)
}
