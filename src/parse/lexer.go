package parse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/tanema/typhon/src/lerrors"
)

type lexer struct {
	filename string
	rdr      *bufio.Reader
	peeked   []*token
	LineInfo
}

func newLexer(filename string, src io.Reader) *lexer {
	return &lexer{
		filename: filename,
		LineInfo: LineInfo{Filename: filename, Line: 1},
		rdr:      bufio.NewReaderSize(src, 4096),
		peeked:   []*token{},
	}
}

func (lex *lexer) errf(msg string, data ...any) error {
	return lex.err(fmt.Errorf(msg, data...))
}

func (lex *lexer) err(err error) error {
	if errors.Is(err, io.EOF) {
		return err
	}
	return &lerrors.Error{
		Filename: lex.filename,
		Kind:     lerrors.LexerErr,
		Line:     lex.Line,
		Column:   lex.Column,
		Err:      err,
	}
}

func (lex *lexer) peek() rune {
	ch, _, err := lex.rdr.ReadRune()
	if err != nil {
		return 0
	}
	_ = lex.rdr.UnreadRune()
	return ch
}

func (lex *lexer) next() (rune, error) {
	ch, _, err := lex.rdr.ReadRune()
	if err != nil {
		return ch, lex.err(err)
	}
	if ch == '\n' || ch == '\r' {
		lex.Line++
		lex.Column = 0
		return ch, nil
	}
	lex.Column++
	return ch, err
}

func (lex *lexer) skipWhitespace() error {
	for {
		if ch := lex.peek(); ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			if _, err := lex.next(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (lex *lexer) tokenVal(tk tokenType) (*token, error) {
	linfo := lex.LineInfo
	linfo.Column -= int64(len(tk)) - 1
	return &token{Kind: tk, LineInfo: linfo}, nil
}

// allow for FIFO stack.
func (lex *lexer) back(tk *token) {
	lex.peeked = append(lex.peeked, tk)
}

func (lex *lexer) Peek() (*token, error) {
	if len(lex.peeked) == 0 {
		tk, err := lex.Next()
		if err != nil {
			return &token{Kind: tokenEOS, LineInfo: lex.LineInfo}, err
		}
		lex.peeked = append(lex.peeked, tk)
	}
	return lex.peeked[len(lex.peeked)-1], nil
}

// Next returns the next token, or a tokenEOS at the end of the source.
func (lex *lexer) Next() (*token, error) {
	if len(lex.peeked) != 0 {
		top := lex.peeked[len(lex.peeked)-1]
		lex.peeked = lex.peeked[:len(lex.peeked)-1]
		return top, nil
	}
	if err := lex.skipWhitespace(); err != nil {
		return nil, err
	}
	ch, err := lex.next()
	if errors.Is(err, io.EOF) {
		return &token{Kind: tokenEOS, LineInfo: lex.LineInfo}, nil
	} else if err != nil {
		return nil, err
	}
	switch {
	case ch == ',':
		return lex.tokenVal(tokenComma)
	case ch == '.':
		return lex.tokenVal(tokenPeriod)
	case ch == ':':
		return lex.tokenVal(tokenColon)
	case ch == '<':
		return lex.tokenVal(tokenLt)
	case ch == '>':
		return lex.tokenVal(tokenGt)
	case ch == '(':
		return lex.tokenVal(tokenOpenParen)
	case ch == ')':
		return lex.tokenVal(tokenCloseParen)
	case ch == '[':
		return lex.tokenVal(tokenOpenBracket)
	case ch == ']':
		return lex.tokenVal(tokenCloseBracket)
	case unicode.IsLetter(ch) || ch == '_':
		return lex.parseIdentifier(ch)
	}
	return nil, lex.errf("unexpected character %v", string(ch))
}

func (lex *lexer) parseIdentifier(start rune) (*token, error) {
	linfo := lex.LineInfo
	var ident bytes.Buffer
	if _, err := ident.WriteRune(start); err != nil {
		return nil, err
	}

	for {
		if peekCh := lex.peek(); unicode.IsLetter(peekCh) || unicode.IsDigit(peekCh) || peekCh == '_' {
			if ch, err := lex.next(); err != nil {
				return nil, err
			} else if _, err := ident.WriteRune(ch); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}

	strVal := ident.String()
	if kw, ok := keywords[strVal]; ok {
		return &token{Kind: kw, LineInfo: linfo}, nil
	}
	return &token{
		Kind:      tokenIdentifier,
		StringVal: strVal,
		LineInfo:  linfo,
	}, nil
}
