// Package parse turns type expressions written as text into raw TypeExpr nodes.
// It stands in for the syntactic front end: the resolver only consumes the
// nodes, it never sees the text.
package parse

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tanema/typhon/src/lerrors"
)

// Parser parses one type expression source at a time.
type Parser struct {
	lex      *lexer
	filename string
}

// New creates a new parser.
func New() *Parser {
	return &Parser{}
}

// Type is a helper around Parser.Parse for a single expression held in a string.
func Type(filename, src string) (*TypeExpr, error) {
	return New().Parse(filename, strings.NewReader(src))
}

// TypeAt parses a single expression held in a string that starts at start in a
// larger source, so that the positions of the nodes point into that source.
func TypeAt(start LineInfo, src string) (*TypeExpr, error) {
	p := New()
	p.filename = start.Filename
	p.lex = newLexer(start.Filename, strings.NewReader(src))
	p.lex.Line = start.Line
	p.lex.Column = start.Column - 1
	return p.parse()
}

// MustType parses src and panics if it is not a valid type expression. Meant
// for library code and tests where the source is a constant.
func MustType(src string) *TypeExpr {
	expr, err := Type("<const>", src)
	if err != nil {
		panic(err)
	}
	return expr
}

// Parse reads exactly one type expression from src.
func (p *Parser) Parse(filename string, src io.Reader) (*TypeExpr, error) {
	p.filename = filename
	p.lex = newLexer(filename, src)
	return p.parse()
}

func (p *Parser) parse() (*TypeExpr, error) {
	expr, err := p.typeexpr()
	if err != nil {
		return nil, err
	}
	tk, err := p.peek()
	if err != nil {
		return nil, err
	} else if tk.Kind != tokenEOS {
		return nil, p.parseErr(tk, fmt.Errorf("unexpected %v after type expression", tk))
	}
	return expr, nil
}

func (p *Parser) parseErr(tk *token, err error) error {
	if err == nil {
		return nil
	}
	var typErr *lerrors.Error
	if errors.As(err, &typErr) {
		return err
	}
	newErr := &lerrors.Error{
		Kind:     lerrors.ParserErr,
		Filename: p.filename,
		Err:      err,
	}
	if tk != nil {
		newErr.Line = tk.Line
		newErr.Column = tk.Column
	}
	return newErr
}

func (p *Parser) peek() (*token, error) {
	return p.lex.Peek()
}

func (p *Parser) consumeToken(tt tokenType) (*token, error) {
	tk, err := p.lex.Next()
	if err != nil {
		return nil, p.parseErr(tk, err)
	} else if tt != tk.Kind {
		return nil, p.parseErr(tk, fmt.Errorf("expected %q but consumed %v", tt, tk))
	}
	return tk, nil
}

func (p *Parser) next(tt tokenType) error {
	_, err := p.consumeToken(tt)
	return err
}

func (p *Parser) mustnext(tt tokenType) *token {
	tk, err := p.consumeToken(tt)
	if err != nil {
		panic(err)
	}
	return tk
}

// <type> ::= "const" <type> | <primary> ("[" "]")*.
func (p *Parser) typeexpr() (*TypeExpr, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tk.Kind == tokenConst {
		p.mustnext(tokenConst)
		inner, err := p.typeexpr()
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: KindConst, LineInfo: tk.LineInfo, Inner: inner}, nil
	}

	expr, err := p.primarytype()
	if err != nil {
		return nil, err
	}
	for {
		if tk, err := p.peek(); err != nil {
			return nil, err
		} else if tk.Kind != tokenOpenBracket {
			return expr, nil
		}
		open := p.mustnext(tokenOpenBracket)
		if err := p.next(tokenCloseBracket); err != nil {
			return nil, err
		}
		expr = &TypeExpr{Kind: KindArray, LineInfo: open.LineInfo, Elem: expr}
	}
}

// <primary> ::= "var" | <fntype> | <maptype> | <basictype> | "(" <type> ")".
func (p *Parser) primarytype() (*TypeExpr, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tk.Kind {
	case tokenVar:
		p.mustnext(tokenVar)
		return &TypeExpr{Kind: KindVar, LineInfo: tk.LineInfo}, nil
	case tokenFunction:
		return p.fntype()
	case tokenOpenBracket:
		return p.maptype()
	case tokenIdentifier:
		return p.basictype()
	case tokenOpenParen:
		p.mustnext(tokenOpenParen)
		expr, err := p.typeexpr()
		if err != nil {
			return nil, err
		}
		return expr, p.next(tokenCloseParen)
	default:
		return nil, p.parseErr(tk, fmt.Errorf("type expression expected definition found %v", tk))
	}
}

// <fntype> ::= "function" <templateargs>? "(" <typelist>? ")" (":" <rettypes>)?.
func (p *Parser) fntype() (*TypeExpr, error) {
	tk := p.mustnext(tokenFunction)
	expr := &TypeExpr{Kind: KindFunc, LineInfo: tk.LineInfo}
	template, err := p.templateargs()
	if err != nil {
		return nil, err
	}
	expr.Template = template
	if err := p.next(tokenOpenParen); err != nil {
		return nil, err
	}
	if expr.Args, err = p.typelist(tokenCloseParen); err != nil {
		return nil, err
	}
	if ptk, err := p.peek(); err != nil {
		return nil, err
	} else if ptk.Kind != tokenColon {
		return expr, nil
	}
	p.mustnext(tokenColon)
	if ptk, err := p.peek(); err != nil {
		return nil, err
	} else if ptk.Kind == tokenOpenParen {
		p.mustnext(tokenOpenParen)
		expr.Rets, err = p.typelist(tokenCloseParen)
		return expr, err
	}
	ret, err := p.typeexpr()
	if err != nil {
		return nil, err
	}
	expr.Rets = []*TypeExpr{ret}
	return expr, nil
}

// <maptype> ::= "[" <type> ":" <type> "]".
func (p *Parser) maptype() (*TypeExpr, error) {
	tk := p.mustnext(tokenOpenBracket)
	key, err := p.typeexpr()
	if err != nil {
		return nil, err
	} else if err := p.next(tokenColon); err != nil {
		return nil, err
	}
	value, err := p.typeexpr()
	if err != nil {
		return nil, err
	}
	return &TypeExpr{Kind: KindMap, LineInfo: tk.LineInfo, Key: key, Value: value}, p.next(tokenCloseBracket)
}

// <basictype> ::= <segment> ("." <segment>)*
// <segment>   ::= <name> <templateargs>?.
func (p *Parser) basictype() (*TypeExpr, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	expr := &TypeExpr{Kind: KindBasic, LineInfo: first.LineInfo}
	for {
		name, err := p.consumeToken(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		seg := &Segment{Name: name.StringVal, LineInfo: name.LineInfo}
		if seg.Template, err = p.templateargs(); err != nil {
			return nil, err
		}
		expr.Lookup = append(expr.Lookup, seg)
		if tk, err := p.peek(); err != nil {
			return nil, err
		} else if tk.Kind != tokenPeriod {
			return expr, nil
		}
		p.mustnext(tokenPeriod)
	}
}

// <templateargs> ::= "<" <templatearg> ("," <templatearg>)* ">"
// <templatearg>  ::= (<name> ":")? <type>.
func (p *Parser) templateargs() ([]*TemplateArg, error) {
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.Kind != tokenLt {
		return nil, nil
	}
	p.mustnext(tokenLt)
	args := []*TemplateArg{}
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		}
		arg := &TemplateArg{LineInfo: tk.LineInfo}
		if tk.Kind == tokenIdentifier {
			label := p.mustnext(tokenIdentifier)
			if ptk, err := p.peek(); err != nil {
				return nil, err
			} else if ptk.Kind == tokenColon {
				p.mustnext(tokenColon)
				arg.Label = label.StringVal
			} else {
				p.lex.back(label)
			}
		}
		if arg.Type, err = p.typeexpr(); err != nil {
			return nil, err
		}
		args = append(args, arg)
		if tk, err := p.peek(); err != nil {
			return nil, err
		} else if tk.Kind == tokenComma {
			p.mustnext(tokenComma)
			continue
		}
		return args, p.next(tokenGt)
	}
}

// <typelist> ::= <type> ("," <type>)*, ended by the closing token.
func (p *Parser) typelist(closing tokenType) ([]*TypeExpr, error) {
	list := []*TypeExpr{}
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.Kind == closing {
		return list, p.next(closing)
	}
	for {
		expr, err := p.typeexpr()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
		if tk, err := p.peek(); err != nil {
			return nil, err
		} else if tk.Kind == tokenComma {
			p.mustnext(tokenComma)
			continue
		}
		return list, p.next(closing)
	}
}
