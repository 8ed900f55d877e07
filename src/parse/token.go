package parse

import "fmt"

type (
	tokenType string
	token     struct {
		LineInfo
		Kind      tokenType
		StringVal string
	}
)

const (
	tokenComma        tokenType = ","
	tokenPeriod       tokenType = "."
	tokenColon        tokenType = ":"
	tokenLt           tokenType = "<"
	tokenGt           tokenType = ">"
	tokenOpenParen    tokenType = "("
	tokenCloseParen   tokenType = ")"
	tokenOpenBracket  tokenType = "["
	tokenCloseBracket tokenType = "]"
	tokenConst        tokenType = "const"
	tokenVar          tokenType = "var"
	tokenFunction     tokenType = "function"
	tokenIdentifier   tokenType = "identifier"
	tokenEOS          tokenType = "<EOS>"
)

var keywords = map[string]tokenType{
	string(tokenConst):    tokenConst,
	string(tokenVar):      tokenVar,
	string(tokenFunction): tokenFunction,
}

func (tk *token) String() string {
	switch tk.Kind {
	case tokenIdentifier:
		return fmt.Sprintf("identifier %q", tk.StringVal)
	default:
		return fmt.Sprintf("%q", string(tk.Kind))
	}
}
