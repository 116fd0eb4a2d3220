package parser

import (
	"fmt"

	"github.com/matthew-healy/uplp/pkg/token"
)

// SyntaxError is the parser's error taxonomy (spec.md §7's Parse family):
// InvalidToken and UnexpectedToken. UnboundIdentifier is spec'd as a
// parse-level error too, but it is only discoverable after scope
// checking, so it is carried by internal/scope.Error and merged in by
// internal/driver, not produced here.
type SyntaxError struct {
	Kind     ErrorKind
	Token    token.Token
	Expected string
}

// ErrorKind discriminates the members of SyntaxError.
type ErrorKind int

const (
	ErrInvalidToken ErrorKind = iota
	ErrUnexpectedToken
)

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case ErrInvalidToken:
		return fmt.Sprintf("invalid token %q", e.Token.Literal)
	case ErrUnexpectedToken:
		return fmt.Sprintf("unexpected token %s, expected %s", e.Token, e.Expected)
	default:
		return "unknown parse error"
	}
}

func invalidToken(t token.Token) *SyntaxError {
	return &SyntaxError{Kind: ErrInvalidToken, Token: t}
}

func unexpectedToken(t token.Token, expected string) *SyntaxError {
	return &SyntaxError{Kind: ErrUnexpectedToken, Token: t, Expected: expected}
}
