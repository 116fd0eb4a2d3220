package lexer

import (
	"testing"

	"github.com/matthew-healy/uplp/pkg/token"
)

func TestNextToken(t *testing.T) {
	input := `let rec f = |n: Num| if n == 0 then 1 else n * f (n - 1) in f 5`

	tests := []struct {
		expectedLiteral string
		expectedType    token.Type
	}{
		{"let", token.LET},
		{"rec", token.REC},
		{"f", token.IDENT},
		{"=", token.ASSIGN},
		{"|", token.PIPE},
		{"n", token.IDENT},
		{":", token.COLON},
		{"Num", token.IDENT},
		{"|", token.PIPE},
		{"if", token.IF},
		{"n", token.IDENT},
		{"==", token.EQ},
		{"0", token.NUM},
		{"then", token.THEN},
		{"1", token.NUM},
		{"else", token.ELSE},
		{"n", token.IDENT},
		{"*", token.STAR},
		{"f", token.IDENT},
		{"(", token.LPAREN},
		{"n", token.IDENT},
		{"-", token.MINUS},
		{"1", token.NUM},
		{")", token.RPAREN},
		{"in", token.IN},
		{"f", token.IDENT},
		{"5", token.NUM},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (literal=%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestAssignVsEquality guards the fix recorded in DESIGN.md: a bare '='
// is the let-binding separator (ASSIGN), never EQ, which is reserved for
// '=='.
func TestAssignVsEquality(t *testing.T) {
	l := New("= ==")
	if tok := l.NextToken(); tok.Type != token.ASSIGN || tok.Literal != "=" {
		t.Fatalf("got %s(%q), want ASSIGN(\"=\")", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != token.EQ || tok.Literal != "==" {
		t.Fatalf("got %s(%q), want EQ(\"==\")", tok.Type, tok.Literal)
	}
}

func TestOperatorsAndDelimiters(t *testing.T) {
	input := `+ - * / -> → && ( ) | : ,`
	tests := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.ARROW, token.ARROW, token.AND,
		token.LPAREN, token.RPAREN, token.PIPE, token.COLON, token.COMMA,
		token.EOF,
	}
	l := New(input)
	for i, want := range tests {
		if tok := l.NextToken(); tok.Type != want {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s", i, want, tok.Type)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []string{"0", "42", "3.14", "0.5"}
	for _, lit := range tests {
		t.Run(lit, func(t *testing.T) {
			l := New(lit)
			tok := l.NextToken()
			if tok.Type != token.NUM {
				t.Fatalf("type = %s, want NUM", tok.Type)
			}
			if tok.Literal != lit {
				t.Errorf("literal = %q, want %q", tok.Literal, lit)
			}
		})
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("$")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("type = %s, want ILLEGAL", tok.Type)
	}
}

func TestSkipsLineComments(t *testing.T) {
	l := New("1 -- this is a comment\n+ 2")
	if tok := l.NextToken(); tok.Type != token.NUM || tok.Literal != "1" {
		t.Fatalf("got %s(%q), want NUM(\"1\")", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != token.PLUS {
		t.Fatalf("got %s, want PLUS", tok.Type)
	}
}

func TestPreserveCommentsOption(t *testing.T) {
	l := New("-- key: value\n1", WithPreserveComments(true))
	comment := l.RawComment()
	if comment != "-- key: value" {
		t.Fatalf("RawComment() = %q, want %q", comment, "-- key: value")
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	l := New("ab\ncd")
	first := l.NextToken() // "ab"
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("first token pos = %v, want line 1 col 1", first.Pos)
	}
	second := l.NextToken() // "cd"
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("second token pos = %v, want line 2 col 1", second.Pos)
	}
}
