package parser

import (
	"testing"

	"github.com/matthew-healy/uplp/internal/interner"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "(1 + (2 * 3))"},
		{"2-2-2", "((2 - 2) - 2)"},
		{"1+2==3&&true", "(((1 + 2) == 3) && true)"},
		{"99 + 105 * 22 / 4", "(99 + ((105 * 22) / 4))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input, interner.New())
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got := e.String(); normalizeSpace(got) != normalizeSpace(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLetAndLetRec(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-recursive", "let x = 1 in let y = 2 in x + y"},
		{"recursive", "let rec f = |n| if n == 0 then 1 else n * f (n - 1) in f 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input, interner.New()); err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
		})
	}
}

func TestParseLambdaApplication(t *testing.T) {
	e, err := Parse("let id = |x| x in id 42", interner.New())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if e == nil {
		t.Fatal("Parse returned a nil expression")
	}
}

func TestParseMultiParamLambdaDesugarsToCurriedChain(t *testing.T) {
	e, err := Parse("|x, y| x + y", interner.New())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := "(|x| (|y| (x + y)))"
	if normalizeSpace(e.String()) != normalizeSpace(want) {
		t.Errorf("Parse() = %s, want %s", e, want)
	}
}

func TestParseAscription(t *testing.T) {
	if _, err := Parse("(|x: Num| x) : Num -> Num", interner.New()); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
}

func TestParseUnit(t *testing.T) {
	e, err := Parse("()", interner.New())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if e.String() != "()" {
		t.Errorf("Parse(\"()\") = %s, want ()", e)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dangling operator", "1 +"},
		{"missing in", "let x = 1 x"},
		{"unclosed paren", "(1 + 2"},
		{"bad token", "1 $ 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input, interner.New()); err == nil {
				t.Fatalf("Parse(%q) returned no error", tt.input)
			}
		})
	}
}

// normalizeSpace removes every space, so a hand-written "want" string and
// ast.RawExpr's String() are compared on structure and punctuation, not
// on spacing.
func normalizeSpace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
