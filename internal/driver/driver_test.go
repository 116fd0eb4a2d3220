package driver

import (
	"strings"
	"testing"
)

func TestEvaluateEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"arithmetic", "1 + 2 * 3", "7"},
		{"let", "let x = 1 in let y = 2 in x + y", "3"},
		{"if", "if 1 == 1 then 10 else 20", "10"},
		{"lambda application", "(|x| x + 1) 41", "42"},
		{"recursive function", "let rec f = |n| if n == 0 then 1 else n * f (n - 1) in f 5", "120"},
		{"multi-param lambda sugar", "(|x, y| x + y) 3 4", "7"},
		{"ascription", "1 : Num", "1"},
		{"unit", "()", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Evaluate(tt.source)
			if err != nil {
				t.Fatalf("Evaluate(%q) returned error: %v", tt.source, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.source, got, tt.want)
			}
		})
	}
}

func TestTypecheckInfersExpectedType(t *testing.T) {
	typ, err := Typecheck("|x: Num| x + 1")
	if err != nil {
		t.Fatalf("Typecheck returned error: %v", err)
	}
	if got := typ.String(); got != "Num -> Num" {
		t.Errorf("Typecheck() = %s, want Num -> Num", got)
	}
}

func TestParseReturnsRawAST(t *testing.T) {
	raw, err := Parse("1 + 2")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if raw == nil {
		t.Fatal("Parse returned a nil expression")
	}
}

func TestErrorStageClassification(t *testing.T) {
	tests := []struct {
		name   string
		source string
		stage  Stage
	}{
		{"dangling operator is a parse error", "1 +", StageParse},
		{"unbound identifier is a parse error", "x", StageParse},
		{"type mismatch", "1 + true", StageType},
		{"division by zero is an evaluation error", "1 / 0", StageEval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.source)
			if err == nil {
				t.Fatalf("Evaluate(%q) returned no error", tt.source)
			}
			if err.Stage != tt.stage {
				t.Errorf("Evaluate(%q) stage = %v, want %v", tt.source, err.Stage, tt.stage)
			}
		})
	}
}

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"1 +", "Parse.unexpected_token"},
		{"x", "Parse.unbound_identifier"},
		{"1 + ()", "Type.mismatch"},
		{"10 / 0", "Evaluation.division_by_zero"},
		{"(|x| x) == (|x| x)", "Evaluation.illegal_equality"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := Evaluate(tt.source)
			if err == nil {
				t.Fatalf("Evaluate(%q) returned no error", tt.source)
			}
			if got := err.Code(); got != tt.code {
				t.Errorf("Evaluate(%q).Code() = %s, want %s", tt.source, got, tt.code)
			}
		})
	}
}

func TestErrorFormatFallsBackToOneLineWithoutSource(t *testing.T) {
	_, err := Evaluate("x")
	if err == nil {
		t.Fatal("Evaluate returned no error")
	}
	if err.Format() != err.Error() {
		t.Errorf("Format() without WithSource = %q, want %q", err.Format(), err.Error())
	}
}

func TestErrorFormatRendersCaretWithSource(t *testing.T) {
	source := "x + 1"
	_, err := Evaluate(source)
	if err == nil {
		t.Fatal("Evaluate returned no error")
	}
	formatted := err.WithSource(source, "test.uplp").Format()
	if !strings.Contains(formatted, "test.uplp") {
		t.Errorf("Format() = %q, want it to mention the file name", formatted)
	}
	if !strings.Contains(formatted, "^") {
		t.Errorf("Format() = %q, want a caret", formatted)
	}
}

func TestDivisionByZeroHasNoPosition(t *testing.T) {
	_, err := Evaluate("1 / 0")
	if err == nil {
		t.Fatal("Evaluate returned no error")
	}
	formatted := err.WithSource("1 / 0", "test.uplp").Format()
	if formatted != err.Error() {
		t.Errorf("Format() for a positionless evaluation error = %q, want %q", formatted, err.Error())
	}
}
