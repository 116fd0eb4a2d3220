package fixture

import (
	"fmt"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/matthew-healy/uplp/internal/driver"
	"github.com/matthew-healy/uplp/internal/value"
)

// TestExamples runs every examples/**/*.uplp fixture against the full
// driver pipeline: a skip flag, an explicit expectation (value or error)
// checked first, and a go-snaps fallback otherwise. Each run goes
// through a goroutine+time.After+select guard so a fixture that loops
// (the interpreter itself never times out, but a test suite still needs
// one) cannot hang the whole suite; this is the module's one goroutine.
func TestExamples(t *testing.T) {
	fixtures, err := Discover("../../examples")
	if err != nil {
		t.Fatalf("failed to discover fixtures: %v", err)
	}
	if len(fixtures) == 0 {
		t.Fatal("no fixtures found under examples/")
	}

	for _, f := range fixtures {
		f := f
		name := f.Path
		t.Run(name, func(t *testing.T) {
			if f.Preface.Skip {
				t.Skipf("fixture %s is marked skip", f.Path)
			}
			runFixture(t, f)
		})
	}
}

type evalOutcome struct {
	val value.Val
	err *driver.Error
}

func runFixture(t *testing.T, f Fixture) {
	resultCh := make(chan evalOutcome, 1)
	go func() {
		v, derr := driver.Evaluate(f.Source)
		resultCh <- evalOutcome{val: v, err: derr}
	}()

	var outcome evalOutcome
	select {
	case outcome = <-resultCh:
	case <-time.After(5 * time.Second):
		t.Fatalf("fixture %s timed out after 5s", f.Path)
		return
	}

	switch {
	case f.Preface.Error != nil:
		assertError(t, f, outcome.err)
	case f.Preface.Value != nil:
		assertValue(t, f, outcome)
	default:
		assertSnapshot(t, f, outcome)
	}
}

func assertError(t *testing.T, f Fixture, err *driver.Error) {
	if err == nil {
		t.Fatalf("fixture %s: expected error %q, evaluation succeeded", f.Path, f.Preface.Error.Error)
		return
	}
	if got := err.Code(); got != f.Preface.Error.Error {
		expectation, jsonErr := f.Preface.Error.ExpectationJSON()
		if jsonErr != nil {
			expectation = "<unencodable>"
		}
		t.Errorf("fixture %s: error code = %s, want %s (message: %s, documented expectation: %s)",
			f.Path, got, f.Preface.Error.Error, err.Error(), expectation)
	}
}

func assertValue(t *testing.T, f Fixture, outcome evalOutcome) {
	if outcome.err != nil {
		t.Fatalf("fixture %s: expected value, got error: %s", f.Path, outcome.err.Error())
		return
	}
	want := f.Preface.Value
	if got := typeName(outcome.val); got != want.Type {
		t.Errorf("fixture %s: value type = %s, want %s", f.Path, got, want.Type)
	}
	if got := outcome.val.String(); got != want.Value {
		t.Errorf("fixture %s: value = %s, want %s", f.Path, got, want.Value)
	}
}

func assertSnapshot(t *testing.T, f Fixture, outcome evalOutcome) {
	var rendered string
	if outcome.err != nil {
		rendered = outcome.err.Error()
	} else {
		rendered = outcome.val.String()
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%s_output", f.Path), rendered)
}

func typeName(v value.Val) string {
	switch v.(type) {
	case value.Num:
		return "Num"
	case value.Bool:
		return "Bool"
	case value.Unit:
		return "Unit"
	default:
		return fmt.Sprintf("%T", v)
	}
}
