package env

import "testing"

func TestLookupResolvesInnermostFirst(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	e.Bind(2)
	e.Bind(3)

	tests := []struct {
		index int
		want  int
	}{
		{0, 3},
		{1, 2},
		{2, 1},
	}
	for _, tt := range tests {
		got, ok := e.Lookup(tt.index)
		if !ok {
			t.Fatalf("Lookup(%d) found nothing", tt.index)
		}
		if got != tt.want {
			t.Errorf("Lookup(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestLookupOutOfRangeFails(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	if _, ok := e.Lookup(1); ok {
		t.Error("Lookup(1) on a single-binding env succeeded, want false")
	}
}

func TestUnbindRemovesMostRecentBinding(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	e.Bind(2)
	e.Unbind()
	got, ok := e.Lookup(0)
	if !ok || got != 1 {
		t.Errorf("Lookup(0) after Unbind = (%d, %v), want (1, true)", got, ok)
	}
	if _, ok := e.Lookup(1); ok {
		t.Error("Lookup(1) after Unbind still finds a binding")
	}
}

func TestCloneSnapshotsCurrentBindings(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	snap := e.Clone()

	got, ok := snap.Lookup(0)
	if !ok || got != 1 {
		t.Fatalf("snapshot Lookup(0) = (%d, %v), want (1, true)", got, ok)
	}
}

// Binds made to either side of a Clone are invisible to the other, since
// each gets its own fresh current layer over the shared frozen parent
// (env.go's own doc comment on Clone).
func TestCloneIsolatesSubsequentBindsFromOriginal(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	snap := e.Clone()

	e.Bind(2)
	if _, ok := snap.Lookup(1); ok {
		t.Error("a bind on the original env is visible through the earlier snapshot")
	}

	snap.Bind(3)
	got, ok := e.Lookup(0)
	if !ok || got != 2 {
		t.Errorf("a bind on the snapshot leaked into the original: Lookup(0) = (%d, %v), want (2, true)", got, ok)
	}
}

func TestCloneSharesAncestryAcrossMultipleSnapshots(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	a := e.Clone()
	a.Bind(2)
	b := a.Clone()

	got, ok := b.Lookup(1)
	if !ok || got != 1 {
		t.Errorf("b.Lookup(1) through two layers of ancestry = (%d, %v), want (1, true)", got, ok)
	}
}

func TestUpdateFirstMatchPatchesInPlace(t *testing.T) {
	e := New[int]()
	e.Bind(-1)
	e.Bind(99)

	isPlaceholder := func(v int) bool { return v == -1 }
	if !e.UpdateFirstMatch(42, isPlaceholder) {
		t.Fatal("UpdateFirstMatch found no matching binding")
	}

	got, _ := e.Lookup(1) // the -1 binding is the outer one, index 1 from the top
	if got != 42 {
		t.Errorf("Lookup(1) after UpdateFirstMatch = %d, want 42", got)
	}
	if got, _ := e.Lookup(0); got != 99 {
		t.Errorf("Lookup(0) disturbed by UpdateFirstMatch = %d, want 99", got)
	}
}

func TestUpdateFirstMatchSearchesAcrossLayers(t *testing.T) {
	e := New[int]()
	e.Bind(-1)
	snap := e.Clone()
	snap.Bind(1)

	isPlaceholder := func(v int) bool { return v == -1 }
	if !snap.UpdateFirstMatch(7, isPlaceholder) {
		t.Fatal("UpdateFirstMatch didn't find the placeholder across a frozen parent layer")
	}
	got, _ := snap.Lookup(1)
	if got != 7 {
		t.Errorf("Lookup(1) after cross-layer UpdateFirstMatch = %d, want 7", got)
	}
}

func TestUpdateFirstMatchReportsNoMatch(t *testing.T) {
	e := New[int]()
	e.Bind(1)
	if e.UpdateFirstMatch(2, func(v int) bool { return v == 999 }) {
		t.Error("UpdateFirstMatch reported a match when none exists")
	}
}
