// Package interner maps identifier strings to small, stable, comparable
// ids. Grounded on original_source/src/interner.rs (intern/lookup, id
// identity, round-trip), re-expressed without that file's arena/unsafe
// scaffolding: Go's garbage collector and immutable strings already give
// us what `typed_arena`+`unsafe::transmute` bought the Rust version, so a
// mutex-guarded map is the complete, safe equivalent. The mutex idiom
// itself mirrors the interface+sync.RWMutex pattern used for shared
// mutable state elsewhere in this codebase's lineage.
package interner

import "sync"

// ID is a stable, comparable handle for an interned string.
type ID int

// Interner interns strings into small ids with O(1) equality.
type Interner struct {
	mu      sync.RWMutex
	ids     map[string]ID
	strings []string
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{ids: make(map[string]ID)}
}

// Intern returns the id for s, interning it on first sight. Calling
// Intern(s) repeatedly with an equal string always returns the same id.
func (in *Interner) Intern(s string) ID {
	in.mu.RLock()
	if id, ok := in.ids[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := ID(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

// Name returns the original string for id. Panics if id was never
// produced by this Interner: that would indicate a bug elsewhere in the
// pipeline, not a recoverable condition.
func (in *Interner) Name(id ID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(in.strings) {
		panic("interner: unknown id")
	}
	return in.strings[id]
}
