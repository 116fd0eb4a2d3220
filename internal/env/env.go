// Package env implements the lexically layered, shared-ancestry
// environment described by spec.md §3/§4.2: a stack of layers, each an
// ordered sequence of bindings, addressed by de Bruijn index, where
// layers may be shared across environments once frozen.
//
// Grounded on original_source/src/env.rs's `Env<T>{current: Rc<Vec<T>>,
// previous: RefCell<Option<Rc<Env<T>>>>}`. Rust's Rc<RefCell<>> pair
// exists there to satisfy the borrow checker around a lazily-frozen,
// possibly-shared current layer; Go's garbage collector already keeps a
// frozen layer alive for as long as anything still points at it, so this
// port re-expresses the same snapshot discipline with plain pointers
// instead of manual reference counting: after Clone, BOTH the receiver
// and the returned clone sit on an empty current layer that only they
// own, above the shared, frozen former bindings (a current layer that is
// already empty has nothing to freeze: the receiver keeps it and the
// clone opens its own over the same parent). This sidesteps the
// original's subtler invariant (self keeps mutating the same Rc until
// the next bind/unbind observes sharing) in favour of an invariant that
// holds unconditionally and is easier to verify: after Clone, neither
// side can ever see the other's subsequent bindings.
package env

// layer is one frame of bindings. Each binding is stored behind a
// pointer so that Update can mutate a single slot in place (the
// interior-mutable cell spec.md §4.2 calls for) without disturbing the
// rest of the layer, and so that a layer can be frozen (shared) without
// copying its bindings.
type layer[T any] struct {
	bindings []*T
	parent   *layer[T]
}

// Env is a snapshot of a layered environment: a cursor onto a (possibly
// shared) chain of layers.
type Env[T any] struct {
	current *layer[T]
}

// New returns an empty environment.
func New[T any]() *Env[T] {
	return &Env[T]{current: &layer[T]{}}
}

// Bind pushes v onto the current layer.
func (e *Env[T]) Bind(v T) {
	cell := new(T)
	*cell = v
	e.current.bindings = append(e.current.bindings, cell)
}

// Unbind removes the innermost binding. If the current layer is empty (a
// Clone has frozen its bindings into the parent chain), the bindings of
// the nearest non-empty ancestor, minus its last, are copied into a fresh
// current layer, so the frozen layer that other environments share is
// left untouched. Precondition: the environment holds at least one
// binding; EndLet always pairs with a Grab/Dummy that opened the slot it
// removes.
func (e *Env[T]) Unbind() {
	l := e.current
	for len(l.bindings) == 0 && l.parent != nil {
		l = l.parent
	}
	n := len(l.bindings)
	if l == e.current {
		e.current.bindings = e.current.bindings[:n-1]
		return
	}
	kept := make([]*T, n-1)
	copy(kept, l.bindings[:n-1])
	e.current = &layer[T]{bindings: kept, parent: l.parent}
}

// Lookup returns the binding at de Bruijn index i and true, or the zero
// value and false if i is out of range across the whole chain.
func (e *Env[T]) Lookup(i int) (T, bool) {
	cell := e.lookupCell(i)
	if cell == nil {
		var zero T
		return zero, false
	}
	return *cell, true
}

func (e *Env[T]) lookupCell(i int) *T {
	l := e.current
	for l != nil {
		n := len(l.bindings)
		if i < n {
			return l.bindings[n-1-i]
		}
		i -= n
		l = l.parent
	}
	return nil
}

// Clone produces a snapshot usable as a closure's captured environment.
// A non-empty current layer is frozen into a shared parent node; both the
// receiver and the returned environment start with a fresh, independent
// empty current layer on top of that shared parent, so further binds on
// either side are invisible to the other (the O(1) snapshot spec.md
// §4.2 requires: freezing moves, it never copies, the existing
// bindings). An empty current layer is not frozen: the receiver keeps it
// and the clone gets a new empty layer over the same parent, so repeated
// clones of one environment do not lengthen its chain.
func (e *Env[T]) Clone() *Env[T] {
	if len(e.current.bindings) == 0 {
		return &Env[T]{current: &layer[T]{parent: e.current.parent}}
	}
	frozen := e.current
	e.current = &layer[T]{parent: frozen}
	return &Env[T]{current: &layer[T]{parent: frozen}}
}

// UpdateFirstMatch searches right-to-left (innermost binding first,
// walking out through parent layers) for the first binding satisfying
// pred, and overwrites its cell in place with v. Used by recursive-let's
// Update instruction to patch a Dummy cell once its value is known;
// returns false if no cell matched.
func (e *Env[T]) UpdateFirstMatch(v T, pred func(T) bool) bool {
	l := e.current
	for l != nil {
		for i := len(l.bindings) - 1; i >= 0; i-- {
			if pred(*l.bindings[i]) {
				*l.bindings[i] = v
				return true
			}
		}
		l = l.parent
	}
	return false
}
