// Package liveness infers, per function, the last line at which each local
// variable is referenced. Loops widen a reference to the loop's closing line.
package liveness

// Key identifies a variable within a function.
type Key struct {
	Function string
	Variable string
}

// Reference is the most recently recorded use of a variable in a function.
type Reference struct {
	Function string
	Variable string
	Line     int
}

// LoopRegion is the line range of a for or while statement together with
// the function it was entered in.
type LoopRegion struct {
	Start    int
	End      int
	Function string
}

// Contains reports whether line falls inside the region, bounds included.
func (r LoopRegion) Contains(line int) bool {
	return r.Start <= line && line <= r.End
}

// Tracker maps (function, variable) to the last recorded reference line.
// Keys keep their first-insertion order. A Tracker serves one analysis run.
type Tracker struct {
	refs  map[Key]*Reference
	order []Key
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		refs: make(map[Key]*Reference),
	}
}

// Record inserts or overwrites the reference for (function, variable).
// Lines are not required to increase.
func (t *Tracker) Record(function, variable string, line int) {
	key := Key{Function: function, Variable: variable}
	if ref, ok := t.refs[key]; ok {
		ref.Line = line
		return
	}
	t.refs[key] = &Reference{Function: function, Variable: variable, Line: line}
	t.order = append(t.order, key)
}

// Widen forces the stored line for (function, variable) to line.
// Unknown keys are left absent.
func (t *Tracker) Widen(function, variable string, line int) {
	if ref, ok := t.refs[Key{Function: function, Variable: variable}]; ok {
		ref.Line = line
	}
}

// Lookup returns the reference for (function, variable), if any.
func (t *Tracker) Lookup(function, variable string) (Reference, bool) {
	ref, ok := t.refs[Key{Function: function, Variable: variable}]
	if !ok {
		return Reference{}, false
	}
	return *ref, true
}

// WidenLoop widens every reference of the region's function whose line
// lies inside the region to the region's end line.
func (t *Tracker) WidenLoop(region LoopRegion) {
	for _, key := range t.order {
		if key.Function != region.Function {
			continue
		}
		if ref := t.refs[key]; region.Contains(ref.Line) {
			t.Widen(key.Function, key.Variable, region.End)
		}
	}
}

// References returns a snapshot of all references in insertion order.
func (t *Tracker) References() []Reference {
	out := make([]Reference, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.refs[key])
	}
	return out
}

// Len returns the number of tracked (function, variable) pairs.
func (t *Tracker) Len() int {
	return len(t.order)
}
