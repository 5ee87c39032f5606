package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_RecordOverwrites(t *testing.T) {
	tr := NewTracker()
	tr.Record("main", "p", 3)
	tr.Record("main", "p", 9)
	tr.Record("main", "p", 5)

	ref, ok := tr.Lookup("main", "p")
	require.True(t, ok)
	assert.Equal(t, 5, ref.Line, "later record wins even with an earlier line")
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_LookupAbsent(t *testing.T) {
	tr := NewTracker()
	tr.Record("main", "p", 3)

	_, ok := tr.Lookup("main", "q")
	assert.False(t, ok)
	_, ok = tr.Lookup("other", "p")
	assert.False(t, ok)
}

func TestTracker_Widen(t *testing.T) {
	tr := NewTracker()
	tr.Record("f", "buf", 12)

	tr.Widen("f", "buf", 4)
	ref, _ := tr.Lookup("f", "buf")
	assert.Equal(t, 4, ref.Line, "widen is unconditional")

	tr.Widen("f", "missing", 20)
	_, ok := tr.Lookup("f", "missing")
	assert.False(t, ok)
}

func TestTracker_InsertionOrder(t *testing.T) {
	tr := NewTracker()
	tr.Record("f", "b", 2)
	tr.Record("f", "a", 3)
	tr.Record("g", "a", 7)
	tr.Record("f", "b", 8)

	refs := tr.References()
	require.Len(t, refs, 3)
	assert.Equal(t, Reference{Function: "f", Variable: "b", Line: 8}, refs[0])
	assert.Equal(t, Reference{Function: "f", Variable: "a", Line: 3}, refs[1])
	assert.Equal(t, Reference{Function: "g", Variable: "a", Line: 7}, refs[2])
}

func TestTracker_WidenLoop(t *testing.T) {
	tr := NewTracker()
	tr.Record("f", "before", 4)
	tr.Record("f", "start", 5)
	tr.Record("f", "inside", 6)
	tr.Record("f", "end", 7)
	tr.Record("f", "after", 8)
	tr.Record("g", "inside", 6)

	tr.WidenLoop(LoopRegion{Start: 5, End: 7, Function: "f"})

	tests := []struct {
		function string
		variable string
		want     int
	}{
		{"f", "before", 4},
		{"f", "start", 7},
		{"f", "inside", 7},
		{"f", "end", 7},
		{"f", "after", 8},
		{"g", "inside", 6},
	}
	for _, tt := range tests {
		t.Run(tt.function+"/"+tt.variable, func(t *testing.T) {
			ref, ok := tr.Lookup(tt.function, tt.variable)
			require.True(t, ok)
			assert.Equal(t, tt.want, ref.Line)
		})
	}
}

func TestLoopRegion_Contains(t *testing.T) {
	r := LoopRegion{Start: 5, End: 7}
	assert.False(t, r.Contains(4))
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(7))
	assert.False(t, r.Contains(8))
}
