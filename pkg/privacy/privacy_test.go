package privacy

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allLevels = []Level{LevelNone, LevelPersonal, LevelFull}

func TestEvaluateUnauthenticatedClamp(t *testing.T) {
	for _, level := range allLevels {
		for _, refs := range []bool{false, true} {
			v := Evaluate(Viewer{Authenticated: false, CanViewReferences: refs}, level)

			assert.Equal(t, LevelNone, v.Level, "level %s refs %v", level, refs)
			assert.False(t, v.ShowPersonalContact, "level %s refs %v", level, refs)
			assert.False(t, v.ShowReferenceContact, "level %s refs %v", level, refs)
			assert.False(t, v.ShowPersonalBlock, "level %s refs %v", level, refs)
		}
	}
}

func TestEvaluateReferenceGating(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		refs      bool
		wantRefs  bool
		wantOwn   bool
		wantBlock bool
	}{
		{name: "full with capability", level: LevelFull, refs: true, wantRefs: true, wantOwn: true, wantBlock: true},
		{name: "full without capability", level: LevelFull, refs: false, wantRefs: false, wantOwn: true, wantBlock: true},
		{name: "personal with capability", level: LevelPersonal, refs: true, wantRefs: false, wantOwn: true, wantBlock: true},
		{name: "personal without capability", level: LevelPersonal, refs: false, wantRefs: false, wantOwn: true, wantBlock: true},
		{name: "none with capability", level: LevelNone, refs: true, wantRefs: false, wantOwn: false, wantBlock: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(Viewer{Authenticated: true, CanViewReferences: tt.refs}, tt.level)

			assert.Equal(t, tt.level, v.Level)
			assert.Equal(t, tt.wantRefs, v.ShowReferenceContact)
			assert.Equal(t, tt.wantOwn, v.ShowPersonalContact)
			assert.Equal(t, tt.wantBlock, v.ShowPersonalBlock)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("FULL")
	require.NoError(t, err)
	assert.Equal(t, LevelFull, level)

	level, err = ParseLevel(" personal ")
	require.NoError(t, err)
	assert.Equal(t, LevelPersonal, level)

	level, err = ParseLevel("everything")
	require.Error(t, err)
	assert.Equal(t, LevelNone, level)
}

func TestLevelNextCycles(t *testing.T) {
	assert.Equal(t, LevelPersonal, LevelNone.Next())
	assert.Equal(t, LevelFull, LevelPersonal.Next())
	assert.Equal(t, LevelNone, LevelFull.Next())
}

func TestSelectorCycle(t *testing.T) {
	s := NewSelector(Viewer{Authenticated: true}, LevelNone)

	var got []Level
	for i := 0; i < 4; i++ {
		level, err := s.Cycle()
		require.NoError(t, err)
		got = append(got, level)
	}

	assert.Equal(t, []Level{LevelPersonal, LevelFull, LevelNone, LevelPersonal}, got)
}

func TestSelectorUnauthenticated(t *testing.T) {
	// A level arriving from a shared link is clamped on construction.
	s := NewSelector(Viewer{Authenticated: false, CanViewReferences: true}, LevelFull)
	assert.Equal(t, LevelNone, s.Level())

	_, err := s.Cycle()
	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, LevelNone, s.Level())

	err = s.Set(LevelFull)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, LevelFull, pe.Requested)
	assert.Equal(t, LevelNone, s.Level())

	// Selecting none is always allowed.
	require.NoError(t, s.Set(LevelNone))
}

func TestSelectorSet(t *testing.T) {
	s := NewSelector(Viewer{Authenticated: true, CanViewReferences: false}, LevelPersonal)
	assert.Equal(t, LevelPersonal, s.Level())

	require.NoError(t, s.Set(LevelFull))
	v := s.Visibility()
	assert.Equal(t, LevelFull, v.Level)
	assert.True(t, v.ShowPersonalContact)
	assert.False(t, v.ShowReferenceContact)
}
