package actionlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/coord"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	l := New()
	cell := coord.Absolute{Row: 0, Col: 0}
	var state calc.Value

	apply := func(c coord.Absolute, in CellInput) error {
		state = in.Value
		return nil
	}

	state = calc.Value{Kind: calc.KindEmpty}
	before := CellInput{Kind: InputValue, Value: state}
	state = calc.Value{Kind: calc.KindNumber, Num: 5}
	l.Record(cell, before, CellInput{Kind: InputValue, Value: state})

	ok, err := l.Undo(apply)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, calc.KindEmpty, state.Kind)

	ok, err = l.Redo(apply)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, state.Num)
}

func TestUndoOnEmptyLogReturnsFalse(t *testing.T) {
	l := New()
	ok, err := l.Undo(func(coord.Absolute, CellInput) error { return nil })
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordClearsRedoStack(t *testing.T) {
	l := New()
	cell := coord.Absolute{Row: 0, Col: 0}
	applyNoop := func(coord.Absolute, CellInput) error { return nil }

	l.Record(cell, CellInput{Kind: InputValue}, CellInput{Kind: InputValue, Value: calc.Value{Kind: calc.KindNumber, Num: 1}})
	_, err := l.Undo(applyNoop)
	require.NoError(t, err)
	assert.True(t, l.CanRedo())

	l.Record(cell, CellInput{Kind: InputValue}, CellInput{Kind: InputValue, Value: calc.Value{Kind: calc.KindNumber, Num: 2}})
	assert.False(t, l.CanRedo())
}

func TestHistoryLimitDropsOldestAction(t *testing.T) {
	l := New(WithHistoryLimit(2))
	cell := coord.Absolute{Row: 0, Col: 0}
	for i := 0; i < 5; i++ {
		l.Record(cell, CellInput{Kind: InputValue}, CellInput{Kind: InputValue})
	}
	assert.Len(t, l.undo, 2)
}

func TestActionsCarryDistinctIDs(t *testing.T) {
	l := New()
	cell := coord.Absolute{Row: 0, Col: 0}
	a1 := l.Record(cell, CellInput{Kind: InputValue}, CellInput{Kind: InputValue})
	a2 := l.Record(cell, CellInput{Kind: InputValue}, CellInput{Kind: InputValue})
	assert.NotEqual(t, a1.ID, a2.ID)
}
