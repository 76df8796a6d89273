package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/cellerr"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/engineerr"
	"github.com/wiredcell/ssheet/internal/expr"
)

type stubClock struct{}

func (stubClock) Sleep(time.Duration) {}

func a(row, col int) coord.Absolute { return coord.Absolute{Row: row, Col: col} }

func cellRef(rel coord.Absolute, origin coord.Absolute) *expr.CellRef {
	return &expr.CellRef{Rel: coord.ToRelative(rel, origin)}
}

func TestSetValuePropagatesToDependents(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 5}))
	require.NoError(t, s.SetExpression(a(0, 1), &expr.BinaryOp{
		Lhs: cellRef(a(0, 0), a(0, 1)), Rhs: &expr.Number{Value: 3}, Operator: expr.Add,
	}))
	assert.Equal(t, 8.0, s.GetValue(a(0, 1)).Num)

	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 10}))
	assert.Equal(t, 13.0, s.GetValue(a(0, 1)).Num)
}

func TestSetExpressionRollsBackOnCycle(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 5}))
	require.NoError(t, s.SetExpression(a(1, 0), cellRef(a(0, 0), a(1, 0))))
	require.NoError(t, s.SetExpression(a(2, 0), cellRef(a(1, 0), a(2, 0))))

	err := s.SetExpression(a(0, 0), cellRef(a(2, 0), a(0, 0)))
	require.Error(t, err)
	var ee *engineerr.Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, engineerr.CircularDependency, ee.Code)

	assert.Equal(t, 5.0, s.GetValue(a(0, 0)).Num)
	_, hasFormula := s.GetExpression(a(0, 0))
	assert.False(t, hasFormula)
	assert.False(t, s.graph.hasCycleFrom(a(0, 0)))
}

func TestDivideByZeroPropagatesAsDependsOnErr(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 1}))
	require.NoError(t, s.SetValue(a(1, 0), calc.Value{Kind: calc.KindNumber, Num: 0}))
	require.NoError(t, s.SetExpression(a(2, 0), &expr.BinaryOp{
		Lhs: cellRef(a(0, 0), a(2, 0)), Rhs: cellRef(a(1, 0), a(2, 0)), Operator: expr.Divide,
	}))
	assert.Equal(t, calc.KindError, s.GetValue(a(2, 0)).Kind)
	assert.Equal(t, cellerr.DivideByZero, s.GetValue(a(2, 0)).Err)

	require.NoError(t, s.SetExpression(a(3, 0), &expr.BinaryOp{
		Lhs: cellRef(a(2, 0), a(3, 0)), Rhs: &expr.Number{Value: 1}, Operator: expr.Add,
	}))
	assert.Equal(t, cellerr.DependsOnErr, s.GetValue(a(3, 0)).Err)

	require.NoError(t, s.SetValue(a(1, 0), calc.Value{Kind: calc.KindNumber, Num: 2}))
	assert.Equal(t, 0.5, s.GetValue(a(2, 0)).Num)
	assert.Equal(t, 1.5, s.GetValue(a(3, 0)).Num)
}

func TestCopyExpressionRebasesRelativeRefs(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 3}))
	require.NoError(t, s.SetValue(a(1, 0), calc.Value{Kind: calc.KindNumber, Num: 5}))
	require.NoError(t, s.SetExpression(a(0, 1), &expr.BinaryOp{
		Lhs: cellRef(a(0, 0), a(0, 1)), Rhs: cellRef(a(1, 0), a(0, 1)), Operator: expr.Add,
	}))
	assert.Equal(t, 8.0, s.GetValue(a(0, 1)).Num)

	require.NoError(t, s.CopyExpression(a(0, 1), a(1, 1)))
	// B1 = A1+A2; pasted one row down, B2 = A2+A3. A3 defaults to 0.
	assert.Equal(t, 5.0, s.GetValue(a(1, 1)).Num)
}

func TestFullIteratorYieldsEveryCellInRectangle(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 1}))
	count := 0
	for range s.Full(a(0, 0), a(1, 1)) {
		count++
	}
	assert.Equal(t, 4, count)
}

func TestSparseIteratorSkipsHoles(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 1}))
	require.NoError(t, s.SetValue(a(1, 1), calc.Value{Kind: calc.KindNumber, Num: 2}))
	var got []coord.Absolute
	for snap := range s.Sparse(a(0, 0), a(1, 1)) {
		got = append(got, snap.Addr)
	}
	assert.Equal(t, []coord.Absolute{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, got)
}

func TestSearchFromStartReturnsFirstTextMatch(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindText, Text: "hello world"}))
	require.NoError(t, s.SetValue(a(1, 0), calc.Value{Kind: calc.KindText, Text: "goodbye"}))
	cell, ok := s.SearchFromStart("world")
	require.True(t, ok)
	assert.Equal(t, a(0, 0), cell)
}

func TestSearchSkipsCellsInError(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetValue(a(0, 0), calc.Value{Kind: calc.KindNumber, Num: 1}))
	require.NoError(t, s.SetValue(a(1, 0), calc.Value{Kind: calc.KindNumber, Num: 0}))
	require.NoError(t, s.SetExpression(a(2, 0), &expr.BinaryOp{
		Lhs: cellRef(a(0, 0), a(2, 0)), Rhs: cellRef(a(1, 0), a(2, 0)), Operator: expr.Divide,
	}))
	require.NoError(t, s.SetValue(a(3, 0), calc.Value{Kind: calc.KindText, Text: "#DIV/0!"}))

	cell, ok := s.SearchFromStart("#DIV/0!")
	require.True(t, ok)
	assert.Equal(t, a(3, 0), cell, "search must skip the error-valued cell and match the literal text cell instead")
}

func TestSumOverEmptyRangeIsZero(t *testing.T) {
	s := New(WithClock(stubClock{}))
	require.NoError(t, s.SetExpression(a(8, 25), &expr.RangeFn{
		Func:        expr.Sum,
		TopLeft:     coord.Relative{DRow: -8, DCol: -25},
		BottomRight: coord.Relative{DRow: -6, DCol: -23},
	}))
	assert.Equal(t, 0.0, s.GetValue(a(8, 25)).Num)
}
