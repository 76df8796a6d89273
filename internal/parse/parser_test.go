package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/expr"
)

var testBounds = coord.Bounds{Rows: 100, Cols: 100}

func TestParseNumberAndArithmeticPrecedence(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("1+2*3", origin, testBounds)
	require.NoError(t, err)
	bin, ok := node.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, expr.Add, bin.Operator)
	rhs, ok := bin.Rhs.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, expr.Multiply, rhs.Operator)
}

func TestParseCellRefStoredRelative(t *testing.T) {
	origin, _ := coord.ParseLabel("B2")
	node, err := Parse("A1+3", origin, testBounds)
	require.NoError(t, err)
	bin := node.(*expr.BinaryOp)
	ref := bin.Lhs.(*expr.CellRef)
	assert.Equal(t, coord.Relative{DRow: -1, DCol: -1}, ref.Rel)
}

func TestParseRangeAggregate(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("SUM(A1:C3)", origin, testBounds)
	require.NoError(t, err)
	rng := node.(*expr.RangeFn)
	assert.Equal(t, expr.Sum, rng.Func)
}

func TestParseRangeRejectsReversedBounds(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	_, err := Parse("SUM(C3:A1)", origin, testBounds)
	assert.Error(t, err)
}

func TestParseUnknownFunction(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	_, err := Parse("BOGUS(A1:A2)", origin, testBounds)
	assert.Error(t, err)
}

func TestParseOutOfBoundsCellRef(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	tiny := coord.Bounds{Rows: 2, Cols: 2}
	_, err := Parse("C3", origin, tiny)
	assert.Error(t, err)
}

func TestParseDelay(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("SLEEP(A1)", origin, testBounds)
	require.NoError(t, err)
	delay, ok := node.(*expr.Delay)
	require.True(t, ok)
	_, ok = delay.Inner.(*expr.CellRef)
	assert.True(t, ok)
}

func TestParseRoundTripsThroughToString(t *testing.T) {
	origin, _ := coord.ParseLabel("B2")
	node, err := Parse("A1+3", origin, testBounds)
	require.NoError(t, err)
	rendered := node.ToString(origin)
	node2, err := Parse(rendered[1:len(rendered)-1], origin, testBounds)
	require.NoError(t, err)
	assert.Equal(t, node, node2)
}

func TestParseMalformedTrailingInput(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	_, err := Parse("1+2)", origin, testBounds)
	assert.Error(t, err)
}

func TestParseLeadingNegativeNumber(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("-5", origin, testBounds)
	require.NoError(t, err)
	num, ok := node.(*expr.Number)
	require.True(t, ok)
	assert.Equal(t, -5.0, num.Value)
}

func TestParseNegativeNumberAfterBinaryOp(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("3+-5", origin, testBounds)
	require.NoError(t, err)
	bin, ok := node.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, expr.Add, bin.Operator)
	rhs, ok := bin.Rhs.(*expr.Number)
	require.True(t, ok)
	assert.Equal(t, -5.0, rhs.Value)
}

func TestParseNegativeNumberAfterRangeAggregate(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("MIN(A1:A2)*-2", origin, testBounds)
	require.NoError(t, err)
	bin, ok := node.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, expr.Multiply, bin.Operator)
	rhs, ok := bin.Rhs.(*expr.Number)
	require.True(t, ok)
	assert.Equal(t, -2.0, rhs.Value)
}

func TestParseMinusStillBinaryAfterValue(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("5-3", origin, testBounds)
	require.NoError(t, err)
	bin, ok := node.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, expr.Subtract, bin.Operator)
	rhs, ok := bin.Rhs.(*expr.Number)
	require.True(t, ok)
	assert.Equal(t, 3.0, rhs.Value)
}

func TestParseFunctionCallWithSpaceBeforeParen(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("SUM (A1:A2)", origin, testBounds)
	require.NoError(t, err)
	rng, ok := node.(*expr.RangeFn)
	require.True(t, ok)
	assert.Equal(t, expr.Sum, rng.Func)
}

func TestParseDelayWithSpaceBeforeParen(t *testing.T) {
	origin := coord.Absolute{Row: 0, Col: 0}
	node, err := Parse("SLEEP (A1)", origin, testBounds)
	require.NoError(t, err)
	_, ok := node.(*expr.Delay)
	assert.True(t, ok)
}
