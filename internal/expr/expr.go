// Package expr defines the expression tree produced by the formula
// parser and consumed by the calculation engine. Nodes carry no
// evaluation state of their own; evaluation lives in package calc so
// the tree stays a pure data structure that the store can clone,
// compare, and render without a Spreadsheet-shaped receiver.
package expr

import (
	"fmt"
	"strconv"

	"github.com/wiredcell/ssheet/internal/coord"
)

// Position marks the byte span of a node within its source formula
// text, useful for pointing a caller at the offending token.
type Position struct {
	Start int
	End   int
}

// Node is any expression tree element. ToString renders the node back
// to formula text relative to the given origin cell (origin matters
// only for CellRef and Range, whose offsets are stored relative).
type Node interface {
	GetPosition() Position
	ToString(origin coord.Absolute) string
}

// Op is a binary arithmetic operator.
type Op int

const (
	Add Op = iota
	Subtract
	Multiply
	Divide
)

func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// AggFunc is a range-aggregation function name.
type AggFunc int

const (
	Min AggFunc = iota
	Max
	Avg
	Sum
	Stdev
)

func (f AggFunc) String() string {
	switch f {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Avg:
		return "AVG"
	case Sum:
		return "SUM"
	case Stdev:
		return "STDEV"
	default:
		return "?"
	}
}

// Number is a numeric literal.
type Number struct {
	Value    float64
	Position Position
}

func (n *Number) GetPosition() Position { return n.Position }

func (n *Number) ToString(coord.Absolute) string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// CellRef is a reference to a single cell, stored relative to the
// formula's owning cell.
type CellRef struct {
	Rel      coord.Relative
	Position Position
}

func (n *CellRef) GetPosition() Position { return n.Position }

func (n *CellRef) ToString(origin coord.Absolute) string {
	return coord.Label(n.Rel.ToAbsolute(origin))
}

// BinaryOp combines two subexpressions with an arithmetic operator.
type BinaryOp struct {
	Lhs, Rhs Node
	Operator Op
	Position Position
}

func (n *BinaryOp) GetPosition() Position { return n.Position }

func (n *BinaryOp) ToString(origin coord.Absolute) string {
	return fmt.Sprintf("(%s%s%s)", n.Lhs.ToString(origin), n.Operator, n.Rhs.ToString(origin))
}

// RangeFn aggregates a rectangle of cells, both corners stored
// relative to the formula's owning cell.
type RangeFn struct {
	Func        AggFunc
	TopLeft     coord.Relative
	BottomRight coord.Relative
	Position    Position
}

func (n *RangeFn) GetPosition() Position { return n.Position }

func (n *RangeFn) ToString(origin coord.Absolute) string {
	tl := coord.Label(n.TopLeft.ToAbsolute(origin))
	br := coord.Label(n.BottomRight.ToAbsolute(origin))
	return fmt.Sprintf("%s(%s:%s)", n.Func, tl, br)
}

// Delay wraps an expression whose evaluation blocks the caller for
// Inner seconds (if Inner evaluates to a positive number) before
// yielding Inner's value.
type Delay struct {
	Inner    Node
	Position Position
}

func (n *Delay) GetPosition() Position { return n.Position }

func (n *Delay) ToString(origin coord.Absolute) string {
	return fmt.Sprintf("SLEEP(%s)", n.Inner.ToString(origin))
}

// Refs walks expr and returns every absolute cell it touches once
// resolved against origin, expanding ranges to every cell in their
// rectangle. Used by the store to compute the dependency edge set for
// a formula.
func Refs(n Node, origin coord.Absolute) []coord.Absolute {
	var out []coord.Absolute
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *Number:
		case *CellRef:
			out = append(out, t.Rel.ToAbsolute(origin))
		case *BinaryOp:
			walk(t.Lhs)
			walk(t.Rhs)
		case *RangeFn:
			tl := t.TopLeft.ToAbsolute(origin)
			br := t.BottomRight.ToAbsolute(origin)
			for r := tl.Row; r <= br.Row; r++ {
				for c := tl.Col; c <= br.Col; c++ {
					out = append(out, coord.Absolute{Row: r, Col: c})
				}
			}
		case *Delay:
			walk(t.Inner)
		}
	}
	walk(n)
	return out
}
