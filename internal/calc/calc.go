// Package calc is the pure evaluator: given a read-only view of the
// store, the address of the cell a formula belongs to, and an
// expression tree, it produces a numeric result or a cellerr.Code.
// Wall-clock delay is injected through a small Clock interface rather
// than called directly, so tests can swap in a fake clock instead of
// sleeping.
package calc

import (
	"math"
	"time"

	"github.com/wiredcell/ssheet/internal/cellerr"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/expr"
)

// Kind tags a cell's stored value type, mirroring the CellValue
// variants in the data model without importing the store package
// (which itself imports calc), keeping the dependency direction
// one-way.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindError
)

// Value is the tagged result a Reader returns for a cell.
type Value struct {
	Kind Kind
	Num  float64
	Text string
	Err  cellerr.Code
}

// Reader is the read-only view of the store the evaluator needs. The
// store implements this directly; tests can supply a map-backed fake.
type Reader interface {
	ValueAt(coord.Absolute) Value
}

// Clock abstracts wall-clock sleeping so SLEEP() is testable without
// a real delay.
type Clock interface {
	Sleep(d time.Duration)
}

// WallClock is the default Clock, backed by time.Sleep.
type WallClock struct{}

func (WallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Evaluate computes the numeric result of expr, with every CellRef
// resolved relative to origin. The returned error is always a
// cellerr.Code (via errors.As) or nil.
func Evaluate(r Reader, clock Clock, origin coord.Absolute, e expr.Node) (float64, error) {
	switch n := e.(type) {
	case *expr.Number:
		return n.Value, nil

	case *expr.CellRef:
		v := r.ValueAt(n.Rel.ToAbsolute(origin))
		return numericValue(v)

	case *expr.BinaryOp:
		lhs, err := Evaluate(r, clock, origin, n.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := Evaluate(r, clock, origin, n.Rhs)
		if err != nil {
			return 0, err
		}
		switch n.Operator {
		case expr.Add:
			return lhs + rhs, nil
		case expr.Subtract:
			return lhs - rhs, nil
		case expr.Multiply:
			return lhs * rhs, nil
		case expr.Divide:
			if rhs == 0 {
				return 0, cellerr.New(cellerr.DivideByZero)
			}
			return lhs / rhs, nil
		}
		return 0, cellerr.New(cellerr.DependsOnNonNumeric)

	case *expr.RangeFn:
		return evaluateRange(r, origin, n)

	case *expr.Delay:
		f, err := Evaluate(r, clock, origin, n.Inner)
		if err != nil {
			return 0, err
		}
		if f > 0 {
			clock.Sleep(time.Duration(f * float64(time.Second)))
		}
		return f, nil
	}
	return 0, cellerr.New(cellerr.DependsOnNonNumeric)
}

func numericValue(v Value) (float64, error) {
	switch v.Kind {
	case KindEmpty:
		return 0, nil
	case KindNumber:
		return v.Num, nil
	case KindText:
		return 0, cellerr.New(cellerr.DependsOnNonNumeric)
	case KindError:
		return 0, wrapPropagated(v.Err)
	}
	return 0, nil
}

// wrapPropagated surfaces an upstream cell's own error unchanged,
// except through a range aggregate, which always reports
// DependsOnErr regardless of the upstream kind (see evaluateRange).
func wrapPropagated(code cellerr.Code) error {
	return cellerr.New(code)
}

func evaluateRange(r Reader, origin coord.Absolute, n *expr.RangeFn) (float64, error) {
	tl := n.TopLeft.ToAbsolute(origin)
	br := n.BottomRight.ToAbsolute(origin)

	var nums []float64
	for row := tl.Row; row <= br.Row; row++ {
		for col := tl.Col; col <= br.Col; col++ {
			v := r.ValueAt(coord.Absolute{Row: row, Col: col})
			switch v.Kind {
			case KindEmpty:
				continue
			case KindNumber:
				nums = append(nums, v.Num)
			case KindText:
				return 0, cellerr.New(cellerr.DependsOnNonNumeric)
			case KindError:
				return 0, cellerr.New(cellerr.DependsOnErr)
			}
		}
	}

	switch n.Func {
	case expr.Sum:
		return sum(nums), nil
	case expr.Min:
		if len(nums) == 0 {
			return 0, nil
		}
		m := nums[0]
		for _, v := range nums[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case expr.Max:
		if len(nums) == 0 {
			return 0, nil
		}
		m := nums[0]
		for _, v := range nums[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case expr.Avg:
		if len(nums) == 0 {
			return 0, nil
		}
		return sum(nums) / float64(len(nums)), nil
	case expr.Stdev:
		if len(nums) == 0 {
			return 0, nil
		}
		mean := sum(nums) / float64(len(nums))
		var variance float64
		for _, v := range nums {
			d := v - mean
			variance += d * d
		}
		variance /= float64(len(nums))
		return math.Sqrt(variance), nil
	}
	return 0, nil
}

func sum(nums []float64) float64 {
	var total float64
	for _, v := range nums {
		total += v
	}
	return total
}
