// Package coord implements the grid coordinate model: absolute cell
// addresses, relative offsets used inside stored formulas, and the
// base-26 bijective column-label codec used on the wire.
package coord

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultRows and DefaultCols are the grid bounds used when a Bounds is
// not otherwise configured.
const (
	DefaultRows = 999
	DefaultCols = 18278
)

var upperFolder = cases.Upper(language.Und)

// Bounds describes the extent of the addressable grid.
type Bounds struct {
	Rows int
	Cols int
}

// DefaultBounds returns the grid bounds required when a store is
// constructed without an explicit WithRows/WithCols option.
func DefaultBounds() Bounds {
	return Bounds{Rows: DefaultRows, Cols: DefaultCols}
}

// Contains reports whether abs lies within the bounds.
func (b Bounds) Contains(abs Absolute) bool {
	return abs.Row >= 0 && abs.Row < b.Rows && abs.Col >= 0 && abs.Col < b.Cols
}

// Absolute is a zero-indexed (row, col) address within the grid.
type Absolute struct {
	Row int
	Col int
}

// Relative is an offset between two Absolute cells, stored inside a
// formula's expression tree so the formula can be copied elsewhere and
// rebased automatically.
type Relative struct {
	DRow int
	DCol int
}

// ToAbsolute resolves a Relative against the cell that owns it.
func (r Relative) ToAbsolute(origin Absolute) Absolute {
	return Absolute{Row: origin.Row + r.DRow, Col: origin.Col + r.DCol}
}

// ToRelative computes the offset of abs from origin.
func ToRelative(abs, origin Absolute) Relative {
	return Relative{DRow: abs.Row - origin.Row, DCol: abs.Col - origin.Col}
}

// EncodeColumn renders a zero-indexed column as an uppercase bijective
// base-26 label: 0 -> "A", 25 -> "Z", 26 -> "AA".
func EncodeColumn(col int) string {
	if col < 0 {
		return ""
	}
	col++ // shift to 1-indexed for the bijective digit extraction below
	var digits []byte
	for col > 0 {
		col--
		digits = append(digits, byte('A'+col%26))
		col /= 26
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// DecodeColumn parses an uppercase or lowercase bijective base-26 label
// into a zero-indexed column. Returns false if letters is empty or
// contains a non-letter.
func DecodeColumn(letters string) (int, bool) {
	if letters == "" {
		return 0, false
	}
	folded := upperFolder.String(letters)
	acc := 0
	for _, r := range folded {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		acc = acc*26 + int(r-'A'+1)
	}
	return acc - 1, true
}

// Label renders abs as an A1-style string.
func Label(abs Absolute) string {
	return EncodeColumn(abs.Col) + strconv.Itoa(abs.Row+1)
}

// ParseLabel decodes an A1-style label into an Absolute. The label
// must match letters followed by digits; the row must be positive
// (1-based on the wire).
func ParseLabel(label string) (Absolute, bool) {
	i := 0
	for i < len(label) && isLetter(label[i]) {
		i++
	}
	if i == 0 || i == len(label) {
		return Absolute{}, false
	}
	letters, digits := label[:i], label[i:]
	for _, d := range digits {
		if d < '0' || d > '9' {
			return Absolute{}, false
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return Absolute{}, false
	}
	col, ok := DecodeColumn(letters)
	if !ok {
		return Absolute{}, false
	}
	return Absolute{Row: row - 1, Col: col}, true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
