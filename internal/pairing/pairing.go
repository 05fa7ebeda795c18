// Package pairing joins two hit tables on ROI identity and derives the
// inter-channel lag.
package pairing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"twohit/internal/table"
)

// Merged table column names.
const (
	ColID    = "ID#"
	ColT1    = "t1"
	ColT2    = "t2"
	ColDelta = "Δt"
)

// MergedHeader is the header of every table Pair produces.
var MergedHeader = []string{ColID, ColT1, ColT2, ColDelta}

// MergedName names the table Pair produces.
const MergedName = "merged"

// ErrAlignment matches every *AlignmentError.
var ErrAlignment = errors.New("alignment error")

// Policy decides what a ROI mismatch does to the run.
type Policy int

const (
	// Abort fails the whole pairing on the first mismatch.
	Abort Policy = iota
	// Skip leaves mismatched ROIs out and reports them in Result.Skipped.
	Skip
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "abort" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort", "":
		return Abort, nil
	case "skip":
		return Skip, nil
	}
	return Abort, fmt.Errorf("invalid mismatch policy %q (want abort | skip)", s)
}

// AlignmentError says the two hit tables disagree about a ROI. Index is the
// row position in the table that holds the unmatched ROI; Left and Right are
// the ROI ids found at that position in each table (NaN when the table is
// shorter).
type AlignmentError struct {
	Index      int
	Left       float64
	Right      float64
	LeftTable  string
	RightTable string
	Reason     string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment error: row %d: %s ROI %s vs %s ROI %s: %s",
		e.Index, e.LeftTable, roiString(e.Left), e.RightTable, roiString(e.Right), e.Reason)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }

func roiString(v float64) string {
	if math.IsNaN(v) {
		return "(none)"
	}
	return table.FormatValue(v)
}

// Options configures Pair.
type Options struct {
	ROI    string // ROI identifier column
	Time   string // timepoint column
	Policy Policy
}

// DefaultOptions pairs on X and reads hit times from Slice.
var DefaultOptions = Options{ROI: "X", Time: "Slice", Policy: Abort}

// Result is the merged table plus any ROIs left out under Skip.
type Result struct {
	Table   *table.Table
	Skipped []*AlignmentError
}

// Pair joins hit tables a and b on the ROI column. Each row i of a whose ROI
// also occurs in b yields [i, a.time, b.time, b.time-a.time]; rows come out
// in a's order. ROIs present in only one table, or present twice in one
// table, are alignment errors handled per opts.Policy.
func Pair(a, b *table.Table, opts Options) (*Result, error) {
	ai, err := a.Indices(opts.ROI, opts.Time)
	if err != nil {
		return nil, err
	}
	bi, err := b.Indices(opts.ROI, opts.Time)
	if err != nil {
		return nil, err
	}
	ax, at, bx, bt := ai[0], ai[1], bi[0], bi[1]

	res := &Result{Table: table.New(MergedName, MergedHeader)}
	mismatch := func(e *AlignmentError) error {
		e.LeftTable, e.RightTable = a.Name, b.Name
		if opts.Policy == Abort {
			return e
		}
		res.Skipped = append(res.Skipped, e)
		return nil
	}
	roiAt := func(t *table.Table, col, i int) float64 {
		if i < len(t.Rows) {
			return t.Rows[i][col]
		}
		return math.NaN()
	}

	byROI := make(map[float64]int, len(b.Rows))
	for j, row := range b.Rows {
		if _, dup := byROI[row[bx]]; dup {
			if err := mismatch(&AlignmentError{Index: j, Left: roiAt(a, ax, j), Right: row[bx], Reason: "duplicate ROI in " + b.Name}); err != nil {
				return nil, err
			}
			continue
		}
		byROI[row[bx]] = j
	}

	used := make([]bool, len(b.Rows))
	seen := make(map[float64]struct{}, len(a.Rows))
	for i, row := range a.Rows {
		x := row[ax]
		if _, dup := seen[x]; dup {
			if err := mismatch(&AlignmentError{Index: i, Left: x, Right: roiAt(b, bx, i), Reason: "duplicate ROI in " + a.Name}); err != nil {
				return nil, err
			}
			continue
		}
		seen[x] = struct{}{}

		j, ok := byROI[x]
		if !ok {
			if err := mismatch(&AlignmentError{Index: i, Left: x, Right: roiAt(b, bx, i), Reason: "no matching ROI in " + b.Name}); err != nil {
				return nil, err
			}
			continue
		}
		used[j] = true
		t1, t2 := row[at], b.Rows[j][bt]
		res.Table.Rows = append(res.Table.Rows, []float64{float64(i), t1, t2, t2 - t1})
	}

	for j, ok := range used {
		if ok {
			continue
		}
		x := b.Rows[j][bx]
		if k, first := byROI[x]; first && k != j {
			continue // duplicate, already reported
		}
		if err := mismatch(&AlignmentError{Index: j, Left: roiAt(a, ax, j), Right: x, Reason: "no matching ROI in " + a.Name}); err != nil {
			return nil, err
		}
	}
	return res, nil
}
