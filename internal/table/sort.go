package table

import (
	"cmp"
	"sort"
)

// SortBy returns a copy of t with rows ordered ascending by (primary,
// secondary). The sort is stable, so rows tied on both keys keep their input
// order. NaN orders before every number.
func (t *Table) SortBy(primary, secondary string) (*Table, error) {
	idx, err := t.Indices(primary, secondary)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	p, s := idx[0], idx[1]
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return lessRow(out.Rows[i], out.Rows[j], p, s)
	})
	return out, nil
}

// IsSortedBy reports whether rows are already ordered by (primary, secondary).
func (t *Table) IsSortedBy(primary, secondary string) (bool, error) {
	idx, err := t.Indices(primary, secondary)
	if err != nil {
		return false, err
	}
	for i := 1; i < len(t.Rows); i++ {
		if lessRow(t.Rows[i], t.Rows[i-1], idx[0], idx[1]) {
			return false, nil
		}
	}
	return true, nil
}

func lessRow(a, b []float64, p, s int) bool {
	if c := cmp.Compare(a[p], b[p]); c != 0 {
		return c < 0
	}
	return cmp.Compare(a[s], b[s]) < 0
}
