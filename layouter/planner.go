package layouter

import "sort"

// interval is a half-open row range [Start, End).
type interval struct {
	Start, End int
}

// allocations is the sorted, non-overlapping set of row spans handed out for
// one resource.
type allocations struct {
	spans []interval
}

// fits reports whether [start, start+length) overlaps no allocated span.
func (a *allocations) fits(start, length int) bool {
	end := start + length
	for _, s := range a.spans {
		if s.Start >= end {
			break
		}
		if s.End > start {
			return false
		}
	}
	return true
}

// add inserts [start, start+length), keeping spans sorted.
func (a *allocations) add(start, length int) {
	span := interval{Start: start, End: start + length}
	i := sort.Search(len(a.spans), func(i int) bool { return a.spans[i].Start >= span.Start })
	a.spans = append(a.spans, interval{})
	copy(a.spans[i+1:], a.spans[i:])
	a.spans[i] = span
}

func (a *allocations) lastEnd() int {
	if len(a.spans) == 0 {
		return 0
	}
	return a.spans[len(a.spans)-1].End
}

// freeIntervals returns the gaps between allocated spans within [start, end).
func (a *allocations) freeIntervals(start, end int) []interval {
	var free []interval
	cursor := start
	for _, s := range a.spans {
		if s.End <= cursor {
			continue
		}
		if s.Start >= end {
			break
		}
		if s.Start > cursor {
			free = append(free, interval{Start: cursor, End: s.Start})
		}
		cursor = s.End
	}
	if cursor < end {
		free = append(free, interval{Start: cursor, End: end})
	}
	return free
}

// Allocations tracks the row spans handed out per resource across the whole
// circuit.
type Allocations struct {
	columns map[RegionColumn]*allocations
}

// NewAllocations returns an empty allocation map.
func NewAllocations() *Allocations {
	return &Allocations{columns: make(map[RegionColumn]*allocations)}
}

func (ca *Allocations) forColumn(rc RegionColumn) *allocations {
	a, ok := ca.columns[rc]
	if !ok {
		a = &allocations{}
		ca.columns[rc] = a
	}
	return a
}

// RowCount returns the first row past every allocated span, i.e. the number
// of rows the layout occupies.
func (ca *Allocations) RowCount() int {
	rows := 0
	for _, a := range ca.columns {
		if e := a.lastEnd(); e > rows {
			rows = e
		}
	}
	return rows
}

// FreeIntervals returns the unallocated row ranges of a resource within
// [start, end). A resource with no allocations is entirely free.
func (ca *Allocations) FreeIntervals(rc RegionColumn, start, end int) []interval {
	if a, ok := ca.columns[rc]; ok {
		return a.freeIntervals(start, end)
	}
	if start >= end {
		return nil
	}
	return []interval{{Start: start, End: end}}
}

// slotIn finds the lowest start row at which the shape overlaps no existing
// allocation in any of its columns (first fit).
func (ca *Allocations) slotIn(s *RegionShape) int {
	if s.RowCount == 0 {
		return 0
	}
	// every viable first-fit start is either row 0 or the end of some span
	// in a touched column
	candidates := []int{0}
	for rc := range s.Columns {
		if a, ok := ca.columns[rc]; ok {
			for _, sp := range a.spans {
				candidates = append(candidates, sp.End)
			}
		}
	}
	sort.Ints(candidates)
	for _, c := range candidates {
		ok := true
		for rc := range s.Columns {
			if a, exists := ca.columns[rc]; exists && !a.fits(c, s.RowCount) {
				ok = false
				break
			}
		}
		if ok {
			return c
		}
	}
	panic("layouter: no slot found past all allocations")
}

// Plan packs the measured shapes into absolute row ranges: shapes are taken
// in descending advice-area order (declaration order breaking ties, for
// determinism) and each is placed first-fit over the free intervals of the
// columns it touches. The returned starts are indexed by RegionIndex.
func Plan(shapes []*RegionShape) ([]RegionStart, *Allocations) {
	order := make([]int, len(shapes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return shapes[order[i]].AdviceArea() > shapes[order[j]].AdviceArea()
	})

	ca := NewAllocations()
	starts := make([]RegionStart, len(shapes))
	for _, idx := range order {
		s := shapes[idx]
		start := ca.slotIn(s)
		starts[s.Region] = RegionStart(start)
		for rc := range s.Columns {
			ca.forColumn(rc).add(start, s.RowCount)
		}
	}
	return starts, ca
}
