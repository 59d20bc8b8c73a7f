package layouter

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/sure2web3/plonkish/expr"
)

func adviceCol(i int) expr.Column { return expr.Column{Index: i, Kind: expr.Advice} }

func testShape(idx RegionIndex, rows int, cols ...expr.Column) *RegionShape {
	s := NewRegionShape(idx)
	for _, c := range cols {
		s.Columns[ColumnResource(c)] = struct{}{}
	}
	s.RowCount = rows
	return s
}

func TestPlanLargerRegionPlacesFirst(t *testing.T) {
	a := adviceCol(0)

	// region 0 has the larger advice area, so it claims row 0 and region 1
	// first-fits behind it on the shared column
	starts, alloc := Plan([]*RegionShape{
		testShape(0, 10, a),
		testShape(1, 9, a),
	})
	require.Equal(t, RegionStart(0), starts[0])
	require.Equal(t, RegionStart(10), starts[1])
	require.Equal(t, 19, alloc.RowCount())
}

func TestPlanDisjointColumnsShareRows(t *testing.T) {
	starts, alloc := Plan([]*RegionShape{
		testShape(0, 8, adviceCol(0)),
		testShape(1, 5, adviceCol(1)),
	})
	require.Equal(t, RegionStart(0), starts[0])
	require.Equal(t, RegionStart(0), starts[1])
	require.Equal(t, 8, alloc.RowCount())
}

func TestPlanDeclarationOrderBreaksTies(t *testing.T) {
	a := adviceCol(0)
	starts, _ := Plan([]*RegionShape{
		testShape(0, 6, a),
		testShape(1, 6, a),
	})
	require.Equal(t, RegionStart(0), starts[0])
	require.Equal(t, RegionStart(6), starts[1])
}

func TestPlanFirstFitUsesGaps(t *testing.T) {
	a, b := adviceCol(0), adviceCol(1)

	// region 1 (area 8) claims [0,4) of both columns, region 0 (area 6)
	// lands at row 4 on column a, and region 2 (area 2) fits at row 4 on
	// column b rather than past everything
	starts, _ := Plan([]*RegionShape{
		testShape(0, 6, a),
		testShape(1, 4, a, b),
		testShape(2, 2, b),
	})
	require.Equal(t, RegionStart(0), starts[1])
	require.Equal(t, RegionStart(4), starts[0])
	require.Equal(t, RegionStart(4), starts[2])
}

func TestPlanZeroRowRegion(t *testing.T) {
	s := NewRegionShape(0)
	starts, alloc := Plan([]*RegionShape{s})
	require.Equal(t, RegionStart(0), starts[0])
	require.Equal(t, 0, alloc.RowCount())
}

func TestPlanSelectorsDoNotConflictWithFixed(t *testing.T) {
	fixed := expr.Column{Index: 0, Kind: expr.Fixed}
	sel := expr.Selector{Index: 0, Simple: true}

	s0 := NewRegionShape(0)
	s0.Columns[ColumnResource(fixed)] = struct{}{}
	s0.RowCount = 4
	s1 := NewRegionShape(1)
	s1.Columns[SelectorResource(sel)] = struct{}{}
	s1.RowCount = 4

	starts, _ := Plan([]*RegionShape{s0, s1})
	require.Equal(t, RegionStart(0), starts[0])
	require.Equal(t, RegionStart(0), starts[1])
}

func TestFreeIntervals(t *testing.T) {
	a := adviceCol(0)
	_, alloc := Plan([]*RegionShape{
		testShape(0, 4, a),
		testShape(1, 3, a),
	})

	free := alloc.FreeIntervals(ColumnResource(a), 0, 10)
	require.Equal(t, []interval{{Start: 7, End: 10}}, free)

	// untouched resources are entirely free
	free = alloc.FreeIntervals(ColumnResource(adviceCol(9)), 2, 6)
	require.Equal(t, []interval{{Start: 2, End: 6}}, free)
}

func TestPlanNeverOverlapsSharedColumns(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	properties.Property("no two regions overlap on a shared column", prop.ForAll(
		func(seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			numRegions := 1 + rng.Intn(8)
			numCols := 1 + rng.Intn(4)

			shapes := make([]*RegionShape, numRegions)
			for i := range shapes {
				cols := make([]expr.Column, 0, numCols)
				for c := 0; c < numCols; c++ {
					if rng.Intn(2) == 0 {
						cols = append(cols, adviceCol(c))
					}
				}
				shapes[i] = testShape(RegionIndex(i), rng.Intn(10), cols...)
			}

			starts, _ := Plan(shapes)
			for c := 0; c < numCols; c++ {
				rc := ColumnResource(adviceCol(c))
				var spans []interval
				for i, s := range shapes {
					if _, ok := s.Columns[rc]; !ok || s.RowCount == 0 {
						continue
					}
					start := int(starts[i])
					spans = append(spans, interval{Start: start, End: start + s.RowCount})
				}
				for i := range spans {
					for j := i + 1; j < len(spans); j++ {
						if spans[i].Start < spans[j].End && spans[j].Start < spans[i].End {
							return false
						}
					}
				}
			}
			return true
		},
		gen.Int64(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
