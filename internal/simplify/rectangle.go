package simplify

import (
	"github.com/gnoswap-labs/reqflat/internal/bits"
)

// matrix is a boolean occurrence matrix, rows x cols.
type matrix struct {
	cells [][]bool
	cols  int
}

func newMatrix(rows, cols int) matrix {
	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
	}
	return matrix{cells: cells, cols: cols}
}

func (m matrix) clone() matrix {
	cells := make([][]bool, len(m.cells))
	for i, row := range m.cells {
		cells[i] = append([]bool(nil), row...)
	}
	return matrix{cells: cells, cols: m.cols}
}

func (m matrix) rowOnes(r int) []int {
	var out []int
	for c, v := range m.cells[r] {
		if v {
			out = append(out, c)
		}
	}
	return out
}

func (m matrix) colOnes(c int) []int {
	var out []int
	for r, row := range m.cells {
		if row[c] {
			out = append(out, r)
		}
	}
	return out
}

// primeRectangles calls emit for every prime rectangle of m: a set of rows
// and columns whose cells are all set and that no other rectangle contains.
// Rectangles may be reported more than once.
func primeRectangles(m matrix, emit func(rows, cols []int)) {
	// trivial rectangles first: one row or one column
	for r := range m.cells {
		ones := m.rowOnes(r)
		if len(ones) == 0 {
			continue
		}
		contained := false
		for r2, row := range m.cells {
			if r2 != r && allSet(ones, func(c int) bool { return row[c] }) {
				contained = true
				break
			}
		}
		if !contained {
			emit([]int{r}, ones)
		}
	}

	for c := 0; c < m.cols; c++ {
		ones := m.colOnes(c)
		if len(ones) == 0 {
			continue
		}
		contained := false
		for c2 := 0; c2 < m.cols; c2++ {
			if c2 != c && allSet(ones, func(r int) bool { return m.cells[r][c2] }) {
				contained = true
				break
			}
		}
		if !contained {
			emit(ones, []int{c})
		}
	}

	growRectangles(m, 0, nil, emit)
}

// growRectangles generates the non-trivial prime rectangles reachable from
// the rectangle with columns rectCols whose rows are the non-zero rows of m.
// Each step adds a column with at least two ones, keeping fewer rows but
// more columns.
func growRectangles(m matrix, index int, rectCols []int, emit func(rows, cols []int)) {
	for c := index; c < m.cols; c++ {
		rows := m.colOnes(c)
		if len(rows) < 2 {
			continue
		}

		sub := m.clone()
		inRect := make([]bool, len(m.cells))
		for _, r := range rows {
			inRect[r] = true
		}
		for r := range sub.cells {
			if !inRect[r] {
				clear(sub.cells[r])
			}
		}

		cols := append([]int(nil), rectCols...)
		prune := false
		for c1 := 0; c1 < m.cols; c1++ {
			if len(sub.colOnes(c1)) != len(rows) {
				continue
			}
			if c1 < c {
				// every rectangle of this submatrix was already produced
				// when column c1 was the seed
				prune = true
				break
			}
			cols = append(cols, c1)
			for r := range sub.cells {
				sub.cells[r][c1] = false
			}
		}
		if prune {
			continue
		}

		emit(rows, cols)
		growRectangles(sub, c, cols, emit)
	}
}

func allSet(idx []int, set func(int) bool) bool {
	for _, i := range idx {
		if !set(i) {
			return false
		}
	}
	return true
}

// bestDivisor searches the co-kernel/kernel-cube matrix of cubes for the
// rectangle saving the most literals and returns its kernel cubes as a
// divisor.
func bestDivisor(cubes []bits.Term, vars []int) ([]bits.Term, bool) {
	var rows []kernel
	for _, k := range kernels(cubes, vars, bits.Term{}, make(map[bits.Term]bool), 0) {
		if !k.co.IsEmpty() {
			rows = append(rows, k)
		}
	}

	var columns []bits.Term
	colOf := make(map[bits.Term]int)
	for _, k := range rows {
		for _, c := range k.cubes {
			if _, ok := colOf[c]; !ok {
				colOf[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}
	if len(rows) == 0 || len(columns) == 0 {
		return nil, false
	}

	m := newMatrix(len(rows), len(columns))
	for r, k := range rows {
		for _, c := range k.cubes {
			m.cells[r][colOf[c]] = true
		}
	}

	// literals saved by writing the rectangle as (co-kernels) and (cubes)
	// instead of every co-kernel/cube product spelled out
	saved := func(rr, cc []int) int {
		w := 0
		for _, r := range rr {
			for _, c := range cc {
				w += rows[r].co.Union(columns[c]).Len()
			}
		}
		for _, r := range rr {
			w -= rows[r].co.Len()
		}
		for _, c := range cc {
			w -= columns[c].Len()
		}
		return w
	}

	best, bestCols := 0, []int(nil)
	primeRectangles(m, func(rr, cc []int) {
		if w := saved(rr, cc); w > best {
			best = w
			bestCols = append([]int(nil), cc...)
		}
	})
	if bestCols == nil {
		return nil, false
	}

	divisor := make([]bits.Term, len(bestCols))
	for i, c := range bestCols {
		divisor[i] = columns[c]
	}
	return divisor, true
}
