package simplify

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

// cubeOf builds a term holding every given atom, allocating as needed.
func cubeOf(t *testing.T, idx *bits.Index, atoms ...requirement.Requirement) bits.Term {
	t.Helper()
	var c bits.Term
	for _, a := range atoms {
		at, err := idx.Term(a)
		require.NoError(t, err)
		c = c.Union(at)
	}
	return c
}

// holds evaluates a minimized requirement against a set of owned atoms.
func holds(t *testing.T, idx *bits.Index, r requirement.Requirement, have bits.Term) bool {
	t.Helper()
	switch n := r.(type) {
	case requirement.Nothing:
		return true
	case requirement.Impossible:
		return false
	case requirement.And:
		for _, arg := range n.Args {
			if !holds(t, idx, arg, have) {
				return false
			}
		}
		return true
	case requirement.Or:
		for _, arg := range n.Args {
			if holds(t, idx, arg, have) {
				return true
			}
		}
		return false
	default:
		at, err := idx.Term(r)
		require.NoError(t, err)
		return at.SubsetOf(have)
	}
}

func TestToRequirement(t *testing.T) {
	a, b, c, d := requirement.Has("A"), requirement.Has("B"), requirement.Has("C"), requirement.Has("D")

	tests := []struct {
		name  string
		cubes [][]requirement.Requirement
		want  string
	}{
		{
			name:  "single atom",
			cubes: [][]requirement.Requirement{{a}},
			want:  "A",
		},
		{
			name:  "single cube",
			cubes: [][]requirement.Requirement{{a, b}},
			want:  "A and B",
		},
		{
			name:  "common factor",
			cubes: [][]requirement.Requirement{{a, b}, {a, c}},
			want:  "A and (B or C)",
		},
		{
			name:  "subsumed cube is dropped",
			cubes: [][]requirement.Requirement{{a}, {a, b}},
			want:  "A",
		},
		{
			name:  "product of sums",
			cubes: [][]requirement.Requirement{{a, b}, {a, c}, {d, b}, {d, c}},
			want:  "(A or D) and (B or C)",
		},
		{
			name:  "factor with remainder",
			cubes: [][]requirement.Requirement{{a, b}, {a, c}, {d}},
			want:  "(A and (B or C)) or D",
		},
		{
			name:  "nothing to factor",
			cubes: [][]requirement.Requirement{{a, b}, {c, d}},
			want:  "(A and B) or (C and D)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := bits.NewIndex()
			for _, atom := range []requirement.Requirement{a, b, c, d} {
				_, err := idx.Bit(atom)
				require.NoError(t, err)
			}
			var terms []bits.Term
			for _, cube := range tt.cubes {
				terms = append(terms, cubeOf(t, idx, cube...))
			}
			got := ToRequirement(idx, bits.FromTerms(terms...))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToRequirementConstants(t *testing.T) {
	idx := bits.NewIndex()
	assert.Equal(t, requirement.Impossible{}, ToRequirement(idx, bits.False()))
	assert.Equal(t, requirement.Nothing{}, ToRequirement(idx, bits.True()))
	assert.Equal(t, requirement.Nothing{}, ToRequirement(idx, bits.FromTerms(bits.TermOf(3), bits.Term{})))
}

func TestLesserCountsStripped(t *testing.T) {
	idx := bits.NewIndex()
	wallet2 := requirement.HasCount("Wallet", 2)

	got := ToRequirement(idx, bits.FromTerms(cubeOf(t, idx, wallet2)))
	assert.Equal(t, wallet2, got)

	// Wallet x1 is shared by both cubes but must not be pulled out
	d := bits.FromTerms(
		cubeOf(t, idx, wallet2, requirement.Has("A")),
		cubeOf(t, idx, requirement.Has("Wallet"), requirement.Has("B")),
	)
	assert.Equal(t, "(Wallet x2 and A) or (Wallet and B)", ToRequirement(idx, d).String())
}

func TestDivide(t *testing.T) {
	a, b, c, d := bits.TermOf(0), bits.TermOf(1), bits.TermOf(2), bits.TermOf(3)
	ab, ac := a.Union(b), a.Union(c)

	quot, rem := divide([]bits.Term{ab, ac, d}, []bits.Term{b, c})
	assert.Equal(t, []bits.Term{a}, quot)
	assert.Equal(t, []bits.Term{d}, rem)

	quot, rem = divide([]bits.Term{ab, d}, []bits.Term{c})
	assert.Nil(t, quot)
	assert.Equal(t, []bits.Term{ab, d}, rem)

	// b divides ab but c does not divide anything ab-shaped
	quot, rem = divide([]bits.Term{ab, c.Union(d)}, []bits.Term{b, c})
	assert.Nil(t, quot)
	assert.Len(t, rem, 2)
}

func TestKernels(t *testing.T) {
	a, b, c, d := bits.TermOf(0), bits.TermOf(1), bits.TermOf(2), bits.TermOf(3)
	cubes := []bits.Term{a.Union(b), a.Union(c), d}

	ks := kernels(cubes, []int{0, 1, 2, 3}, bits.Term{}, make(map[bits.Term]bool), 0)
	byCo := make(map[bits.Term][]bits.Term)
	for _, k := range ks {
		byCo[k.co] = k.cubes
	}
	assert.Equal(t, []bits.Term{b, c}, byCo[a])
	assert.Equal(t, cubes, byCo[bits.Term{}])
}

func TestPrimeRectangles(t *testing.T) {
	m := newMatrix(3, 3)
	m.cells[0][0], m.cells[0][1] = true, true
	m.cells[1][0], m.cells[1][1] = true, true
	m.cells[2][1], m.cells[2][2] = true, true

	type rect struct{ rows, cols []int }
	var got []rect
	primeRectangles(m, func(rows, cols []int) {
		got = append(got, rect{rows, cols})
	})

	assert.Contains(t, got, rect{[]int{0, 1}, []int{0, 1}})
	assert.Contains(t, got, rect{[]int{0, 1, 2}, []int{1}})
	assert.Contains(t, got, rect{[]int{2}, []int{1, 2}})
	for _, r := range got {
		for _, row := range r.rows {
			for _, col := range r.cols {
				assert.True(t, m.cells[row][col], "rectangle %v covers an empty cell", r)
			}
		}
	}
}

func TestRandomEquivalence(t *testing.T) {
	atoms := []requirement.Requirement{
		requirement.Has("A"), requirement.Has("B"), requirement.Has("C"),
		requirement.Has("D"), requirement.Has("E"),
		requirement.HasCount("W", 2), requirement.HasCount("W", 3),
		requirement.Hearts(3),
	}
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		idx := bits.NewIndex()
		for _, a := range atoms {
			_, err := idx.Term(a)
			require.NoError(t, err)
		}
		n := idx.Len()

		var terms []bits.Term
		cubes := 1 + rng.Intn(6)
		for i := 0; i < cubes; i++ {
			var cube []requirement.Requirement
			for _, a := range atoms {
				if rng.Intn(3) == 0 {
					cube = append(cube, a)
				}
			}
			if len(cube) == 0 {
				cube = append(cube, atoms[rng.Intn(len(atoms))])
			}
			terms = append(terms, cubeOf(t, idx, cube...))
		}
		d := bits.FromTerms(terms...)
		r := ToRequirement(idx, d)

		for mask := 0; mask < 1<<n; mask++ {
			var have bits.Term
			for b := 0; b < n; b++ {
				if mask&(1<<b) != 0 {
					have = have.With(b)
				}
			}
			require.Equal(t, d.Satisfied(have), holds(t, idx, r, have),
				"iteration %d: %s disagrees on %v", iter, r, have.Bits())
		}
	}
}
