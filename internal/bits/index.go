package bits

import (
	"errors"
	"fmt"

	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

var (
	ErrCapacityExceeded = errors.New("atom capacity exceeded")
	ErrNotAtom          = errors.New("requirement is not an atom")
)

type atomKind int

const (
	atomItem atomKind = iota
	atomHealth
)

type atomKey struct {
	kind atomKind
	item string
	n    int
}

// Index maps atomic requirements to bit indices for a single run.
// Structurally equal atoms share an index; indices are never reused.
type Index struct {
	bits    map[atomKey]int
	reverse []requirement.Requirement
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{bits: make(map[atomKey]int)}
}

func keyOf(r requirement.Requirement) (atomKey, requirement.Requirement, bool) {
	switch n := r.(type) {
	case requirement.HasItem:
		return atomKey{kind: atomItem, item: n.Item, n: 1}, n, true
	case requirement.Count:
		if n.N == 1 {
			// owning one copy is the same fact as owning the item
			return atomKey{kind: atomItem, item: n.Item, n: 1}, requirement.HasItem{Item: n.Item}, true
		}
		return atomKey{kind: atomItem, item: n.Item, n: n.N}, n, true
	case requirement.Health:
		return atomKey{kind: atomHealth, n: n.Hearts}, n, true
	default:
		return atomKey{}, nil, false
	}
}

// Bit returns the index of atom r, allocating one if needed.
func (x *Index) Bit(r requirement.Requirement) (int, error) {
	key, canon, ok := keyOf(r)
	if !ok {
		return -1, fmt.Errorf("%w: %v", ErrNotAtom, r)
	}
	if b, ok := x.bits[key]; ok {
		return b, nil
	}
	if len(x.reverse) >= Capacity {
		return -1, fmt.Errorf("%w: more than %d distinct atoms (adding %v)", ErrCapacityExceeded, Capacity, canon)
	}
	b := len(x.reverse)
	x.bits[key] = b
	x.reverse = append(x.reverse, canon)
	return b, nil
}

// MustBit is like Bit but panics on error. It is meant for atoms that were
// already allocated by a pre-pass.
func (x *Index) MustBit(r requirement.Requirement) int {
	b, err := x.Bit(r)
	if err != nil {
		panic(err)
	}
	return b
}

// Lookup returns the index of r without allocating.
func (x *Index) Lookup(r requirement.Requirement) (int, bool) {
	key, _, ok := keyOf(r)
	if !ok {
		return -1, false
	}
	b, ok := x.bits[key]
	return b, ok
}

// Reverse returns the atom stored at bit i.
func (x *Index) Reverse(i int) requirement.Requirement {
	return x.reverse[i]
}

// Len returns the number of allocated atoms.
func (x *Index) Len() int {
	return len(x.reverse)
}

// Term returns the single-term encoding of an atomic requirement.
// A count of N sets the bits for every threshold 1..N, so that owning N
// copies subsumes every weaker count.
func (x *Index) Term(r requirement.Requirement) (Term, error) {
	c, ok := r.(requirement.Count)
	if !ok {
		b, err := x.Bit(r)
		if err != nil {
			return Term{}, err
		}
		return TermOf(b), nil
	}

	var t Term
	for i := 1; i <= c.N; i++ {
		b, err := x.Bit(requirement.Count{Item: c.Item, N: i})
		if err != nil {
			return Term{}, err
		}
		t = t.With(b)
	}
	return t, nil
}

// Implied returns the bits implied by bit i but weaker than it: for a count
// of N that is every allocated count of the same item below N.
func (x *Index) Implied(i int) []int {
	c, ok := x.reverse[i].(requirement.Count)
	if !ok {
		return nil
	}
	var out []int
	for k := 1; k < c.N; k++ {
		if b, ok := x.Lookup(requirement.Count{Item: c.Item, N: k}); ok {
			out = append(out, b)
		}
	}
	return out
}
