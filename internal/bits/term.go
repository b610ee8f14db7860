package bits

import (
	mathbits "math/bits"
)

// Capacity is the number of distinct atoms a single run can allocate.
const Capacity = 512

const words = Capacity / 64

// Term is a conjunction of atoms, one bit per atom index.
// Terms are values: every operation returns a new Term.
type Term [words]uint64

// TermOf returns the term with exactly the given bits set.
func TermOf(bits ...int) Term {
	var t Term
	for _, b := range bits {
		t = t.With(b)
	}
	return t
}

// With returns t with bit i set.
func (t Term) With(i int) Term {
	t[i>>6] |= 1 << (uint(i) & 63)
	return t
}

// Without returns t with bit i cleared.
func (t Term) Without(i int) Term {
	t[i>>6] &^= 1 << (uint(i) & 63)
	return t
}

// Has reports whether bit i is set.
func (t Term) Has(i int) bool {
	return t[i>>6]&(1<<(uint(i)&63)) != 0
}

// Union returns the conjunction of t and o.
func (t Term) Union(o Term) Term {
	for i := range t {
		t[i] |= o[i]
	}
	return t
}

// Intersect returns the atoms common to t and o.
func (t Term) Intersect(o Term) Term {
	for i := range t {
		t[i] &= o[i]
	}
	return t
}

// Minus returns the atoms of t that are not in o.
func (t Term) Minus(o Term) Term {
	for i := range t {
		t[i] &^= o[i]
	}
	return t
}

// SubsetOf reports whether every bit of t is also set in o, that is whether
// t is a weaker (or equal) requirement than o.
func (t Term) SubsetOf(o Term) bool {
	for i := range t {
		if t[i]&^o[i] != 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no bit is set. The empty term is always true.
func (t Term) IsEmpty() bool {
	return t == Term{}
}

// Len returns the number of atoms in t.
func (t Term) Len() int {
	n := 0
	for _, w := range t {
		n += mathbits.OnesCount64(w)
	}
	return n
}

// Bits returns the set bit indices in increasing order.
func (t Term) Bits() []int {
	out := make([]int, 0, t.Len())
	for wi, w := range t {
		for w != 0 {
			b := mathbits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &= w - 1
		}
	}
	return out
}
