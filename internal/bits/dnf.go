package bits

// softCap bounds the size of an AND cross product before it is deduplicated.
const softCap = 500

// DNF is a boolean expression in disjunctive normal form: the OR of its
// terms. The zero value is False.
type DNF struct {
	terms []Term
}

// True returns the DNF holding only the empty term.
func True() DNF {
	return DNF{terms: []Term{{}}}
}

// False returns the DNF with no terms.
func False() DNF {
	return DNF{}
}

// FromTerms builds a DNF from the given terms. The slice is copied.
func FromTerms(terms ...Term) DNF {
	return DNF{terms: append([]Term(nil), terms...)}
}

// Terms returns a copy of the terms.
func (d DNF) Terms() []Term {
	return append([]Term(nil), d.terms...)
}

// Len returns the number of terms.
func (d DNF) Len() int {
	return len(d.terms)
}

// IsTriviallyFalse reports whether d has no terms.
func (d DNF) IsTriviallyFalse() bool {
	return len(d.terms) == 0
}

// IsTriviallyTrue reports whether d contains the empty term.
func (d DNF) IsTriviallyTrue() bool {
	for _, t := range d.terms {
		if t.IsEmpty() {
			return true
		}
	}
	return false
}

// Or returns the union of both term sets. Identical terms collapse.
func (d DNF) Or(o DNF) DNF {
	if len(o.terms) == 0 {
		return d
	}
	if len(d.terms) == 0 {
		return o
	}

	seen := make(map[Term]struct{}, len(d.terms)+len(o.terms))
	out := make([]Term, 0, len(d.terms)+len(o.terms))
	for _, ts := range [2][]Term{d.terms, o.terms} {
		for _, t := range ts {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return DNF{terms: out}
}

// OrUseful is like Or but drops terms of o already dominated by a term of d
// and reports whether any term of o survived.
func (d DNF) OrUseful(o DNF) (DNF, bool) {
	out := append(make([]Term, 0, len(d.terms)+len(o.terms)), d.terms...)
	useful := false

next:
	for _, cand := range o.terms {
		for _, existing := range d.terms {
			if existing.SubsetOf(cand) {
				continue next
			}
		}
		out = append(out, cand)
		useful = true
	}
	return DNF{terms: out}, useful
}

// And returns the cross product of both term sets. Large products are
// deduplicated right away to keep them bounded.
func (d DNF) And(o DNF) DNF {
	out := make([]Term, 0, len(d.terms)*len(o.terms))
	for _, a := range d.terms {
		for _, b := range o.terms {
			out = append(out, a.Union(b))
		}
	}

	res := DNF{terms: out}
	if len(out) > softCap {
		res = res.Dedup()
	}
	return res
}

// Dedup removes every term that is a superset of (or equal to) another
// term, leaving an antichain. The represented function is unchanged.
func (d DNF) Dedup() DNF {
	kept := make([]Term, 0, len(d.terms))

next:
	for _, cand := range d.terms {
		for _, existing := range kept {
			if existing.SubsetOf(cand) {
				continue next
			}
		}
		n := 0
		for _, existing := range kept {
			if !cand.SubsetOf(existing) {
				kept[n] = existing
				n++
			}
		}
		kept = append(kept[:n], cand)
	}
	return DNF{terms: kept}
}

// Satisfied reports whether owning exactly the atoms in have satisfies d.
func (d DNF) Satisfied(have Term) bool {
	for _, t := range d.terms {
		if t.SubsetOf(have) {
			return true
		}
	}
	return false
}

// Support returns the union of every term's atoms.
func (d DNF) Support() Term {
	var all Term
	for _, t := range d.terms {
		all = all.Union(t)
	}
	return all
}

// Equal reports whether both DNFs hold the same set of terms,
// regardless of order.
func (d DNF) Equal(o DNF) bool {
	a := make(map[Term]struct{}, len(d.terms))
	for _, t := range d.terms {
		a[t] = struct{}{}
	}
	b := make(map[Term]struct{}, len(o.terms))
	for _, t := range o.terms {
		if _, ok := a[t]; !ok {
			return false
		}
		b[t] = struct{}{}
	}
	return len(a) == len(b)
}
