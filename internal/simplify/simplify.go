// Package simplify turns a two-level DNF back into a readable multi-level
// requirement tree.
//
// Atoms are treated as unrelated positive variables and the expression is
// factored with the algebraic techniques of multi-level logic synthesis:
// common-cube extraction, kernels and co-kernels, prime rectangles of the
// co-kernel/cube matrix and algebraic division (Rudell, "Logic Synthesis
// for VLSI Design", 1989). The result is equivalent to the input but not
// guaranteed to be minimal.
package simplify

import (
	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

// ToRequirement converts d into a factored requirement, mapping bits back
// to atoms through idx.
func ToRequirement(idx *bits.Index, d bits.DNF) requirement.Requirement {
	if d.IsTriviallyFalse() {
		return requirement.Impossible{}
	}
	if d.IsTriviallyTrue() {
		return requirement.Nothing{}
	}
	cubes := stripImplied(idx, d.Dedup().Terms())
	return factor(idx, cubes)
}

// stripImplied drops atoms implied by a stronger atom of the same cube, so
// that "Wallet x1 and Wallet x2" reads "Wallet x2". This must happen before
// factoring, otherwise the weaker count gets pulled out as a common factor.
func stripImplied(idx *bits.Index, cubes []bits.Term) []bits.Term {
	out := make([]bits.Term, len(cubes))
	for i, c := range cubes {
		for _, b := range c.Bits() {
			for _, weaker := range idx.Implied(b) {
				c = c.Without(weaker)
			}
		}
		out[i] = c
	}
	return out
}

// factorDNF factors an arbitrary set of cubes.
func factorDNF(idx *bits.Index, cubes []bits.Term) requirement.Requirement {
	d := bits.FromTerms(cubes...).Dedup()
	if d.IsTriviallyFalse() {
		return requirement.Impossible{}
	}
	if d.IsTriviallyTrue() {
		return requirement.Nothing{}
	}
	return factor(idx, d.Terms())
}

// factor works on a non-empty antichain of non-empty cubes.
func factor(idx *bits.Index, cubes []bits.Term) requirement.Requirement {
	common := cubes[0]
	for _, c := range cubes[1:] {
		common = common.Intersect(c)
	}

	rest := make([]bits.Term, len(cubes))
	var support bits.Term
	for i, c := range cubes {
		rest[i] = c.Minus(common)
		support = support.Union(rest[i])
	}

	factors := atoms(idx, common)
	if support.IsEmpty() {
		return requirement.AllOf(factors...)
	}

	if divisor, ok := bestDivisor(rest, support.Bits()); ok {
		quot, rem := divide(rest, divisor)
		if len(quot) > 0 {
			sum := requirement.AllOf(factorDNF(idx, quot), factorDNF(idx, divisor))
			if len(rem) > 0 {
				sum = requirement.AnyOf(sum, factorDNF(idx, rem))
			}
			return requirement.AllOf(append(factors, sum)...)
		}
	}

	terms := make([]requirement.Requirement, 0, len(rest))
	for _, c := range rest {
		terms = append(terms, requirement.AllOf(atoms(idx, c)...))
	}
	return requirement.AllOf(append(factors, requirement.AnyOf(terms...))...)
}

func atoms(idx *bits.Index, t bits.Term) []requirement.Requirement {
	set := t.Bits()
	out := make([]requirement.Requirement, 0, len(set))
	for _, b := range set {
		out = append(out, idx.Reverse(b))
	}
	return out
}
