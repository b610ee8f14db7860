package simplify

import (
	"github.com/gnoswap-labs/reqflat/internal/bits"
)

// kernel is a cube-free quotient of an expression together with the
// co-kernel cube it was divided by.
type kernel struct {
	cubes []bits.Term
	co    bits.Term
}

// kernels recursively enumerates the kernels of cubes. Every variable from
// minIdx on is tried as the seed of a co-kernel; seen keeps a co-kernel
// from being reported twice when it is reached through different seeds.
func kernels(cubes []bits.Term, vars []int, path bits.Term, seen map[bits.Term]bool, minIdx int) []kernel {
	var out []kernel
	for i := minIdx; i < len(vars); i++ {
		var with []bits.Term
		for _, c := range cubes {
			if c.Has(vars[i]) {
				with = append(with, c)
			}
		}
		if len(with) < 2 {
			continue
		}

		co := with[0]
		for _, c := range with[1:] {
			co = co.Intersect(c)
		}
		quot, _ := divide(cubes, []bits.Term{co})
		for _, k := range kernels(quot, vars, path.Union(co), seen, i+1) {
			if seen[k.co] {
				continue
			}
			seen[k.co] = true
			out = append(out, k)
		}
	}

	// a cube-free expression is its own kernel
	if !seen[path] {
		out = append(out, kernel{cubes: cubes, co: path})
	}
	return out
}

// divide computes the algebraic division expr / divisor, returning quot and
// rem such that expr = quot*divisor + rem. A failed division returns a nil
// quotient and expr as the remainder.
func divide(expr, divisor []bits.Term) (quot, rem []bits.Term) {
	for i, d := range divisor {
		var partial []bits.Term
		for _, e := range expr {
			if d.SubsetOf(e) {
				partial = append(partial, e.Minus(d))
			}
		}
		if len(partial) == 0 {
			return nil, expr
		}

		if i == 0 {
			quot = partial
			continue
		}
		// plain set intersection of the partial quotients
		keep := make(map[bits.Term]bool, len(partial))
		for _, p := range partial {
			keep[p] = true
		}
		n := 0
		for _, q := range quot {
			if keep[q] {
				quot[n] = q
				n++
			}
		}
		quot = quot[:n]
	}
	if len(quot) == 0 {
		return nil, expr
	}

	product := make(map[bits.Term]bool, len(quot)*len(divisor))
	for _, q := range quot {
		for _, d := range divisor {
			product[q.Union(d)] = true
		}
	}
	for _, e := range expr {
		if !product[e] {
			rem = append(rem, e)
		}
	}
	return quot, rem
}
