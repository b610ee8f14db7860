// Package equiv double-checks minimized requirements by comparing them with
// the DNF they were produced from as binary decision diagrams.
package equiv

import (
	"errors"
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

// ErrNotEquivalent is returned by Check when the two forms disagree on at
// least one assignment.
var ErrNotEquivalent = errors.New("minimized requirement is not equivalent to its DNF")

// Result represents the outcome of a verification.
type Result int

const (
	_ Result = iota
	// Equivalent means both forms hold for exactly the same inventories.
	Equivalent
	// NotEquivalent means some inventory satisfies only one of them.
	NotEquivalent
	// Unknown means the requirement could not be encoded.
	Unknown
)

func (r Result) String() string {
	switch r {
	case Equivalent:
		return "Equivalent"
	case NotEquivalent:
		return "NotEquivalent"
	case Unknown:
		return "Unknown"
	default:
		return "?"
	}
}

// Report provides detailed information about a verification.
type Report struct {
	Result Result
	Detail string
	// Vars is the number of BDD variables used.
	Vars int
}

// Verify compares d and r. Atoms of r are mapped to bits through idx, so r
// must only mention atoms idx already knows.
func Verify(idx *bits.Index, d bits.DNF, r requirement.Requirement) Report {
	support := d.Support()
	var encodeErr error
	requirement.Walk(r, func(n requirement.Requirement) bool {
		switch n.(type) {
		case requirement.HasItem, requirement.Count, requirement.Health:
			t, err := idx.Term(n)
			if err != nil && encodeErr == nil {
				encodeErr = err
			}
			support = support.Union(t)
		case requirement.Event, requirement.CanAccess, requirement.Macro:
			if encodeErr == nil {
				encodeErr = fmt.Errorf("%v is not an atom", n)
			}
		}
		return true
	})
	if encodeErr != nil {
		return Report{Result: Unknown, Detail: encodeErr.Error()}
	}

	e, err := newEncoder(support)
	if err != nil {
		return Report{Result: Unknown, Detail: err.Error()}
	}
	left := e.dnf(d)
	right, err := e.requirement(idx, r)
	if err != nil {
		return Report{Result: Unknown, Detail: err.Error(), Vars: len(e.vars)}
	}
	if msg := e.bdd.Error(); msg != "" {
		return Report{Result: Unknown, Detail: msg, Vars: len(e.vars)}
	}

	if e.bdd.Equal(left, right) {
		return Report{Result: Equivalent, Vars: len(e.vars)}
	}
	return Report{
		Result: NotEquivalent,
		Detail: fmt.Sprintf("%d-term DNF vs %s", d.Len(), r),
		Vars:   len(e.vars),
	}
}

// Check is Verify reduced to an error.
func Check(idx *bits.Index, d bits.DNF, r requirement.Requirement) error {
	rep := Verify(idx, d, r)
	switch rep.Result {
	case Equivalent:
		return nil
	case NotEquivalent:
		return fmt.Errorf("%w: %s", ErrNotEquivalent, rep.Detail)
	default:
		return fmt.Errorf("cannot verify %s: %s", r, rep.Detail)
	}
}

type encoder struct {
	bdd  *rudd.BDD
	vars map[int]int // atom bit -> BDD variable
}

func newEncoder(support bits.Term) (*encoder, error) {
	set := support.Bits()
	vars := make(map[int]int, len(set))
	for i, b := range set {
		vars[b] = i
	}
	// rudd refuses a BDD without variables
	n := max(len(set), 1)
	bdd, err := rudd.New(n, rudd.Nodesize(1000*n), rudd.Cachesize(500*n))
	if err != nil {
		return nil, err
	}
	return &encoder{bdd: bdd, vars: vars}, nil
}

func (e *encoder) term(t bits.Term) rudd.Node {
	set := t.Bits()
	nodes := make([]rudd.Node, 0, len(set))
	for _, b := range set {
		nodes = append(nodes, e.bdd.Ithvar(e.vars[b]))
	}
	return e.bdd.And(nodes...)
}

func (e *encoder) dnf(d bits.DNF) rudd.Node {
	terms := d.Terms()
	nodes := make([]rudd.Node, 0, len(terms))
	for _, t := range terms {
		nodes = append(nodes, e.term(t))
	}
	return e.bdd.Or(nodes...)
}

func (e *encoder) requirement(idx *bits.Index, r requirement.Requirement) (rudd.Node, error) {
	switch n := r.(type) {
	case requirement.Nothing:
		return e.bdd.True(), nil
	case requirement.Impossible:
		return e.bdd.False(), nil
	case requirement.And:
		nodes, err := e.requirements(idx, n.Args)
		if err != nil {
			return nil, err
		}
		return e.bdd.And(nodes...), nil
	case requirement.Or:
		nodes, err := e.requirements(idx, n.Args)
		if err != nil {
			return nil, err
		}
		return e.bdd.Or(nodes...), nil
	default:
		t, err := idx.Term(r)
		if err != nil {
			return nil, err
		}
		return e.term(t), nil
	}
}

func (e *encoder) requirements(idx *bits.Index, args []requirement.Requirement) ([]rudd.Node, error) {
	nodes := make([]rudd.Node, 0, len(args))
	for _, arg := range args {
		node, err := e.requirement(idx, arg)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
