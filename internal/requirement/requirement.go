package requirement

import (
	"strconv"
	"strings"
)

// Requirement is a node of a logic requirement tree.
// The set of node kinds is closed: every implementation lives in this package.
type Requirement interface {
	isRequirement()
	String() string
}

// Nothing is always satisfied.
type Nothing struct{}

func (Nothing) isRequirement() {}
func (r Nothing) String() string {
	return render(r, 0)
}

// Impossible is never satisfied.
type Impossible struct{}

func (Impossible) isRequirement() {}
func (r Impossible) String() string {
	return render(r, 0)
}

// And is satisfied when every argument is satisfied.
type And struct {
	Args []Requirement
}

func (And) isRequirement() {}
func (r And) String() string {
	return render(r, 0)
}

// Or is satisfied when at least one argument is satisfied.
type Or struct {
	Args []Requirement
}

func (Or) isRequirement() {}
func (r Or) String() string {
	return render(r, 0)
}

// HasItem requires owning at least one copy of Item.
type HasItem struct {
	Item string
}

func (HasItem) isRequirement() {}
func (r HasItem) String() string {
	return render(r, 0)
}

// Count requires owning at least N copies of Item.
type Count struct {
	Item string
	N    int
}

func (Count) isRequirement() {}
func (r Count) String() string {
	return render(r, 0)
}

// Health requires at least Hearts health units.
type Health struct {
	Hearts int
}

func (Health) isRequirement() {}
func (r Health) String() string {
	return render(r, 0)
}

// Event requires the named event to have happened.
type Event struct {
	Name string
}

func (Event) isRequirement() {}
func (r Event) String() string {
	return render(r, 0)
}

// CanAccess requires the named area to be reachable.
type CanAccess struct {
	Area string
}

func (CanAccess) isRequirement() {}
func (r CanAccess) String() string {
	return render(r, 0)
}

// Macro stands for the named macro's requirement. Macros are expanded
// before evaluation, see Expand.
type Macro struct {
	Name string
}

func (Macro) isRequirement() {}
func (r Macro) String() string {
	return render(r, 0)
}

func render(r Requirement, nesting int) string {
	switch n := r.(type) {
	case Nothing:
		return "Nothing"
	case Impossible:
		return "Impossible"
	case And:
		return printList(n.Args, " and ", nesting)
	case Or:
		return printList(n.Args, " or ", nesting)
	case HasItem:
		return n.Item
	case Count:
		return n.Item + " x" + strconv.Itoa(n.N)
	case Health:
		return "health(" + strconv.Itoa(n.Hearts) + ")"
	case Event:
		return "event: " + n.Name
	case CanAccess:
		return "can_access: " + n.Area
	case Macro:
		return "macro: " + n.Name
	default:
		return "<invalid>"
	}
}

func printList(args []Requirement, sep string, nesting int) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, render(arg, nesting+1))
	}
	s := strings.Join(parts, sep)
	if nesting > 0 {
		return "(" + s + ")"
	}
	return s
}

// Has is shorthand for HasItem{Item: item}.
func Has(item string) Requirement {
	return HasItem{Item: item}
}

// HasCount is shorthand for Count{Item: item, N: n}.
func HasCount(item string, n int) Requirement {
	return Count{Item: item, N: n}
}

// Hearts is shorthand for Health{Hearts: n}.
func Hearts(n int) Requirement {
	return Health{Hearts: n}
}

// HasEvent is shorthand for Event{Name: name}.
func HasEvent(name string) Requirement {
	return Event{Name: name}
}

// CanReach is shorthand for CanAccess{Area: area}.
func CanReach(area string) Requirement {
	return CanAccess{Area: area}
}

// UseMacro is shorthand for Macro{Name: name}.
func UseMacro(name string) Requirement {
	return Macro{Name: name}
}
