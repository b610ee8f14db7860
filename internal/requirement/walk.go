package requirement

// DepKind distinguishes the two kinds of remote dependencies a
// requirement can have.
type DepKind int

const (
	DepEvent DepKind = iota
	DepArea
)

func (k DepKind) String() string {
	switch k {
	case DepEvent:
		return "event"
	case DepArea:
		return "area"
	default:
		return "?"
	}
}

// Dependency is a direct reference from a requirement to an event or to the
// reachability of an area.
type Dependency struct {
	Kind DepKind
	Name string
}

// Dependencies returns every event and area referenced by r, in tree order.
// Duplicates are kept.
func Dependencies(r Requirement) []Dependency {
	var deps []Dependency
	collectDeps(r, &deps)
	return deps
}

func collectDeps(r Requirement, deps *[]Dependency) {
	switch n := r.(type) {
	case And:
		for _, arg := range n.Args {
			collectDeps(arg, deps)
		}
	case Or:
		for _, arg := range n.Args {
			collectDeps(arg, deps)
		}
	case Event:
		*deps = append(*deps, Dependency{Kind: DepEvent, Name: n.Name})
	case CanAccess:
		*deps = append(*deps, Dependency{Kind: DepArea, Name: n.Area})
	}
}

// Walk calls fn for r and every node below it, parents first.
// Returning false from fn skips the node's children.
func Walk(r Requirement, fn func(Requirement) bool) {
	if !fn(r) {
		return
	}
	switch n := r.(type) {
	case And:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case Or:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	}
}
