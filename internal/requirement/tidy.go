package requirement

// AllOf builds the conjunction of args.
// Nested conjunctions are flattened, Nothing arguments are dropped and any
// Impossible argument makes the whole conjunction Impossible. A single
// remaining argument is returned as is.
func AllOf(args ...Requirement) Requirement {
	out := make([]Requirement, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case Nothing:
			continue
		case Impossible:
			return Impossible{}
		case And:
			inner := AllOf(a.Args...)
			switch in := inner.(type) {
			case Nothing:
				continue
			case Impossible:
				return Impossible{}
			case And:
				out = append(out, in.Args...)
			default:
				out = append(out, in)
			}
		default:
			out = append(out, arg)
		}
	}

	switch len(out) {
	case 0:
		return Nothing{}
	case 1:
		return out[0]
	}
	return And{Args: out}
}

// AnyOf builds the disjunction of args, the dual of AllOf.
func AnyOf(args ...Requirement) Requirement {
	out := make([]Requirement, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case Impossible:
			continue
		case Nothing:
			return Nothing{}
		case Or:
			inner := AnyOf(a.Args...)
			switch in := inner.(type) {
			case Impossible:
				continue
			case Nothing:
				return Nothing{}
			case Or:
				out = append(out, in.Args...)
			default:
				out = append(out, in)
			}
		default:
			out = append(out, arg)
		}
	}

	switch len(out) {
	case 0:
		return Impossible{}
	case 1:
		return out[0]
	}
	return Or{Args: out}
}
