package requirement

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMacro = errors.New("unknown macro")
	ErrMacroCycle   = errors.New("macro cycle")
	ErrUnknownArea  = errors.New("unknown area")
	ErrUnknownEvent = errors.New("unknown event")
	ErrMalformed    = errors.New("malformed requirement")
)

// Expand returns r with every Macro node replaced by the macro's own
// (recursively expanded) requirement. The input tree is not modified.
func Expand(r Requirement, macros map[string]Requirement) (Requirement, error) {
	return expand(r, macros, nil)
}

func expand(r Requirement, macros map[string]Requirement, stack []string) (Requirement, error) {
	switch n := r.(type) {
	case Macro:
		for _, name := range stack {
			if name == n.Name {
				return nil, fmt.Errorf("%w: %s", ErrMacroCycle, strings.Join(append(stack, n.Name), " -> "))
			}
		}
		body, ok := macros[n.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMacro, n.Name)
		}
		return expand(body, macros, append(stack, n.Name))

	case And:
		args, err := expandArgs(n.Args, macros, stack)
		if err != nil {
			return nil, err
		}
		return And{Args: args}, nil

	case Or:
		args, err := expandArgs(n.Args, macros, stack)
		if err != nil {
			return nil, err
		}
		return Or{Args: args}, nil

	default:
		return r, nil
	}
}

func expandArgs(args []Requirement, macros map[string]Requirement, stack []string) ([]Requirement, error) {
	out := make([]Requirement, len(args))
	for i, arg := range args {
		e, err := expand(arg, macros, stack)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Resolver reports which areas and events exist.
type Resolver interface {
	HasArea(name string) bool
	HasEvent(name string) bool
}

// Check validates an expanded requirement: every node must be a known kind
// with sane arguments and every area or event reference must resolve.
func Check(r Requirement, res Resolver) error {
	var err error
	Walk(r, func(node Requirement) bool {
		if err != nil {
			return false
		}
		err = checkNode(node, res)
		return err == nil
	})
	return err
}

func checkNode(r Requirement, res Resolver) error {
	switch n := r.(type) {
	case Nothing, Impossible, And, Or:
		return nil
	case HasItem:
		if n.Item == "" {
			return fmt.Errorf("%w: item without a name", ErrMalformed)
		}
	case Count:
		if n.Item == "" {
			return fmt.Errorf("%w: count without an item", ErrMalformed)
		}
		if n.N < 1 {
			return fmt.Errorf("%w: count %d for %s", ErrMalformed, n.N, n.Item)
		}
	case Health:
		if n.Hearts < 0 {
			return fmt.Errorf("%w: negative health %d", ErrMalformed, n.Hearts)
		}
	case Event:
		if !res.HasEvent(n.Name) {
			return fmt.Errorf("%w: %q", ErrUnknownEvent, n.Name)
		}
	case CanAccess:
		if !res.HasArea(n.Area) {
			return fmt.Errorf("%w: %q", ErrUnknownArea, n.Area)
		}
	case Macro:
		return fmt.Errorf("%w: unexpanded macro %q", ErrMalformed, n.Name)
	case nil:
		return fmt.Errorf("%w: missing requirement", ErrMalformed)
	default:
		return fmt.Errorf("%w: unsupported node %T", ErrMalformed, r)
	}
	return nil
}
