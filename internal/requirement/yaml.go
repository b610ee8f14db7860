package requirement

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode reads a requirement from its YAML form:
//
//	true / false          Nothing / Impossible
//	~ or an empty value   Nothing
//	Bombs                 HasItem
//	{item: Bombs}         HasItem
//	{count: {item: Wallet, n: 2}}
//	{health: 3}
//	{event: Defeated_Boss}
//	{can_access: Dungeon}
//	{macro: Can_Fly}
//	{and: [...]} / {or: [...]}
func Decode(node *yaml.Node) (Requirement, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: empty node", ErrMalformed)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return Decode(node.Content[0])
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return Nothing{}, nil
		}
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			if b {
				return Nothing{}, nil
			}
			return Impossible{}, nil
		}
		if node.Value == "" {
			return nil, fmt.Errorf("%w: line %d: empty item name", ErrMalformed, node.Line)
		}
		return HasItem{Item: node.Value}, nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected exactly one key", ErrMalformed, node.Line)
		}
		return decodeKeyed(node.Content[0].Value, node.Content[1])

	default:
		return nil, fmt.Errorf("%w: line %d: unexpected yaml node", ErrMalformed, node.Line)
	}
}

func decodeKeyed(key string, value *yaml.Node) (Requirement, error) {
	switch key {
	case "and", "or":
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: line %d: %s expects a list", ErrMalformed, value.Line, key)
		}
		args := make([]Requirement, 0, len(value.Content))
		for _, child := range value.Content {
			arg, err := Decode(child)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if key == "and" {
			return And{Args: args}, nil
		}
		return Or{Args: args}, nil

	case "count":
		var c struct {
			Item string `yaml:"item"`
			N    int    `yaml:"n"`
		}
		if err := value.Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, value.Line, err)
		}
		return Count{Item: c.Item, N: c.N}, nil

	case "health":
		var hearts int
		if err := value.Decode(&hearts); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, value.Line, err)
		}
		return Health{Hearts: hearts}, nil
	}

	var name string
	if err := value.Decode(&name); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, value.Line, err)
	}
	switch key {
	case "item":
		return HasItem{Item: name}, nil
	case "event":
		return Event{Name: name}, nil
	case "can_access":
		return CanAccess{Area: name}, nil
	case "macro":
		return Macro{Name: name}, nil
	default:
		return nil, fmt.Errorf("%w: line %d: unknown key %q", ErrMalformed, value.Line, key)
	}
}

// ToValue converts r into plain maps, slices, strings and booleans in the
// same shape Decode accepts, suitable for yaml or json marshaling.
func ToValue(r Requirement) any {
	switch n := r.(type) {
	case Nothing:
		return true
	case Impossible:
		return false
	case And:
		return map[string]any{"and": argValues(n.Args)}
	case Or:
		return map[string]any{"or": argValues(n.Args)}
	case HasItem:
		return n.Item
	case Count:
		return map[string]any{"count": map[string]any{"item": n.Item, "n": n.N}}
	case Health:
		return map[string]any{"health": n.Hearts}
	case Event:
		return map[string]any{"event": n.Name}
	case CanAccess:
		return map[string]any{"can_access": n.Area}
	case Macro:
		return map[string]any{"macro": n.Name}
	default:
		return nil
	}
}

func argValues(args []Requirement) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = ToValue(arg)
	}
	return out
}
