package world

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

type fileGuard struct {
	Name     string    `yaml:"name"`
	To       string    `yaml:"to"`
	Requires yaml.Node `yaml:"requires"`
}

type fileArea struct {
	Name      string      `yaml:"name"`
	Exits     []fileGuard `yaml:"exits"`
	Events    []fileGuard `yaml:"events"`
	Locations []fileGuard `yaml:"locations"`
}

type file struct {
	Name   string               `yaml:"name"`
	Root   string               `yaml:"root"`
	Macros map[string]yaml.Node `yaml:"macros"`
	Areas  []fileArea           `yaml:"areas"`
}

// Option adjusts how a world file is turned into a World.
type Option func(*options)

type options struct {
	root string
}

// WithRoot makes name the root area, whatever the file declares. An empty
// name keeps the file's choice.
func WithRoot(name string) Option {
	return func(o *options) {
		o.root = name
	}
}

// Load reads a world file. Files ending in .zst are zstd-compressed.
func Load(path string, opts ...Option) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	w, err := Decode(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Decode reads a world from YAML:
//
//	name: Example
//	root: Root
//	macros:
//	  Can_Fly: {or: [Leaf, Wings]}
//	areas:
//	  - name: Root
//	    exits:
//	      - to: Forest
//	        requires: Bombs
//	    events:
//	      - name: Lit_Torch
//	        requires: true
//	    locations:
//	      - name: Chest
//	        requires: {macro: Can_Fly}
//
// A guard without requires is always passable.
func Decode(r io.Reader, opts ...Option) (*World, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var f file
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}

	b := NewBuilder(f.Name)
	switch {
	case o.root != "":
		b.Root(o.root)
	case f.Root != "":
		b.Root(f.Root)
	}

	for name, node := range f.Macros {
		req, err := requirement.Decode(&node)
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", name, err)
		}
		b.Macro(name, req)
	}

	for _, area := range f.Areas {
		b.Area(area.Name)
	}
	for _, area := range f.Areas {
		for _, g := range area.Exits {
			req, err := decodeGuard(&g.Requires)
			if err != nil {
				return nil, fmt.Errorf("exit %s -> %s: %w", area.Name, g.To, err)
			}
			b.Exit(area.Name, g.To, req)
		}
		for _, g := range area.Events {
			req, err := decodeGuard(&g.Requires)
			if err != nil {
				return nil, fmt.Errorf("event %s in %s: %w", g.Name, area.Name, err)
			}
			b.Event(area.Name, g.Name, req)
		}
		for _, g := range area.Locations {
			req, err := decodeGuard(&g.Requires)
			if err != nil {
				return nil, fmt.Errorf("location %s in %s: %w", g.Name, area.Name, err)
			}
			b.Location(area.Name, g.Name, req)
		}
	}

	return b.Build()
}

func decodeGuard(node *yaml.Node) (requirement.Requirement, error) {
	if node.Kind == 0 {
		return requirement.Nothing{}, nil
	}
	return requirement.Decode(node)
}
