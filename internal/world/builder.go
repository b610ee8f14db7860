package world

import (
	"fmt"

	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

// DefaultRoot is the root area name used when none is configured.
const DefaultRoot = "Root"

type pendingExit struct {
	from, to string
	req      requirement.Requirement
}

type pendingAccess struct {
	area, name string
	req        requirement.Requirement
}

// Builder assembles a World by name. References are resolved, macros
// expanded and guards validated in Build.
type Builder struct {
	name      string
	root      string
	areas     []string
	exits     []pendingExit
	events    []pendingAccess
	locations []pendingAccess
	macros    map[string]requirement.Requirement
}

// NewBuilder starts a world with the given name and the default root.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		root:   DefaultRoot,
		macros: make(map[string]requirement.Requirement),
	}
}

// Root sets the name of the root area.
func (b *Builder) Root(name string) *Builder {
	b.root = name
	return b
}

// Area declares an area. Declaring the same area twice is harmless.
func (b *Builder) Area(name string) *Builder {
	b.areas = append(b.areas, name)
	return b
}

// Exit adds a guarded exit. An empty to leads nowhere.
func (b *Builder) Exit(from, to string, req requirement.Requirement) *Builder {
	b.exits = append(b.exits, pendingExit{from: from, to: to, req: req})
	return b
}

// Event declares a way of triggering the named event from area.
func (b *Builder) Event(area, name string, req requirement.Requirement) *Builder {
	b.events = append(b.events, pendingAccess{area: area, name: name, req: req})
	return b
}

// Location declares a way of reaching the named location from area.
func (b *Builder) Location(area, name string, req requirement.Requirement) *Builder {
	b.locations = append(b.locations, pendingAccess{area: area, name: name, req: req})
	return b
}

// Macro defines a named requirement usable through requirement.Macro.
func (b *Builder) Macro(name string, req requirement.Requirement) *Builder {
	b.macros[name] = req
	return b
}

// Build resolves every name and returns a validated world.
func (b *Builder) Build() (*World, error) {
	w := &World{
		Name:           b.name,
		areaByName:     make(map[string]AreaID),
		eventByName:    make(map[string]EventID),
		locationByName: make(map[string]LocationID),
	}

	for _, name := range b.areas {
		if _, ok := w.areaByName[name]; ok {
			continue
		}
		id := AreaID(len(w.Areas))
		w.areaByName[name] = id
		w.Areas = append(w.Areas, Area{ID: id, Name: name})
	}

	root, ok := w.areaByName[b.root]
	if !ok {
		return nil, fmt.Errorf("world %q: %w: root %q", b.name, requirement.ErrUnknownArea, b.root)
	}
	w.Root = root

	// events must exist before guards referencing them can be checked
	for _, ev := range b.events {
		if _, ok := w.eventByName[ev.name]; ok {
			continue
		}
		id := EventID(len(w.Events))
		w.eventByName[ev.name] = id
		w.Events = append(w.Events, Event{ID: id, Name: ev.name})
	}

	for _, e := range b.exits {
		from, ok := w.areaByName[e.from]
		if !ok {
			return nil, fmt.Errorf("exit %s -> %s: %w: %q", e.from, e.to, requirement.ErrUnknownArea, e.from)
		}
		to := NoArea
		if e.to != "" {
			if to, ok = w.areaByName[e.to]; !ok {
				return nil, fmt.Errorf("exit %s -> %s: %w: %q", e.from, e.to, requirement.ErrUnknownArea, e.to)
			}
		}
		req, err := b.expand(e.req)
		if err != nil {
			return nil, fmt.Errorf("exit %s -> %s: %w", e.from, e.to, err)
		}
		w.Areas[from].Exits = append(w.Areas[from].Exits, Exit{From: from, To: to, Requirement: req})
	}

	for _, ev := range b.events {
		area, ok := w.areaByName[ev.area]
		if !ok {
			return nil, fmt.Errorf("event %s: %w: %q", ev.name, requirement.ErrUnknownArea, ev.area)
		}
		req, err := b.expand(ev.req)
		if err != nil {
			return nil, fmt.Errorf("event %s in %s: %w", ev.name, ev.area, err)
		}
		w.Areas[area].Events = append(w.Areas[area].Events, EventAccess{
			Event:       w.eventByName[ev.name],
			Area:        area,
			Requirement: req,
		})
	}

	for _, loc := range b.locations {
		area, ok := w.areaByName[loc.area]
		if !ok {
			return nil, fmt.Errorf("location %s: %w: %q", loc.name, requirement.ErrUnknownArea, loc.area)
		}
		req, err := b.expand(loc.req)
		if err != nil {
			return nil, fmt.Errorf("location %s in %s: %w", loc.name, loc.area, err)
		}
		id, ok := w.locationByName[loc.name]
		if !ok {
			id = LocationID(len(w.Locations))
			w.locationByName[loc.name] = id
			w.Locations = append(w.Locations, Location{ID: id, Name: loc.name})
		}
		w.Locations[id].Access = append(w.Locations[id].Access, LocationAccess{Area: area, Requirement: req})
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (b *Builder) expand(req requirement.Requirement) (requirement.Requirement, error) {
	if req == nil {
		return requirement.Nothing{}, nil
	}
	return requirement.Expand(req, b.macros)
}
