package flatten

import (
	"fmt"

	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
	"github.com/gnoswap-labs/reqflat/internal/world"
)

type guardKind int

const (
	exitGuard guardKind = iota
	eventGuard
)

// guard is an exit or an event access: something that, once its owning
// area and its requirement hold, makes a target reachable.
type guard struct {
	kind   guardKind
	owner  world.AreaID
	target int // world.AreaID for exits, world.EventID for events
	req    requirement.Requirement

	remoteAreas  []world.AreaID
	remoteEvents []world.EventID
}

// Stats describes a finished fixpoint run.
type Stats struct {
	Rounds          int
	Updates         int
	Atoms           int
	ReachableAreas  int
	ReachableEvents int
	MaxTerms        int
}

// Search computes, for every area and event of a world, the DNF under
// which it becomes reachable.
type Search struct {
	world  *world.World
	index  *bits.Index
	areas  []bits.DNF
	events []bits.DNF

	guards      []guard
	areaGuards  [][]int
	pending     []bool
	recentAreas []bool
	recentEvts  []bool
	newAreas    []bool
	newEvts     []bool

	stats Stats
}

// New prepares a search over w. It records the remote dependencies of
// every guard and allocates every atom the world mentions, failing with
// bits.ErrCapacityExceeded when the world is too large.
func New(w *world.World) (*Search, error) {
	s := &Search{
		world:      w,
		index:      bits.NewIndex(),
		areas:      make([]bits.DNF, len(w.Areas)),
		events:     make([]bits.DNF, len(w.Events)),
		areaGuards: make([][]int, len(w.Areas)),
	}

	for _, area := range w.Areas {
		for _, exit := range area.Exits {
			if exit.To == world.NoArea {
				continue
			}
			if err := s.addGuard(guard{kind: exitGuard, owner: area.ID, target: int(exit.To), req: exit.Requirement}); err != nil {
				return nil, fmt.Errorf("exit %s -> %s: %w", area.Name, w.Areas[exit.To].Name, err)
			}
		}
		for _, ev := range area.Events {
			if err := s.addGuard(guard{kind: eventGuard, owner: area.ID, target: int(ev.Event), req: ev.Requirement}); err != nil {
				return nil, fmt.Errorf("event %s in %s: %w", w.Events[ev.Event].Name, area.Name, err)
			}
		}
	}
	for _, loc := range w.Locations {
		for _, acc := range loc.Access {
			if err := s.allocate(acc.Requirement); err != nil {
				return nil, fmt.Errorf("location %s: %w", loc.Name, err)
			}
		}
	}

	n := len(s.guards)
	s.pending = make([]bool, n)
	s.recentAreas = make([]bool, len(w.Areas))
	s.newAreas = make([]bool, len(w.Areas))
	s.recentEvts = make([]bool, len(w.Events))
	s.newEvts = make([]bool, len(w.Events))

	s.areas[w.Root] = bits.True()
	s.newAreas[w.Root] = true
	s.enqueue(w.Root)
	return s, nil
}

func (s *Search) addGuard(g guard) error {
	if err := s.allocate(g.req); err != nil {
		return err
	}
	for _, dep := range requirement.Dependencies(g.req) {
		switch dep.Kind {
		case requirement.DepArea:
			id, ok := s.world.AreaIndex(dep.Name)
			if !ok {
				return fmt.Errorf("%w: %q", requirement.ErrUnknownArea, dep.Name)
			}
			g.remoteAreas = append(g.remoteAreas, id)
		case requirement.DepEvent:
			id, ok := s.world.EventIndex(dep.Name)
			if !ok {
				return fmt.Errorf("%w: %q", requirement.ErrUnknownEvent, dep.Name)
			}
			g.remoteEvents = append(g.remoteEvents, id)
		}
	}
	s.areaGuards[g.owner] = append(s.areaGuards[g.owner], len(s.guards))
	s.guards = append(s.guards, g)
	return nil
}

// allocate registers every atom of req with the index.
func (s *Search) allocate(req requirement.Requirement) error {
	var err error
	requirement.Walk(req, func(r requirement.Requirement) bool {
		if err != nil {
			return false
		}
		switch r.(type) {
		case requirement.HasItem, requirement.Count, requirement.Health:
			_, err = s.index.Term(r)
		}
		return true
	})
	return err
}

func (s *Search) enqueue(area world.AreaID) {
	for _, gi := range s.areaGuards[area] {
		s.pending[gi] = true
	}
}

// Run propagates reachability until a full round produces no useful
// update.
func (s *Search) Run() Stats {
	for {
		s.recentAreas, s.newAreas = s.newAreas, s.recentAreas
		s.recentEvts, s.newEvts = s.newEvts, s.recentEvts
		clear(s.newAreas)
		clear(s.newEvts)

		if !s.round() {
			break
		}
		s.stats.Rounds++
	}
	clear(s.recentAreas)
	clear(s.recentEvts)

	s.stats.Atoms = s.index.Len()
	s.stats.ReachableAreas = countReachable(s.areas)
	s.stats.ReachableEvents = countReachable(s.events)
	return s.stats
}

// round tries every pending exit, then every pending event, and reports
// whether anything grew.
func (s *Search) round() bool {
	found := false
	for _, kind := range [2]guardKind{exitGuard, eventGuard} {
		for gi := range s.guards {
			g := &s.guards[gi]
			if g.kind != kind || !s.pending[gi] || !s.wasUpdated(g) {
				continue
			}
			if s.try(g) {
				found = true
			}
		}
	}
	return found
}

func (s *Search) wasUpdated(g *guard) bool {
	if s.recentAreas[g.owner] {
		return true
	}
	for _, ev := range g.remoteEvents {
		if s.recentEvts[ev] {
			return true
		}
	}
	for _, area := range g.remoteAreas {
		if s.recentAreas[area] {
			return true
		}
	}
	return false
}

func (s *Search) try(g *guard) bool {
	owner := s.areas[g.owner]
	if owner.IsTriviallyFalse() {
		return false
	}
	cand := owner.And(s.eval(g.req))

	if g.kind == exitGuard {
		next, useful := s.areas[g.target].OrUseful(cand)
		if !useful {
			return false
		}
		s.areas[g.target] = next.Dedup()
		s.newAreas[g.target] = true
		s.enqueue(world.AreaID(g.target))
		s.record(s.areas[g.target])
		return true
	}

	next, useful := s.events[g.target].OrUseful(cand)
	if !useful {
		return false
	}
	s.events[g.target] = next.Dedup()
	s.newEvts[g.target] = true
	s.record(s.events[g.target])
	return true
}

func (s *Search) record(d bits.DNF) {
	s.stats.Updates++
	if d.Len() > s.stats.MaxTerms {
		s.stats.MaxTerms = d.Len()
	}
}

// Converged re-tries every guard against the current expressions and
// reports whether none of them would still grow its target.
func (s *Search) Converged() bool {
	for gi := range s.guards {
		g := &s.guards[gi]
		owner := s.areas[g.owner]
		if owner.IsTriviallyFalse() {
			continue
		}
		cand := owner.And(s.eval(g.req))
		var useful bool
		if g.kind == exitGuard {
			_, useful = s.areas[g.target].OrUseful(cand)
		} else {
			_, useful = s.events[g.target].OrUseful(cand)
		}
		if useful {
			return false
		}
	}
	return true
}

// eval converts a requirement into a DNF, reading the current, possibly
// unfinished, expressions of referenced areas and events.
func (s *Search) eval(req requirement.Requirement) bits.DNF {
	switch r := req.(type) {
	case requirement.Nothing:
		return bits.True()
	case requirement.Impossible:
		return bits.False()
	case requirement.Or:
		d := bits.False()
		for _, arg := range r.Args {
			d = d.Or(s.eval(arg))
		}
		return d
	case requirement.And:
		d := bits.True()
		for _, arg := range r.Args {
			if d.IsTriviallyFalse() {
				break
			}
			d = d.And(s.eval(arg))
		}
		return d
	case requirement.HasItem, requirement.Count, requirement.Health:
		t, err := s.index.Term(r)
		if err != nil {
			// atoms are allocated up front, see New
			panic(err)
		}
		return bits.FromTerms(t)
	case requirement.Event:
		if id, ok := s.world.EventIndex(r.Name); ok {
			return s.events[id]
		}
	case requirement.CanAccess:
		if id, ok := s.world.AreaIndex(r.Area); ok {
			return s.areas[id]
		}
	}
	// unreachable for validated worlds
	return bits.False()
}

// Index returns the atom index of the run.
func (s *Search) Index() *bits.Index {
	return s.index
}

// AreaDNF returns the current expression of the named area.
func (s *Search) AreaDNF(name string) (bits.DNF, bool) {
	id, ok := s.world.AreaIndex(name)
	if !ok {
		return bits.DNF{}, false
	}
	return s.areas[id], true
}

// EventDNF returns the current expression of the named event.
func (s *Search) EventDNF(name string) (bits.DNF, bool) {
	id, ok := s.world.EventIndex(name)
	if !ok {
		return bits.DNF{}, false
	}
	return s.events[id], true
}

// LocationDNF ORs every access path of the location together and returns
// the deduplicated result.
func (s *Search) LocationDNF(id world.LocationID) bits.DNF {
	d := bits.False()
	for _, acc := range s.world.Locations[id].Access {
		d = d.Or(s.areas[acc.Area].And(s.eval(acc.Requirement)))
	}
	return d.Dedup()
}

// Locations returns the deduplicated DNF of every location, by name.
func (s *Search) Locations() map[string]bits.DNF {
	out := make(map[string]bits.DNF, len(s.world.Locations))
	for i, loc := range s.world.Locations {
		out[loc.Name] = s.LocationDNF(world.LocationID(i))
	}
	return out
}

func countReachable(ds []bits.DNF) int {
	n := 0
	for _, d := range ds {
		if !d.IsTriviallyFalse() {
			n++
		}
	}
	return n
}
