package world

import (
	"fmt"

	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

// AreaID indexes World.Areas.
type AreaID int

// EventID indexes World.Events.
type EventID int

// LocationID indexes World.Locations.
type LocationID int

// NoArea marks an exit that leads nowhere.
const NoArea AreaID = -1

// World is a graph of areas connected by guarded exits, with events and
// item locations hanging off the areas. Everything refers to everything
// else by index.
type World struct {
	Name      string
	Root      AreaID
	Areas     []Area
	Events    []Event
	Locations []Location

	areaByName     map[string]AreaID
	eventByName    map[string]EventID
	locationByName map[string]LocationID
}

// Area is a node of the world graph.
type Area struct {
	ID     AreaID
	Name   string
	Exits  []Exit
	Events []EventAccess
}

// Exit is a guarded transition out of an area.
type Exit struct {
	From        AreaID
	To          AreaID
	Requirement requirement.Requirement
}

// Event is a named milestone. The same event may be reachable from several
// areas, see EventAccess.
type Event struct {
	ID   EventID
	Name string
}

// EventAccess is one way of triggering an event from inside an area.
type EventAccess struct {
	Event       EventID
	Area        AreaID
	Requirement requirement.Requirement
}

// Location is a point of interest. Computed holds the minimized requirement
// once a flatten run has finished.
type Location struct {
	ID       LocationID
	Name     string
	Access   []LocationAccess
	Computed requirement.Requirement
}

// LocationAccess is one way of reaching a location from inside an area.
type LocationAccess struct {
	Area        AreaID
	Requirement requirement.Requirement
}

// Area returns the area with the given name.
func (w *World) Area(name string) (*Area, bool) {
	id, ok := w.areaByName[name]
	if !ok {
		return nil, false
	}
	return &w.Areas[id], true
}

// AreaIndex returns the id of the named area.
func (w *World) AreaIndex(name string) (AreaID, bool) {
	id, ok := w.areaByName[name]
	return id, ok
}

// EventIndex returns the id of the named event.
func (w *World) EventIndex(name string) (EventID, bool) {
	id, ok := w.eventByName[name]
	return id, ok
}

// Location returns the location with the given name.
func (w *World) Location(name string) (*Location, bool) {
	id, ok := w.locationByName[name]
	if !ok {
		return nil, false
	}
	return &w.Locations[id], true
}

// HasArea implements requirement.Resolver.
func (w *World) HasArea(name string) bool {
	_, ok := w.areaByName[name]
	return ok
}

// HasEvent implements requirement.Resolver.
func (w *World) HasEvent(name string) bool {
	_, ok := w.eventByName[name]
	return ok
}

// Validate checks that every guard in the world is well formed and that
// every reference resolves.
func (w *World) Validate() error {
	if w.Root < 0 || int(w.Root) >= len(w.Areas) {
		return fmt.Errorf("world %q: %w: root area", w.Name, requirement.ErrUnknownArea)
	}
	for _, area := range w.Areas {
		for _, exit := range area.Exits {
			if exit.To != NoArea && (exit.To < 0 || int(exit.To) >= len(w.Areas)) {
				return fmt.Errorf("exit %s -> #%d: %w", area.Name, exit.To, requirement.ErrUnknownArea)
			}
			if err := requirement.Check(exit.Requirement, w); err != nil {
				return fmt.Errorf("exit %s -> %s: %w", area.Name, w.areaName(exit.To), err)
			}
		}
		for _, ev := range area.Events {
			if err := requirement.Check(ev.Requirement, w); err != nil {
				return fmt.Errorf("event %s in %s: %w", w.Events[ev.Event].Name, area.Name, err)
			}
		}
	}
	for _, loc := range w.Locations {
		for _, acc := range loc.Access {
			if err := requirement.Check(acc.Requirement, w); err != nil {
				return fmt.Errorf("location %s in %s: %w", loc.Name, w.areaName(acc.Area), err)
			}
		}
	}
	return nil
}

func (w *World) areaName(id AreaID) string {
	if id == NoArea || int(id) >= len(w.Areas) || id < 0 {
		return "<nowhere>"
	}
	return w.Areas[id].Name
}
