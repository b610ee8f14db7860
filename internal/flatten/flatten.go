package flatten

import (
	"time"

	"github.com/gnoswap-labs/reqflat/internal/simplify"
	"github.com/gnoswap-labs/reqflat/internal/world"
)

// Flatten runs the fixpoint over w and overwrites every location's
// Computed requirement with its minimized form.
func Flatten(w *world.World) (*Search, Stats, error) {
	start := time.Now()
	s, err := New(w)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := s.Run()
	fixpointDuration.Observe(time.Since(start).Seconds())
	fixpointRounds.Observe(float64(stats.Rounds))
	atomsAllocated.Observe(float64(stats.Atoms))

	for i := range w.Locations {
		d := s.LocationDNF(world.LocationID(i))
		locationTerms.Observe(float64(d.Len()))

		mstart := time.Now()
		w.Locations[i].Computed = simplify.ToRequirement(s.Index(), d)
		minimizeDuration.Observe(time.Since(mstart).Seconds())
	}
	return s, stats, nil
}
