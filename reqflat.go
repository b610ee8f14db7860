package reqflat

import (
	"fmt"
	"io"

	"github.com/gnoswap-labs/reqflat/internal/flatten"
	"github.com/gnoswap-labs/reqflat/internal/world"
)

// Stats describes one fixpoint run.
type Stats = flatten.Stats

// Flattened maps location names to their minimized requirement text.
type Flattened map[string]string

// FlattenFile loads the world file at path and flattens it.
func FlattenFile(path string) (Flattened, Stats, error) {
	w, err := world.Load(path)
	if err != nil {
		return nil, Stats{}, err
	}
	return flattenWorld(w)
}

// FlattenReader decodes a YAML world from r and flattens it.
func FlattenReader(r io.Reader) (Flattened, Stats, error) {
	w, err := world.Decode(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("error decoding world: %w", err)
	}
	return flattenWorld(w)
}

func flattenWorld(w *world.World) (Flattened, Stats, error) {
	_, stats, err := flatten.Flatten(w)
	if err != nil {
		return nil, stats, err
	}
	out := make(Flattened, len(w.Locations))
	for _, loc := range w.Locations {
		out[loc.Name] = loc.Computed.String()
	}
	return out, stats, nil
}
