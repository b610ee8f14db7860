package reqflat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lakeWorld = `
name: Lake
areas:
  - name: Shore
    exits:
      - to: Island
        requires: {or: [Hookshot, {and: [Boots, Bombs]}]}
    locations:
      - name: Dock
  - name: Island
    locations:
      - name: Shrine
        requires: Lens
`

func TestFlattenReader(t *testing.T) {
	got, stats, err := FlattenReader(strings.NewReader(lakeWorld))
	require.NoError(t, err)

	assert.Equal(t, Flattened{
		"Dock":   "Nothing",
		"Shrine": "Lens and (Hookshot or (Boots and Bombs))",
	}, got)
	assert.Positive(t, stats.Rounds)

	var named Stats = stats
	assert.Equal(t, 2, named.ReachableAreas)
}

func TestFlattenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lakeWorld), 0o644))

	got, _, err := FlattenFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, _, err = FlattenFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFlattenReaderInvalid(t *testing.T) {
	_, _, err := FlattenReader(strings.NewReader("areas: [}"))
	assert.Error(t, err)
}
