package flatten

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
	"github.com/gnoswap-labs/reqflat/internal/world"
)

var (
	bombs = requirement.Has("Bombs")
	bow   = requirement.Has("Bow")
)

func computed(t *testing.T, w *world.World, name string) string {
	t.Helper()
	loc, ok := w.Location(name)
	require.True(t, ok, "location %s", name)
	require.NotNil(t, loc.Computed)
	return loc.Computed.String()
}

func TestFlattenScenarios(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *world.Builder)
		want  string
	}{
		{
			name: "simple gating",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", bombs).
					Location("B", "Chest", requirement.Nothing{})
			},
			want: "Bombs",
		},
		{
			name: "disjoint paths",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", bombs).
					Exit("Root", "B", bow).
					Location("B", "Chest", nil)
			},
			want: "Bombs or Bow",
		},
		{
			name: "subsumption across paths",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", requirement.AllOf(bombs, bow)).
					Exit("Root", "B", bombs).
					Location("B", "Chest", nil)
			},
			want: "Bombs",
		},
		{
			name: "location guard joins area requirement",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", requirement.AnyOf(bombs, bow)).
					Location("B", "Chest", requirement.Has("Hookshot"))
			},
			want: "Hookshot and (Bombs or Bow)",
		},
		{
			name: "location reachable from two areas",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").Area("C").
					Exit("Root", "B", bombs).
					Exit("Root", "C", bow).
					Location("B", "Chest", nil).
					Location("C", "Chest", requirement.Has("Lens"))
			},
			want: "Bombs or (Bow and Lens)",
		},
		{
			name: "event in root",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Event("Root", "Drain", bombs).
					Exit("Root", "B", requirement.HasEvent("Drain")).
					Location("B", "Chest", nil)
			},
			want: "Bombs",
		},
		{
			name: "can_access of an area updated later",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").Area("C").Area("D").
					Exit("Root", "C", nil).
					Exit("C", "D", requirement.CanReach("B")).
					Exit("Root", "B", bombs).
					Location("D", "Chest", nil)
			},
			want: "Bombs",
		},
		{
			name: "higher count dominated by lower",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", requirement.HasCount("Wallet", 2)).
					Exit("Root", "B", requirement.Has("Wallet")).
					Location("B", "Chest", nil)
			},
			want: "Wallet",
		},
		{
			name: "count shown once",
			build: func(b *world.Builder) {
				b.Area("Root").Area("B").
					Exit("Root", "B", requirement.HasCount("Wallet", 2)).
					Location("B", "Chest", requirement.Has("Wallet"))
			},
			want: "Wallet x2",
		},
		{
			name: "mutual recursion never holds",
			build: func(b *world.Builder) {
				b.Area("Root").Area("A").Area("B").
					Exit("A", "B", requirement.HasEvent("E")).
					Exit("B", "A", nil).
					Event("B", "E", requirement.CanReach("A")).
					Location("B", "Chest", nil)
			},
			want: "Impossible",
		},
		{
			name: "root location",
			build: func(b *world.Builder) {
				b.Area("Root").Location("Root", "Chest", nil)
			},
			want: "Nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := world.NewBuilder(tt.name)
			tt.build(b)
			w, err := b.Build()
			require.NoError(t, err)

			s, _, err := Flatten(w)
			require.NoError(t, err)
			assert.True(t, s.Converged())
			assert.Equal(t, tt.want, computed(t, w, "Chest"))
		})
	}
}

func TestMutualRecursionIsFalse(t *testing.T) {
	w, err := world.NewBuilder("cycle").
		Area("Root").Area("A").Area("B").
		Exit("A", "B", requirement.HasEvent("E")).
		Exit("B", "A", nil).
		Event("B", "E", requirement.CanReach("A")).
		Build()
	require.NoError(t, err)

	s, err := New(w)
	require.NoError(t, err)
	stats := s.Run()

	for _, name := range []string{"A", "B"} {
		d, ok := s.AreaDNF(name)
		require.True(t, ok)
		assert.True(t, d.IsTriviallyFalse(), name)
	}
	e, ok := s.EventDNF("E")
	require.True(t, ok)
	assert.True(t, e.IsTriviallyFalse())
	assert.Equal(t, 1, stats.ReachableAreas)
	assert.Equal(t, 0, stats.ReachableEvents)
}

func TestCyclicGraphConverges(t *testing.T) {
	w, err := world.NewBuilder("loop").
		Area("Root").Area("B").Area("C").
		Exit("Root", "B", bombs).
		Exit("B", "C", bow).
		Exit("C", "Root", nil).
		Exit("C", "B", requirement.Has("Hookshot")).
		Exit("B", "Root", nil).
		Event("C", "Switch", nil).
		Exit("Root", "C", requirement.AllOf(requirement.HasEvent("Switch"), requirement.Has("Lens"))).
		Build()
	require.NoError(t, err)

	s, err := New(w)
	require.NoError(t, err)
	stats := s.Run()
	assert.True(t, s.Converged())
	assert.Equal(t, 3, stats.ReachableAreas)
	assert.Equal(t, 1, stats.ReachableEvents)
	assert.Positive(t, stats.Rounds)

	c, _ := s.AreaDNF("C")
	idx := s.Index()
	want := bits.FromTerms(bits.TermOf(idx.MustBit(bombs), idx.MustBit(bow)))
	assert.True(t, want.Equal(c), "C should only need Bombs and Bow")

	root, _ := s.AreaDNF("Root")
	assert.True(t, root.IsTriviallyTrue())
}

func TestUnknownName(t *testing.T) {
	w, err := world.NewBuilder("w").Area("Root").Build()
	require.NoError(t, err)
	s, err := New(w)
	require.NoError(t, err)
	s.Run()

	_, ok := s.AreaDNF("Nowhere")
	assert.False(t, ok)
	_, ok = s.EventDNF("Nothing_Happened")
	assert.False(t, ok)
}

func TestCapacityExceeded(t *testing.T) {
	b := world.NewBuilder("huge").Area("Root").Area("B")
	for i := 0; i <= bits.Capacity; i++ {
		b.Exit("Root", "B", requirement.Has(fmt.Sprintf("Item_%d", i)))
	}
	w, err := b.Build()
	require.NoError(t, err)

	_, err = New(w)
	assert.ErrorIs(t, err, bits.ErrCapacityExceeded)

	_, _, err = Flatten(w)
	assert.ErrorIs(t, err, bits.ErrCapacityExceeded)
}

func TestRootAreaIsTrue(t *testing.T) {
	w, err := world.NewBuilder("w").Root("Start").Area("Start").Area("B").
		Exit("Start", "B", bombs).
		Build()
	require.NoError(t, err)

	s, err := New(w)
	require.NoError(t, err)
	s.Run()
	root, _ := s.AreaDNF("Start")
	assert.True(t, root.IsTriviallyTrue())
	b, _ := s.AreaDNF("B")
	assert.Equal(t, 1, b.Len())
}
