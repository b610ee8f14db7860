package equiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/reqflat/internal/bits"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
	"github.com/gnoswap-labs/reqflat/internal/simplify"
)

func TestVerify(t *testing.T) {
	a, b, c := requirement.Has("A"), requirement.Has("B"), requirement.Has("C")
	idx := bits.NewIndex()
	ba, bb, bc := idx.MustBit(a), idx.MustBit(b), idx.MustBit(c)

	// A and B or A and C
	d := bits.FromTerms(bits.TermOf(ba, bb), bits.TermOf(ba, bc))

	tests := []struct {
		name string
		req  requirement.Requirement
		want Result
	}{
		{"factored", requirement.AllOf(a, requirement.AnyOf(b, c)), Equivalent},
		{"flat", requirement.AnyOf(requirement.AllOf(a, b), requirement.AllOf(a, c)), Equivalent},
		{"missing factor", requirement.AnyOf(b, c), NotEquivalent},
		{"too strong", requirement.AllOf(a, b, c), NotEquivalent},
		{"nothing", requirement.Nothing{}, NotEquivalent},
		{"event", requirement.AllOf(a, requirement.HasEvent("E")), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Verify(idx, d, tt.req)
			assert.Equal(t, tt.want, rep.Result, rep.Detail)
		})
	}
}

func TestCheckConstants(t *testing.T) {
	idx := bits.NewIndex()
	assert.NoError(t, Check(idx, bits.False(), requirement.Impossible{}))
	assert.NoError(t, Check(idx, bits.True(), requirement.Nothing{}))
	assert.ErrorIs(t, Check(idx, bits.True(), requirement.Impossible{}), ErrNotEquivalent)
}

func TestCheckCounts(t *testing.T) {
	idx := bits.NewIndex()
	w2, err := idx.Term(requirement.HasCount("Wallet", 2))
	require.NoError(t, err)
	d := bits.FromTerms(w2)

	// Wallet x2 implies Wallet, so adding it changes nothing
	assert.NoError(t, Check(idx, d, requirement.HasCount("Wallet", 2)))
	assert.NoError(t, Check(idx, d, requirement.AllOf(requirement.Has("Wallet"), requirement.HasCount("Wallet", 2))))
	assert.ErrorIs(t, Check(idx, d, requirement.Has("Wallet")), ErrNotEquivalent)
}

func TestCheckMinimizer(t *testing.T) {
	idx := bits.NewIndex()
	atoms := []requirement.Requirement{
		requirement.Has("A"), requirement.Has("B"), requirement.Has("C"), requirement.Has("D"),
	}
	var ids []int
	for _, a := range atoms {
		ids = append(ids, idx.MustBit(a))
	}
	d := bits.FromTerms(
		bits.TermOf(ids[0], ids[1]),
		bits.TermOf(ids[0], ids[2]),
		bits.TermOf(ids[3], ids[1]),
		bits.TermOf(ids[3], ids[2]),
		bits.TermOf(ids[1], ids[2], ids[3]),
	)
	r := simplify.ToRequirement(idx, d)
	assert.NoError(t, Check(idx, d, r))
}
