package protein

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainIndex_Empty(t *testing.T) {
	x := NewDomainIndex(nil)
	assert.Empty(t, x.Splitting(100))
	assert.True(t, x.SafeCut(100))
	assert.Equal(t, 100, x.ProtectedEnd(100))
}

func TestDomainIndex_SingleDomain(t *testing.T) {
	x := NewDomainIndex([]Domain{{ID: "d", Start: 100, End: 200}})

	assert.Len(t, x.Splitting(150), 1)
	assert.Empty(t, x.Splitting(100), "cut at the domain start")
	assert.Len(t, x.Splitting(101), 1)
	assert.Len(t, x.Splitting(200), 1, "cut before the last residue")
	assert.Empty(t, x.Splitting(201), "cut directly after the domain")

	assert.True(t, x.SafeCut(100), "cut at domain start")
	assert.False(t, x.SafeCut(101))
	assert.False(t, x.SafeCut(200))
	assert.True(t, x.SafeCut(201), "cut directly after domain end")
	assert.Equal(t, 201, x.ProtectedEnd(150))
}

func TestDomainIndex_BlockingPrefersWidest(t *testing.T) {
	x := NewDomainIndex([]Domain{
		{ID: "short", Start: 100, End: 110},
		{ID: "long", Start: 105, End: 500},
		{ID: "inner", Start: 120, End: 130},
	})

	d, ok := x.Blocking(125)
	assert.True(t, ok)
	assert.Equal(t, "long", d.ID)

	d, ok = x.Blocking(108)
	assert.True(t, ok)
	assert.Equal(t, "long", d.ID)

	_, ok = x.Blocking(501)
	assert.False(t, ok)
}

func TestDomainIndex_ProtectedEndFollowsChain(t *testing.T) {
	// b starts on a's last residue, so a cut after a still splits b.
	x := NewDomainIndex([]Domain{
		{ID: "a", Start: 10, End: 20},
		{ID: "b", Start: 20, End: 30},
		{ID: "c", Start: 31, End: 40},
	})

	assert.Equal(t, 31, x.ProtectedEnd(15), "c starts exactly at the cut and is left for later")
	assert.True(t, x.SafeCut(31))
}

func TestDomainIndex_MatchesLinearScan(t *testing.T) {
	domains := []Domain{
		{ID: "A", Start: 1000, End: 5000},
		{ID: "B", Start: 2000, End: 3000},
		{ID: "C", Start: 4000, End: 8000},
		{ID: "D", Start: 6000, End: 7000},
		{ID: "E", Start: 9000, End: 10000},
		{ID: "F", Start: 9000, End: 9000},
	}
	x := NewDomainIndex(domains)

	for pos := 0; pos <= 11000; pos += 250 {
		linear := map[string]bool{}
		for _, d := range domains {
			if d.Splits(pos) {
				linear[d.ID] = true
			}
		}
		indexed := map[string]bool{}
		for _, d := range x.Splitting(pos) {
			indexed[d.ID] = true
		}

		assert.Equal(t, linear, indexed, "pos=%d", pos)
		assert.Equal(t, len(linear) == 0, x.SafeCut(pos), "pos=%d", pos)
	}
}

func TestDomainIndex_OversizedNotMaskedByLaterEnd(t *testing.T) {
	x := NewDomainIndex([]Domain{
		{ID: "long", Start: 100, End: 600},
		{ID: "short", Start: 380, End: 650},
	})

	d, ok := x.Blocking(384)
	assert.True(t, ok)
	assert.Equal(t, "short", d.ID, "blocking reports the furthest-reaching domain")

	d, ok = x.Oversized(384, 400)
	assert.True(t, ok)
	assert.Equal(t, "long", d.ID)

	_, ok = x.Oversized(384, 600)
	assert.False(t, ok)
	_, ok = x.Oversized(100, 400)
	assert.False(t, ok, "cut at the domain start splits nothing")
}
