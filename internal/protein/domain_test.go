package protein

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomain(t *testing.T) {
	d, err := NewDomain("PF00069", 10, 20, "Pfam")
	require.NoError(t, err)
	assert.Equal(t, Domain{ID: "PF00069", Start: 10, End: 20, Type: "Pfam"}, d)
	assert.Equal(t, 11, d.Len())
	assert.Equal(t, "PfamPF00069 (10, 20)", d.String())

	single, err := NewDomain("x", 5, 5, "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, single.Len())
}

func TestNewDomain_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 10},
		{"negative end", 0, -1},
		{"start after end", 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDomain("d", tt.start, tt.end, "manual")
			assert.ErrorIs(t, err, ErrInvalidDomain)
		})
	}
}

func TestDomain_Splits(t *testing.T) {
	d := Domain{ID: "d", Start: 10, End: 20}

	assert.False(t, d.Splits(10), "cut at start")
	assert.True(t, d.Splits(11))
	assert.True(t, d.Splits(20), "cut would detach the last residue")
	assert.False(t, d.Splits(21), "cut directly after end")
	assert.False(t, d.Splits(5))
}

func TestSortDomains(t *testing.T) {
	in := []Domain{
		{ID: "c", Start: 50, End: 60},
		{ID: "narrow", Start: 10, End: 15},
		{ID: "wide", Start: 10, End: 40},
		{ID: "a", Start: 0, End: 5},
	}
	sorted := SortDomains(in)

	ids := make([]string, len(sorted))
	for i, d := range sorted {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"a", "wide", "narrow", "c"}, ids)
	assert.Equal(t, "c", in[0].ID, "input left untouched")
}
