package fragment

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/alphafragment/internal/protein"
)

// frozenClock never advances, so the time limit never fires.
type frozenClock struct{ t time.Time }

func (c frozenClock) Now() time.Time { return c.t }

// steppingClock advances by step on every reading.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func testOptions() Options {
	return Options{
		Length:      protein.Window{Min: 150, Ideal: 384, Max: 400},
		Overlap:     protein.Window{Min: 20, Ideal: 30, Max: 40},
		LenIncrease: 10,
		TimeLimit:   100 * time.Millisecond,
	}
}

func newFragmenter(t *testing.T, opts Options) *Fragmenter {
	t.Helper()
	f, err := New(opts)
	require.NoError(t, err)
	f.clock = frozenClock{}
	return f
}

func newProtein(t *testing.T, n int, domains ...protein.Domain) *protein.Protein {
	t.Helper()
	p, err := protein.New("TEST", "P00001", strings.Repeat("M", n))
	require.NoError(t, err)
	p.AddDomains(domains)
	return p
}

// requireValidFragmentation checks coverage, ordering and domain integrity.
func requireValidFragmentation(t *testing.T, p *protein.Protein, frags []protein.Fragment) {
	t.Helper()
	require.NotEmpty(t, frags)

	assert.Equal(t, p.FirstRes, frags[0].Start, "first fragment starts at first residue")
	reach := frags[0].End
	for i := 1; i < len(frags); i++ {
		assert.GreaterOrEqual(t, frags[i].Start, frags[i-1].Start, "fragments ordered by start")
		assert.LessOrEqual(t, frags[i].Start, reach+1, "gap before fragment %d %v", i, frags[i])
		if frags[i].End > reach {
			reach = frags[i].End
		}
	}
	assert.Equal(t, p.LastRes, reach, "fragments reach last residue")

	for _, f := range frags {
		assert.LessOrEqual(t, f.Start, f.End)
		for _, d := range p.Domains() {
			assert.False(t, d.Splits(f.Start), "fragment %v start splits %v", f, d)
			assert.False(t, d.Splits(f.End+1), "fragment %v end splits %v", f, d)
		}
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := testOptions()
	opts.Length = protein.Window{Min: 200, Ideal: 100, Max: 300}
	_, err := New(opts)
	assert.ErrorIs(t, err, protein.ErrInvalidWindow)

	opts = testOptions()
	opts.Overlap = protein.Window{Min: 20, Ideal: 30, Max: 150}
	_, err = New(opts)
	assert.ErrorIs(t, err, protein.ErrInvalidWindow)

	opts = testOptions()
	opts.LenIncrease = 0
	_, err = New(opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.TimeLimit = 0
	_, err = New(opts)
	assert.Error(t, err)

	require.NoError(t, DefaultOptions().Validate())
}

func TestFragment_NoDomains(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 1000)

	res, err := f.Fragment(p)
	require.NoError(t, err)

	assert.Equal(t, []protein.Fragment{{Start: 0, End: 383}, {Start: 354, End: 737}, {Start: 708, End: 999}}, res.Fragments)
	requireValidFragmentation(t, p, res.Fragments)
	for i, frag := range res.Fragments {
		assert.True(t, f.Options().Length.Contains(frag.Len()), "fragment %d length %d", i, frag.Len())
		if i > 0 {
			assert.True(t, f.Options().Overlap.Contains(res.Fragments[i-1].Overlap(frag)))
		}
	}
	assert.Zero(t, res.Forced)
	assert.Zero(t, res.Degraded)
	assert.Empty(t, p.Fragments(), "Fragment does not touch the ledger")
}

func TestFragment_LongDomainKeptWhole(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 500, protein.Domain{ID: "d1", Start: 100, End: 450, Type: "Pfam"})

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)

	assert.Equal(t, []protein.Fragment{{Start: 0, End: 450}, {Start: 451, End: 499}}, res.Fragments)

	var covering bool
	for _, frag := range res.Fragments {
		if frag.Start <= 100 && frag.End >= 450 {
			covering = true
		}
	}
	assert.True(t, covering, "one fragment spans the whole domain")
	assert.Equal(t, 1, res.Widened)
	assert.Equal(t, 1, res.Degraded, "overlap blocked by the domain")
}

func TestFragment_ShortProtein(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 50)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	assert.Equal(t, []protein.Fragment{{Start: 0, End: 49}}, res.Fragments)
}

func TestFragment_ShortProteinWithDomain(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 300, protein.Domain{ID: "d", Start: 10, End: 290})

	res, err := f.Fragment(p)
	require.NoError(t, err)
	assert.Equal(t, []protein.Fragment{{Start: 0, End: 299}}, res.Fragments)
}

func TestApply_Twice(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 1000)

	res, err := f.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, res.Fragments, p.Fragments())

	_, err = f.Apply(p)
	assert.ErrorIs(t, err, protein.ErrFragmentOrder)
	assert.Len(t, p.Fragments(), 3)
}

func TestApply_ShortProteinTwice(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 50)

	_, err := f.Apply(p)
	require.NoError(t, err)
	_, err = f.Apply(p)
	assert.ErrorIs(t, err, protein.ErrFragmentOrder)
}

func TestFragment_InvalidProtein(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := &protein.Protein{Name: "BROKEN", Sequence: "MKV", FirstRes: 2, LastRes: 1}

	_, err := f.Fragment(p)
	assert.ErrorIs(t, err, protein.ErrInvalidProtein)

	_, err = f.Fragment(&protein.Protein{Name: "EMPTY"})
	assert.ErrorIs(t, err, protein.ErrInvalidProtein)
}

func TestFragment_TailKeptAboveMin(t *testing.T) {
	// The ideal first cut would leave a 66-residue tail.
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 420)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	assert.Equal(t, []protein.Fragment{{Start: 0, End: 299}, {Start: 270, End: 419}}, res.Fragments)
}

func TestFragment_OversizedDomainForcesCut(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 1000, protein.Domain{ID: "big", Start: 300, End: 899})

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)

	assert.Equal(t, []protein.Fragment{{Start: 0, End: 899}, {Start: 900, End: 999}}, res.Fragments)
	assert.Equal(t, 1, res.Forced)
	assert.Zero(t, res.Widened, "forced cut short-circuits widening")
}

func TestFragment_ForcedCutAdjacentDomain(t *testing.T) {
	// The next domain starts directly after the oversized one: the cut sits
	// between them and the adjacent domain is handled on the next step.
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 2000,
		protein.Domain{ID: "big", Start: 100, End: 600},
		protein.Domain{ID: "next", Start: 601, End: 650},
	)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)

	assert.Equal(t, protein.Fragment{Start: 0, End: 600}, res.Fragments[0])
	assert.Equal(t, 601, res.Fragments[1].Start)
	assert.GreaterOrEqual(t, res.Fragments[1].End, 650)
}

func TestFragment_ForcedCutFollowsOverlappingDomain(t *testing.T) {
	// The next domain shares the oversized domain's last residue, so ending
	// there would split it; the forced cut extends past both.
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 2000,
		protein.Domain{ID: "big", Start: 100, End: 600},
		protein.Domain{ID: "shared", Start: 600, End: 700},
	)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)
	assert.Equal(t, protein.Fragment{Start: 0, End: 700}, res.Fragments[0])
}

func TestFragment_OverlapAvoidsDomain(t *testing.T) {
	// Ideal overlap from the first cut (384-30=354) lands inside the domain.
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 1000, protein.Domain{ID: "d", Start: 340, End: 358})

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)

	assert.Equal(t, protein.Fragment{Start: 0, End: 383}, res.Fragments[0])
	assert.Equal(t, 359, res.Fragments[1].Start, "overlap widened to 25 to start after the domain")
	assert.Zero(t, res.Degraded)
}

func TestFragment_WindowAdherenceWithoutDomains(t *testing.T) {
	opts := testOptions()
	f := newFragmenter(t, opts)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		n := opts.Length.Min + rng.Intn(5000)
		p := newProtein(t, n)
		res, err := f.Fragment(p)
		require.NoError(t, err)
		requireValidFragmentation(t, p, res.Fragments)

		for j, frag := range res.Fragments {
			assert.True(t, opts.Length.Contains(frag.Len()), "n=%d fragment %v", n, frag)
			if j > 0 {
				assert.True(t, opts.Overlap.Contains(res.Fragments[j-1].Overlap(frag)), "n=%d fragment %v", n, frag)
			}
		}
	}
}

func TestFragment_RandomDomains(t *testing.T) {
	opts := testOptions()
	f := newFragmenter(t, opts)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		n := 1 + rng.Intn(3000)
		var domains []protein.Domain
		for k := rng.Intn(10); k > 0; k-- {
			start := rng.Intn(n)
			end := start + 5 + rng.Intn(600)
			if end >= n {
				end = n - 1
			}
			domains = append(domains, protein.Domain{ID: "r", Start: start, End: end, Type: "random"})
		}
		p := newProtein(t, n, domains...)

		res, err := f.Fragment(p)
		require.NoError(t, err)
		requireValidFragmentation(t, p, res.Fragments)

		if res.Forced == 0 && res.Widened == 0 {
			for _, frag := range res.Fragments {
				assert.LessOrEqual(t, frag.Len(), opts.Length.Max, "n=%d domains=%v", n, domains)
			}
		}
		if res.Degraded == 0 {
			for j := 1; j < len(res.Fragments); j++ {
				o := res.Fragments[j-1].Overlap(res.Fragments[j])
				assert.True(t, opts.Overlap.Contains(o), "n=%d overlap %d between %v and %v",
					n, o, res.Fragments[j-1], res.Fragments[j])
			}
		}

		again, err := f.Fragment(p)
		require.NoError(t, err)
		assert.Equal(t, res.Fragments, again.Fragments, "deterministic")
	}
}

func TestFragment_OversizedDomainBehindShorterOne(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p := newProtein(t, 2000,
		protein.Domain{ID: "long", Start: 100, End: 600},
		protein.Domain{ID: "short", Start: 380, End: 650},
	)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)
	assert.Equal(t, protein.Fragment{Start: 0, End: 650}, res.Fragments[0])
	assert.Equal(t, 1, res.Forced)
	assert.Zero(t, res.Widened)
}

func TestFragment_SubRange(t *testing.T) {
	f := newFragmenter(t, testOptions())
	p, err := protein.NewWithRange("SUB", "P1", strings.Repeat("M", 2000), 500, 1499)
	require.NoError(t, err)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)
	assert.Equal(t, protein.Fragment{Start: 500, End: 883}, res.Fragments[0])
}

func TestFragment_TimeoutBisects(t *testing.T) {
	f := newFragmenter(t, testOptions())
	f.clock = &steppingClock{step: time.Second}
	p := newProtein(t, 1000)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)

	assert.Equal(t, []protein.Fragment{{Start: 0, End: 249}, {Start: 220, End: 499}, {Start: 470, End: 734}, {Start: 705, End: 999}}, res.Fragments)
	assert.Equal(t, 3, res.Bisections)
}

func TestFragment_TimeoutBisectsAroundDomains(t *testing.T) {
	f := newFragmenter(t, testOptions())
	f.clock = &steppingClock{step: time.Second}
	p := newProtein(t, 3000,
		protein.Domain{ID: "mid", Start: 1400, End: 1600},
		protein.Domain{ID: "other", Start: 700, End: 760},
	)

	res, err := f.Fragment(p)
	require.NoError(t, err)
	requireValidFragmentation(t, p, res.Fragments)
	assert.Positive(t, res.Bisections)
	for _, frag := range res.Fragments {
		assert.LessOrEqual(t, frag.Len(), 400)
	}
}

func TestFragment_TimeoutWithoutSafeSplit(t *testing.T) {
	f := newFragmenter(t, testOptions())
	f.clock = &steppingClock{step: time.Second}
	p := newProtein(t, 1000, protein.Domain{ID: "all", Start: 0, End: 999})

	res, err := f.Fragment(p)
	require.NoError(t, err)
	assert.Equal(t, []protein.Fragment{{Start: 0, End: 999}}, res.Fragments)
	assert.Equal(t, 1, res.Bisections)
	assert.Equal(t, 1, res.Forced)
}

func TestFragment_PathologicalDomainChain(t *testing.T) {
	// Thousands of short domains, each sharing a residue with the next, leave
	// no safe cut between the sequence ends.
	const n = 10001
	var domains []protein.Domain
	for i := 0; i+2 < n; i += 2 {
		domains = append(domains, protein.Domain{ID: "c", Start: i, End: i + 2, Type: "chain"})
	}

	f, err := New(testOptions())
	require.NoError(t, err)
	p := newProtein(t, n, domains...)

	started := time.Now()
	res, err := f.Fragment(p)
	elapsed := time.Since(started)

	require.NoError(t, err)
	assert.Equal(t, []protein.Fragment{{Start: 0, End: n - 1}}, res.Fragments)
	assert.Less(t, elapsed, 5*time.Second)
}
