// Package fragment splits proteins into overlapping, length-bounded fragments
// without cutting through any domain.
package fragment

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/alphafragment/internal/protein"
)

// Defaults applied by DefaultOptions.
const (
	DefaultLenIncrease = 10
	DefaultTimeLimit   = 100 * time.Millisecond
)

// Options configures a Fragmenter.
type Options struct {
	Length      protein.Window
	Overlap     protein.Window
	LenIncrease int
	TimeLimit   time.Duration
}

// DefaultOptions returns the default windows, len_increase and time limit.
func DefaultOptions() Options {
	return Options{
		Length:      protein.DefaultLength,
		Overlap:     protein.DefaultOverlap,
		LenIncrease: DefaultLenIncrease,
		TimeLimit:   DefaultTimeLimit,
	}
}

// Validate checks the windows and that LenIncrease and TimeLimit are positive.
func (o Options) Validate() error {
	if err := protein.ValidatePair(o.Length, o.Overlap); err != nil {
		return err
	}
	if o.LenIncrease <= 0 {
		return fmt.Errorf("len_increase must be positive, got %d", o.LenIncrease)
	}
	if o.TimeLimit <= 0 {
		return fmt.Errorf("time_limit must be positive, got %s", o.TimeLimit)
	}
	return nil
}

// Result holds the fragments computed for one protein and counters for the
// degraded paths taken while computing them.
type Result struct {
	Fragments []protein.Fragment
	// Forced counts fragments stretched past the length window to keep a
	// domain whole.
	Forced int
	// Degraded counts overlaps that fell outside the overlap window.
	Degraded int
	// Widened counts fragments found only after raising Max.
	Widened int
	// Bisections counts timeout fallbacks.
	Bisections int
}

// Fragmenter computes fragments. It holds no per-protein state, so one
// Fragmenter may be used from many goroutines.
type Fragmenter struct {
	opts   Options
	clock  Clock
	logger *zap.Logger
}

// New creates a Fragmenter with validated options.
func New(opts Options) (*Fragmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("fragmentation options: %w", err)
	}
	return &Fragmenter{
		opts:   opts,
		clock:  systemClock{},
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for degraded-outcome warnings.
func (f *Fragmenter) SetLogger(l *zap.Logger) {
	f.logger = l
}

// Options returns the options the Fragmenter was created with.
func (f *Fragmenter) Options() Options {
	return f.opts
}

// Fragment computes fragments covering p's residue range using p's domains.
// p is not modified. Only an ill-formed protein returns an error.
func (f *Fragmenter) Fragment(p *protein.Protein) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r := &run{
		opts:     f.opts,
		clock:    f.clock,
		logger:   f.logger.With(zap.String("protein", p.Name)),
		searcher: newSearcher(protein.NewDomainIndex(p.Domains()), f.opts),
		result:   &Result{},
	}

	frags := r.fragment(p.FirstRes, p.LastRes)
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Start != frags[j].Start {
			return frags[i].Start < frags[j].Start
		}
		return frags[i].End < frags[j].End
	})
	r.result.Fragments = frags

	f.logger.Debug("fragmented protein",
		zap.String("protein", p.Name),
		zap.Int("length", p.Len()),
		zap.Int("domains", len(p.Domains())),
		zap.Int("fragments", len(frags)))
	return r.result, nil
}

// Apply fragments p and appends the fragments to its ledger.
func (f *Fragmenter) Apply(p *protein.Protein) (*Result, error) {
	res, err := f.Fragment(p)
	if err != nil {
		return nil, err
	}
	if err := p.AddFragments(res.Fragments); err != nil {
		return nil, fmt.Errorf("add fragments: %w", err)
	}
	return res, nil
}

// run is the state of a single Fragment call.
type run struct {
	opts     Options
	clock    Clock
	logger   *zap.Logger
	searcher *searcher
	result   *Result
}

// fragment steps a cursor through [first, last], emitting one fragment per
// accepted cut. Each call gets a fresh time budget; when it runs out the
// remaining range is bisected and both halves are fragmented independently.
func (r *run) fragment(first, last int) []protein.Fragment {
	b := newBudget(r.clock, r.opts.TimeLimit)

	var out []protein.Fragment
	s := first
	for {
		if last-s+1 <= r.opts.Length.Max {
			return append(out, protein.Fragment{Start: s, End: last})
		}

		c, err := r.searcher.cut(s, last+1, b)
		if err != nil {
			return append(out, r.bisect(s, last)...)
		}

		frag := protein.Fragment{Start: s, End: c.Pos - 1}
		out = append(out, frag)
		r.record(frag, c)

		if c.Pos > last {
			return out
		}
		s = c.Next
	}
}

func (r *run) record(frag protein.Fragment, c Cut) {
	if c.Forced {
		r.result.Forced++
		r.logger.Warn("fragment stretched to keep domain whole",
			zap.Int("start", frag.Start),
			zap.Int("end", frag.End),
			zap.Int("length", frag.Len()))
	}
	if c.Widened > 0 {
		r.result.Widened++
		level := zap.DebugLevel
		if !r.opts.Length.Contains(frag.Len()) {
			level = zap.WarnLevel
		}
		r.logger.Log(level, "max length widened",
			zap.Int("start", frag.Start),
			zap.Int("end", frag.End),
			zap.Int("max", r.opts.Length.Max+c.Widened*r.opts.LenIncrease))
	}
	if c.Degraded {
		r.result.Degraded++
		r.logger.Warn("overlap outside window",
			zap.Int("cut", c.Pos),
			zap.Int("next_start", c.Next),
			zap.Int("overlap", c.Pos-c.Next))
	}
}

// bisect splits [first, last] at the domain-safe cut nearest its midpoint and
// fragments each half. A range with no safe cut is emitted whole.
func (r *run) bisect(first, last int) []protein.Fragment {
	r.result.Bisections++

	m, ok := r.midpointCut(first, last)
	if !ok {
		r.result.Forced++
		r.logger.Warn("no domain-safe split point, emitting range whole",
			zap.Int("start", first),
			zap.Int("end", last))
		return []protein.Fragment{{Start: first, End: last}}
	}

	next, degraded := r.searcher.resolver.next(m, first)
	if degraded {
		r.result.Degraded++
	}
	r.logger.Warn("time limit exceeded, bisecting",
		zap.Int("start", first),
		zap.Int("end", last),
		zap.Int("cut", m),
		zap.Duration("time_limit", r.opts.TimeLimit))

	left := r.fragment(first, m-1)
	right := r.fragment(next, last)
	return append(left, right...)
}

// midpointCut searches outward from the middle of [first, last] for a cut
// that splits no domain and leaves both halves non-empty.
func (r *run) midpointCut(first, last int) (int, bool) {
	mid := (first + last + 1) / 2
	for shift := 0; ; shift++ {
		up, down := mid+shift, mid-shift
		if up > last && down <= first {
			return 0, false
		}
		if up <= last && up > first && r.searcher.index.SafeCut(up) {
			return up, true
		}
		if down > first && down <= last && r.searcher.index.SafeCut(down) {
			return down, true
		}
	}
}
