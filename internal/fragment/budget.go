package fragment

import (
	"errors"
	"time"
)

// errBudgetExhausted signals that the search for the current range ran past
// its time limit and should fall back to bisection.
var errBudgetExhausted = errors.New("time budget exhausted")

// Clock reports the current time. The fragmenter only measures elapsed time
// against it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// budget is the time allowance for fragmenting one range.
type budget struct {
	clock Clock
	start time.Time
	limit time.Duration
}

func newBudget(clock Clock, limit time.Duration) *budget {
	return &budget{clock: clock, start: clock.Now(), limit: limit}
}

// expired reports whether more than limit has elapsed. A zero limit never
// expires.
func (b *budget) expired() bool {
	return b.limit > 0 && b.clock.Now().Sub(b.start) > b.limit
}
