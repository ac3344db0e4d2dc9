// Package payment abstracts the payment rail behind a small injected
// capability so the service can swap the simulated gateway for a real one
// and tests can force either outcome.
package payment

import (
	"context"
	"math/rand"
)

// Card carries the fields collected by the payment form. Structural
// validation happens at the transport edge; the gateway only decides
// whether the charge succeeds.
type Card struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

// Gateway attempts to charge a card. A false result with a nil error is a
// decline; an error means the attempt itself could not be made.
type Gateway interface {
	Attempt(ctx context.Context, card Card) (bool, error)
}

// Simulated approves a configurable fraction of charges at random.
type Simulated struct {
	successRate float64
}

// NewSimulated returns a gateway approving roughly rate of all attempts,
// where rate is clamped to [0, 1].
func NewSimulated(rate float64) *Simulated {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &Simulated{successRate: rate}
}

func (s *Simulated) Attempt(_ context.Context, _ Card) (bool, error) {
	return rand.Float64() < s.successRate, nil
}

// Static always returns the configured outcome. Test double.
type Static struct {
	Approve bool
	Err     error
}

func (s Static) Attempt(_ context.Context, _ Card) (bool, error) {
	return s.Approve, s.Err
}
