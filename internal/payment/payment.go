package payment

import (
	"context"

	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intent is the payment-intent descriptor the backend hands back when an
// order is created. It is passed verbatim to the payment widget.
type Intent struct {
	ID           uuid.UUID       `json:"id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeDismissed Outcome = "dismissed"
)

// Attempt is the one-shot result of handing an intent to the payment widget.
// Exactly one of Succeed or Dismiss takes effect; every later resolution is
// ignored.
type Attempt struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func NewAttempt() *Attempt {
	return &Attempt{done: make(chan struct{})}
}

// Succeed resolves the attempt as paid. It reports whether this call was the
// one that resolved the attempt.
func (a *Attempt) Succeed() bool {
	return a.resolve(OutcomeSucceeded)
}

// Dismiss resolves the attempt as abandoned by the user.
func (a *Attempt) Dismiss() bool {
	return a.resolve(OutcomeDismissed)
}

func (a *Attempt) resolve(outcome Outcome) bool {
	first := false
	a.once.Do(func() {
		a.outcome = outcome
		close(a.done)
		first = true
	})
	return first
}

// Wait blocks until the attempt resolves or the context ends. A provider that
// never calls back simply leaves the caller parked until its context expires.
func (a *Attempt) Wait(c context.Context) (Outcome, error) {
	select {
	case <-a.done:
		return a.outcome, nil
	case <-c.Done():
		return "", c.Err()
	}
}

// Provider hands a previously obtained intent to the payment widget and
// returns the attempt tracking its single success/dismiss outcome.
type Provider interface {
	Begin(c context.Context, intent Intent) (*Attempt, error)
}
