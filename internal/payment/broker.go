package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
)

// Broker parks attempts by intent id until the payment widget reports back
// through the success/dismiss callback endpoints. It is the Provider used by
// the HTTP facade.
type Broker struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*Attempt
}

func NewBroker() *Broker {
	return &Broker{attempts: map[uuid.UUID]*Attempt{}}
}

func (b *Broker) Begin(c context.Context, intent Intent) (*Attempt, error) {
	_, span := otel.Tracer.Start(c, "Broker Begin")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Broker Begin").
		Str(log.KeyPaymentIntentID, intent.ID.String()).
		Logger()

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.attempts[intent.ID]; ok {
		err := fmt.Errorf(
			"failed registering payment attempt for intentId=%s with error=%w",
			intent.ID,
			errors.ErrTransitionInProgress,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	attempt := NewAttempt()
	b.attempts[intent.ID] = attempt
	logger.Info().Msg("registered payment attempt")
	return attempt, nil
}

// Resolve delivers the widget's callback to the parked attempt. Only the
// first callback per intent is honored.
func (b *Broker) Resolve(c context.Context, intentID uuid.UUID, outcome Outcome) error {
	_, span := otel.Tracer.Start(c, "Broker Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Broker Resolve").
		Str(log.KeyPaymentIntentID, intentID.String()).
		Str("outcome", string(outcome)).
		Logger()

	b.mu.Lock()
	attempt, ok := b.attempts[intentID]
	if ok {
		delete(b.attempts, intentID)
	}
	b.mu.Unlock()
	if !ok {
		err := fmt.Errorf(
			"failed resolving payment attempt for intentId=%s with error=%w",
			intentID,
			errors.ErrNotFound,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	first := false
	switch outcome {
	case OutcomeSucceeded:
		first = attempt.Succeed()
	case OutcomeDismissed:
		first = attempt.Dismiss()
	default:
		err := fmt.Errorf("unknown payment outcome=%s", outcome)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if !first {
		logger.Info().Msg("payment attempt already resolved, ignoring callback")
		return nil
	}
	logger.Info().Msg("resolved payment attempt")
	return nil
}
