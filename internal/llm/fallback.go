package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds retries on a single slot
type RetryPolicy struct {
	// MaxAttempts is the number of calls per slot, including the first
	MaxAttempts int
	// BaseDelay is the wait before the first retry; it doubles on every retry
	BaseDelay time.Duration
	// MaxDelay caps the wait between retries
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the retry policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Delay returns the wait before retry number n (1-based): BaseDelay * 2^(n-1), capped at MaxDelay
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 || p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < n; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Generation is a successful fallback run
type Generation struct {
	// Text is the cleaned JSON text returned by the model
	Text string
	// Slot is the slot that produced Text
	Slot string
	// Model is the provider/model that produced Text
	Model string
	// Attempts counts every provider call made, including failed ones
	Attempts int
}

// FallbackClient calls configured slots in a deterministic order until one succeeds
type FallbackClient struct {
	slots   []Slot
	factory ClientFactory
	policy  RetryPolicy
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewFallbackClient creates a fallback client over slots.
// A nil factory uses NewClient.
func NewFallbackClient(slots []Slot, factory ClientFactory, policy RetryPolicy) *FallbackClient {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	SortSlots(sorted)

	if factory == nil {
		factory = NewClient
	}

	return &FallbackClient{
		slots:   sorted,
		factory: factory,
		policy:  policy,
		sleep:   sleepContext,
	}
}

// Slots returns the configured slots in ascending order
func (f *FallbackClient) Slots() []Slot {
	slots := make([]Slot, len(f.slots))
	copy(slots, f.slots)
	return slots
}

// Order returns the slots in the order they will be tried: the requested
// slot first, then every other configured slot in ascending order.
func (f *FallbackClient) Order(requested string) []Slot {
	order := make([]Slot, 0, len(f.slots))
	for _, slot := range f.slots {
		if slot.Name == requested {
			order = append(order, slot)
		}
	}
	for _, slot := range f.slots {
		if slot.Name != requested {
			order = append(order, slot)
		}
	}
	return order
}

// Generate runs the prompt against the requested slot, falling back to the
// other slots. Quota and transient failures are retried on the same slot with
// capped exponential backoff; configuration failures move on at once.
func (f *FallbackClient) Generate(ctx context.Context, requested, system, prompt string) (*Generation, error) {
	order := f.Order(requested)
	if len(order) == 0 {
		return nil, &ProviderError{
			Slot:    requested,
			Kind:    KindConfiguration,
			Message: "no provider slots are configured",
		}
	}

	var failures []*ProviderError
	if requested != "" && order[0].Name != requested {
		failures = append(failures, &ProviderError{
			Slot:    requested,
			Kind:    KindConfiguration,
			Message: "slot is not configured",
		})
	}

	calls := 0
	for _, slot := range order {
		text, model, n, err := f.trySlot(ctx, slot, system, prompt)
		calls += n
		if err == nil {
			return &Generation{Text: text, Slot: slot.Name, Model: model, Attempts: calls}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ProviderError{
				Provider: slot.Provider,
				Slot:     slot.Name,
				Kind:     KindTransient,
				Message:  "request cancelled",
				Cause:    ctxErr,
			}
		}

		pe := asProviderError(slot, err)
		failures = append(failures, pe)
		log.Printf("[llm] slot %s (%s) failed: %v", slot.Name, pe.Kind, err)
	}

	return nil, summarize(failures)
}

// trySlot calls one slot up to MaxAttempts times and reports the number of calls made
func (f *FallbackClient) trySlot(ctx context.Context, slot Slot, system, prompt string) (string, string, int, error) {
	client, err := f.factory(ctx, slot)
	if err != nil {
		return "", "", 0, err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Printf("[llm] failed to close client for slot %s: %v", slot.Name, cerr)
		}
	}()

	var lastErr error
	calls := 0
	for attempt := 1; attempt <= f.policy.attempts(); attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx, f.policy.Delay(attempt-1)); err != nil {
				return "", "", calls, err
			}
		}

		calls++
		text, err := client.GenerateJSON(ctx, system, prompt)
		if err == nil {
			return text, client.Name(), calls, nil
		}
		lastErr = err

		if isContextError(err) {
			return "", "", calls, err
		}
		pe := asProviderError(slot, err)
		if !pe.Retryable() {
			return "", "", calls, err
		}
		log.Printf("[llm] slot %s attempt %d/%d failed (%s): %v", slot.Name, attempt, f.policy.attempts(), pe.Kind, err)
	}
	return "", "", calls, lastErr
}

// asProviderError returns err as a ProviderError, treating unknown errors as transient
func asProviderError(slot Slot, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{
		Provider: slot.Provider,
		Slot:     slot.Name,
		Kind:     KindTransient,
		Message:  "provider call failed",
		Cause:    err,
	}
}

// summarize folds the failures of every slot into one error.
// The result is a configuration error only if every slot failed for configuration reasons.
func summarize(failures []*ProviderError) *ProviderError {
	if len(failures) == 1 {
		return failures[0]
	}

	kind := KindConfiguration
	statusCode := 0
	causes := make([]error, 0, len(failures))
	for _, f := range failures {
		causes = append(causes, f)
		switch {
		case f.Kind == KindTransient && kind != KindTransient,
			f.Kind == KindQuota && kind == KindConfiguration:
			kind = f.Kind
			statusCode = f.StatusCode
		case f.Kind == kind && f.StatusCode != 0:
			// A status-less failure (network error) keeps the last known code
			statusCode = f.StatusCode
		}
	}

	return &ProviderError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("all %d provider slots failed", len(failures)),
		Cause:      errors.Join(causes...),
		Attempts:   failures,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
