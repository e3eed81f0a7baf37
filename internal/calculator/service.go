package calculator

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-chi-calculator/internal/promo"
	"go-chi-calculator/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Input is one calculation request after transport decoding.
type Input struct {
	A         float64
	B         *float64
	Operation string
}

// Result is everything a response needs about one calculation.
type Result struct {
	Record       Record
	HistoryCount int
	Unlocked     bool
	ShowPromo    bool
	Promo        *promo.Payload
}

// ChainResult is the outcome of a chained calculation.
type ChainResult struct {
	Records      []Record
	Final        float64
	HistoryCount int
	Unlocked     bool
	ShowPromo    bool
	Promo        *promo.Payload
}

// Service ties evaluation, history, gating, and promo generation together.
type Service struct {
	registry *Registry
	history  *HistoryLog
	promo    *promo.Generator
	now      func() time.Time
}

// NewService wires a Service. A nil now uses time.Now.
func NewService(registry *Registry, history *HistoryLog, gen *promo.Generator, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{registry: registry, history: history, promo: gen, now: now}
}

// Calculate validates and evaluates in, advances the client's gate, and
// appends the record to history. The gate only moves on success.
func (s *Service) Calculate(ctx context.Context, in Input, state session.State) (Result, session.State, error) {
	op, err := ParseOperation(in.Operation)
	if err != nil {
		return Result{}, state, err
	}

	b := in.B
	if op.Unary() {
		b = nil
	}
	if err := checkFinite("a", in.A); err != nil {
		return Result{}, state, err
	}
	if b != nil {
		if err := checkFinite("b", *b); err != nil {
			return Result{}, state, err
		}
	}

	result, err := s.evaluate(ctx, in.A, b, op)
	if err != nil {
		return Result{}, state, err
	}

	next, decision := s.advance(ctx, state, "calculation")

	rec := NewRecord(in.A, b, op, result, s.now())
	count := s.history.Append(rec)

	return Result{
		Record:       rec,
		HistoryCount: count,
		Unlocked:     decision.Unlocked,
		ShowPromo:    decision.ShowPromo,
		Promo:        s.promoFor(ctx, decision),
	}, next, nil
}

// Chain applies steps to a running total starting at initial. Every step is
// evaluated before anything is recorded, so a failing step leaves history and
// the gate untouched.
func (s *Service) Chain(ctx context.Context, initial float64, steps []Input, state session.State) (ChainResult, session.State, error) {
	if err := checkFinite("initial", initial); err != nil {
		return ChainResult{}, state, err
	}

	running := initial
	records := make([]Record, 0, len(steps))
	for i, step := range steps {
		op, err := ParseOperation(step.Operation)
		if err != nil {
			return ChainResult{}, state, fmt.Errorf("step %d: %w", i, err)
		}

		b := step.B
		if op.Unary() {
			b = nil
		} else if b != nil {
			if err := checkFinite("value", *b); err != nil {
				return ChainResult{}, state, fmt.Errorf("step %d: %w", i, err)
			}
		}

		result, err := s.evaluate(ctx, running, b, op)
		if err != nil {
			return ChainResult{}, state, fmt.Errorf("step %d: %w", i, err)
		}

		records = append(records, NewRecord(running, b, op, result, s.now()))
		running = result
	}

	next, decision := s.advance(ctx, state, "chain")
	count := s.history.Append(records...)

	return ChainResult{
		Records:      records,
		Final:        running,
		HistoryCount: count,
		Unlocked:     decision.Unlocked,
		ShowPromo:    decision.ShowPromo,
		Promo:        s.promoFor(ctx, decision),
	}, next, nil
}

// Activate force-unlocks the client.
func (s *Service) Activate(ctx context.Context, state session.State) session.State {
	if !state.IsUnlocked() {
		unlockCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "activate")))
	}
	return state.ForceUnlock()
}

// History returns the last limit records in chronological order.
func (s *Service) History(limit int) []Record {
	return s.history.Suffix(limit)
}

// HistorySize returns the number of recorded calculations.
func (s *Service) HistorySize() int {
	return s.history.Size()
}

// ClearHistory empties the shared history.
func (s *Service) ClearHistory() {
	s.history.Clear()
}

// Operations returns the operation catalog.
func (s *Service) Operations() []OperationInfo {
	return Catalog()
}

// Joke returns a random calculator joke.
func (s *Service) Joke() promo.Joke {
	return s.promo.Joke()
}

func (s *Service) evaluate(ctx context.Context, a float64, b *float64, op Operation) (float64, error) {
	start := time.Now()
	result, err := s.registry.Evaluate(a, b, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	if err != nil {
		return 0, err
	}

	attrs := metric.WithAttributes(attribute.String("operation", op.String()))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	return result, nil
}

func (s *Service) advance(ctx context.Context, state session.State, reason string) (session.State, session.Decision) {
	next, decision := state.OnCalculation()
	if !state.IsUnlocked() && next.IsUnlocked() {
		unlockCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
	return next, decision
}

func (s *Service) promoFor(ctx context.Context, d session.Decision) *promo.Payload {
	if !d.ShowPromo {
		return nil
	}
	promoCounter.Add(ctx, 1)
	p := s.promo.Generate()
	return &p
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %g", ErrMalformedInput, name, v)
	}
	return nil
}
