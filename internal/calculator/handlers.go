package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBodyBytes caps request bodies; calculator payloads are tiny.
const maxBodyBytes = 64 << 10

// SessionStore loads and saves a client's session around a request.
type SessionStore interface {
	Load(r *http.Request) (session.Session, error)
	Save(w http.ResponseWriter, sess session.Session) error
}

// Handler serves the calculator API.
type Handler struct {
	svc          *Service
	sessions     SessionStore
	historyLimit int
}

// NewHandler returns a Handler. historyLimit is the number of records
// GET /api/history returns when no limit is given.
func NewHandler(svc *Service, sessions SessionStore, historyLimit int) *Handler {
	return &Handler{svc: svc, sessions: sessions, historyLimit: historyLimit}
}

// ---------------------------------------------------------------------------
// Calculate
// ---------------------------------------------------------------------------

// Calculate handles GET and POST /api/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var in Input
	var err error
	if r.Method == http.MethodPost {
		in, err = decodeCalcBody(w, r)
	} else {
		in, err = parseCalcQuery(r.URL.Query())
	}
	label := opLabel(in.Operation)
	if err != nil {
		h.fail(ctx, span, logger, label, err, w)
		return
	}

	if label != unknownOperation {
		span.SetName("calculator." + label)
	}
	span.SetAttributes(
		attribute.String("calculator.operation", label),
		attribute.Float64("calculator.operand.a", in.A),
	)
	if in.B != nil {
		span.SetAttributes(attribute.Float64("calculator.operand.b", *in.B))
	}

	sess := h.loadSession(r, logger)

	res, next, err := h.svc.Calculate(ctx, in, sess.State)
	if err != nil {
		h.fail(ctx, span, logger, label, err, w)
		return
	}

	sess.State = next
	h.saveSession(w, sess, logger)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", res.Record.Result),
		attribute.Bool("promo.shown", res.ShowPromo),
	))
	span.SetAttributes(
		attribute.Float64("calculator.result", res.Record.Result),
		attribute.Bool("session.unlocked", res.Unlocked),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", in.Operation),
		zap.Float64("a", in.A),
		zap.Float64p("b", res.Record.B),
		zap.Float64("result", res.Record.Result),
		zap.Bool("show_promo", res.ShowPromo),
		zap.String("client_id", sess.ClientID),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newCalcResponse(res))
}

func decodeCalcBody(w http.ResponseWriter, r *http.Request) (Input, error) {
	if err := requireJSON(r); err != nil {
		return Input{}, err
	}

	var req CalcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return Input{}, err
	}
	if err := validate.Struct(req); err != nil {
		return Input{Operation: req.Operation}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if req.A == nil {
		return Input{Operation: req.Operation}, fmt.Errorf("%w: a is required", ErrMalformedInput)
	}

	in := Input{A: *req.A, Operation: req.Operation}
	if op, err := ParseOperation(req.Operation); err != nil || op.Unary() {
		return in, nil
	}
	if len(req.B) == 0 || string(req.B) == "null" {
		return in, nil
	}
	var b float64
	if err := json.Unmarshal(req.B, &b); err != nil {
		return in, fmt.Errorf("%w: b is not a number: %s", ErrMalformedInput, req.B)
	}
	in.B = &b
	return in, nil
}

func parseCalcQuery(q url.Values) (Input, error) {
	in := Input{Operation: q.Get("operation")}
	if in.Operation == "" {
		return in, fmt.Errorf("%w: operation is required", ErrMalformedInput)
	}

	a, err := parseOperand("a", q.Get("a"))
	if err != nil {
		return in, err
	}
	if a == nil {
		return in, fmt.Errorf("%w: a is required", ErrMalformedInput)
	}
	in.A = *a

	// b is only read for binary operations; unknown names fail later.
	if op, err := ParseOperation(in.Operation); err != nil || op.Unary() {
		return in, nil
	}
	if in.B, err = parseOperand("b", q.Get("b")); err != nil {
		return in, err
	}
	return in, nil
}

// unknownOperation labels telemetry for names outside the catalog.
const unknownOperation = "unknown"

// opLabel returns the canonical operation name, or unknownOperation, so that
// client input never becomes a metric label or span name.
func opLabel(name string) string {
	op, err := ParseOperation(name)
	if err != nil {
		return unknownOperation
	}
	return op.String()
}

// parseOperand parses a query operand; an empty value means absent.
func parseOperand(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number: %q", ErrMalformedInput, name, raw)
	}
	return &v, nil
}

// ---------------------------------------------------------------------------
// Chain runs a sequence of operations on a running total
// ---------------------------------------------------------------------------

// Chain handles POST /api/chain. Each step becomes one history record; the
// whole chain counts as a single calculation for the client's gate.
func (h *Handler) Chain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.chain",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if err := requireJSON(r); err != nil {
		h.fail(ctx, span, logger, "chain", err, w)
		return
	}

	var req ChainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(ctx, span, logger, "chain", err, w)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.fail(ctx, span, logger, "chain", fmt.Errorf("%w: %v", ErrMalformedInput, err), w)
		return
	}
	if req.Initial == nil {
		h.fail(ctx, span, logger, "chain", fmt.Errorf("%w: initial is required", ErrMalformedInput), w)
		return
	}

	steps := make([]Input, 0, len(req.Steps))
	for _, step := range req.Steps {
		steps = append(steps, Input{Operation: step.Op, B: step.Value})
	}

	span.SetAttributes(
		attribute.Float64("chain.initial", *req.Initial),
		attribute.Int("chain.steps_count", len(steps)),
	)

	sess := h.loadSession(r, logger)

	res, next, err := h.svc.Chain(ctx, *req.Initial, steps, sess.State)
	if err != nil {
		h.fail(ctx, span, logger, "chain", err, w)
		return
	}

	sess.State = next
	h.saveSession(w, sess, logger)

	for i, rec := range res.Records {
		span.AddEvent("step.complete", trace.WithAttributes(
			attribute.Int("chain.step.index", i),
			attribute.String("chain.step.operation", rec.Operation.String()),
			attribute.Float64("input", rec.A),
			attribute.Float64("result", rec.Result),
		))
	}
	span.SetAttributes(attribute.Float64("chain.result", res.Final))
	span.SetStatus(codes.Ok, "")

	logger.Info("chained calculation completed",
		zap.Float64("initial", *req.Initial),
		zap.Float64("result", res.Final),
		zap.Int("steps", len(steps)),
		zap.String("client_id", sess.ClientID),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newChainResponse(*req.Initial, res))
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// History handles GET /api/history?limit=N. A missing or unparsable limit
// falls back to the handler's default.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.history.list")
	defer span.End()

	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records := h.svc.History(limit)
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, newHistoryEntry(rec))
	}
	total := h.svc.HistorySize()

	span.SetAttributes(
		attribute.Int("history.limit", limit),
		attribute.Int("history.returned", len(entries)),
		attribute.Int("history.total", total),
	)

	observability.LoggerWithTrace(ctx).Debug("history listed",
		zap.Int("limit", limit),
		zap.Int("returned", len(entries)),
	)

	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{History: entries, Total: total})
}

// ClearHistory handles POST /api/history/clear.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.history.clear")
	defer span.End()

	removed := h.svc.HistorySize()
	h.svc.ClearHistory()
	span.SetAttributes(attribute.Int("history.removed", removed))

	observability.LoggerWithTrace(ctx).Info("history cleared",
		zap.Int("removed", removed),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, ClearResponse{Message: "History cleared", Total: 0})
}

// ---------------------------------------------------------------------------
// Catalog, activation, jokes
// ---------------------------------------------------------------------------

// Operations handles GET /api/operations.
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, OperationsResponse{Operations: h.svc.Operations()})
}

// Activate handles POST /api/activate_pro: it unlocks the client without a
// prior calculation.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "session.activate")
	defer span.End()

	logger := observability.LoggerWithTrace(ctx)
	sess := h.loadSession(r, logger)
	wasUnlocked := sess.State.IsUnlocked()

	sess.State = h.svc.Activate(ctx, sess.State)
	h.saveSession(w, sess, logger)

	span.SetAttributes(attribute.Bool("session.was_unlocked", wasUnlocked))

	logger.Info("pro activated",
		zap.String("client_id", sess.ClientID),
		zap.Bool("was_unlocked", wasUnlocked),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, ActivateResponse{
		Status:  "success",
		Message: "PRO version activated!",
		Features: []string{
			`"Equals" button unlocked`,
			"All digits 0-9 available",
			"Advanced operations enabled",
			"Ads disabled",
		},
		Expires: "Never 😉",
	})
}

// Joke handles GET /api/joke.
func (h *Handler) Joke(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, h.svc.Joke())
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *Handler) loadSession(r *http.Request, logger *zap.Logger) session.Session {
	sess, err := h.sessions.Load(r)
	if err != nil {
		logger.Warn("discarding invalid session", zap.Error(err))
	}
	return sess
}

func (h *Handler) saveSession(w http.ResponseWriter, sess session.Session, logger *zap.Logger) {
	if err := h.sessions.Save(w, sess); err != nil {
		logger.Error("saving session", zap.Error(err), zap.String("client_id", sess.ClientID))
	}
}

// fail maps err to its kind and status and records it.
func (h *Handler) fail(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	kind := KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if kind == KindInternal {
		msg = "internal error"
	}
	if opName == "" {
		opName = unknownOperation
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, string(kind), msg, err, status, w)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindInvalidOperation, KindMissingOperand, KindDivisionByZero, KindMalformedInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requireJSON(r *http.Request) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return fmt.Errorf("%w: Content-Type must be application/json", ErrMalformedInput)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body too large", ErrMalformedInput)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", ErrMalformedInput, err)
	}
	return nil
}
