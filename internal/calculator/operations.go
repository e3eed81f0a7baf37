package calculator

import (
	"fmt"
	"math"
)

// Operation is one of the closed set of supported calculator operations.
type Operation int

const (
	OpAdd Operation = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpRoot
	OpSqrt
	OpSquare
	OpCube
)

type operationSpec struct {
	name    string
	title   string
	symbol  string
	arity   int
	premium bool
}

// operations is indexed by Operation and lists the catalog in display order.
var operations = [...]operationSpec{
	OpAdd:      {name: "add", title: "Addition", symbol: "+", arity: 2},
	OpSubtract: {name: "subtract", title: "Subtraction", symbol: "-", arity: 2},
	OpMultiply: {name: "multiply", title: "Multiplication", symbol: "×", arity: 2},
	OpDivide:   {name: "divide", title: "Division", symbol: "÷", arity: 2},
	OpPower:    {name: "power", title: "Power", symbol: "^", arity: 2, premium: true},
	OpRoot:     {name: "root", title: "Nth root", symbol: "√", arity: 2, premium: true},
	OpSqrt:     {name: "sqrt", title: "Square root", symbol: "√", arity: 1, premium: true},
	OpSquare:   {name: "square", title: "Square", symbol: "²", arity: 1, premium: true},
	OpCube:     {name: "cube", title: "Cube", symbol: "³", arity: 1, premium: true},
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, len(operations))
	for op := OpAdd; op <= OpCube; op++ {
		m[operations[op].name] = op
	}
	return m
}()

// ParseOperation maps an operation name to its Operation. Unknown names are
// rejected with ErrInvalidOperation.
func ParseOperation(name string) (Operation, error) {
	op, ok := operationsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported operation %q", ErrInvalidOperation, name)
	}
	return op, nil
}

// Valid reports whether op is a member of the closed set.
func (op Operation) Valid() bool {
	return op >= OpAdd && op <= OpCube
}

func (op Operation) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Operation(%d)", int(op))
	}
	return operations[op].name
}

// Symbol is the display symbol for op.
func (op Operation) Symbol() string {
	if !op.Valid() {
		return ""
	}
	return operations[op].symbol
}

// Arity is the number of operands op consumes.
func (op Operation) Arity() int {
	if !op.Valid() {
		return 0
	}
	return operations[op].arity
}

// Unary reports whether op consumes a single operand.
func (op Operation) Unary() bool { return op.Arity() == 1 }

// Premium reports whether op belongs to the unlocked feature set.
func (op Operation) Premium() bool {
	return op.Valid() && operations[op].premium
}

// OperationInfo is the catalog entry served by GET /api/operations.
type OperationInfo struct {
	Name               string `json:"value"`
	Title              string `json:"name"`
	Symbol             string `json:"symbol"`
	Arity              int    `json:"arity"`
	RequiresTwoNumbers bool   `json:"requires_two_numbers"`
	Premium            bool   `json:"pro"`
}

// Catalog returns the static list of supported operations in display order.
func Catalog() []OperationInfo {
	out := make([]OperationInfo, 0, len(operations)-1)
	for op := OpAdd; op <= OpCube; op++ {
		spec := operations[op]
		out = append(out, OperationInfo{
			Name:               spec.name,
			Title:              spec.title,
			Symbol:             spec.symbol,
			Arity:              spec.arity,
			RequiresTwoNumbers: spec.arity == 2,
			Premium:            spec.premium,
		})
	}
	return out
}

// DivideByZero selects how divide treats a zero divisor.
type DivideByZero string

const (
	// DivideByZeroError fails with ErrDivisionByZero.
	DivideByZeroError DivideByZero = "error"
	// DivideByZeroInfinity returns the IEEE-754 quotient (±Inf, or NaN for 0/0).
	DivideByZeroInfinity DivideByZero = "infinity"
)

// MissingOperand selects how binary operations treat an absent second operand.
type MissingOperand string

const (
	// MissingOperandReject fails with ErrMissingOperand.
	MissingOperandReject MissingOperand = "reject"
	// MissingOperandZero evaluates with b = 0.
	MissingOperandZero MissingOperand = "zero"
)

// Defaults applied when no policy is configured.
const (
	DefaultDivideByZero   = DivideByZeroError
	DefaultMissingOperand = MissingOperandReject
)

// Policy fixes the two behavioural forks of evaluation for a Registry.
type Policy struct {
	DivideByZero   DivideByZero
	MissingOperand MissingOperand
}

// DefaultPolicy returns the policy built from the package defaults.
func DefaultPolicy() Policy {
	return Policy{DivideByZero: DefaultDivideByZero, MissingOperand: DefaultMissingOperand}
}

// Validate rejects unknown policy values.
func (p Policy) Validate() error {
	switch p.DivideByZero {
	case DivideByZeroError, DivideByZeroInfinity:
	default:
		return fmt.Errorf("unknown divide-by-zero policy %q", p.DivideByZero)
	}
	switch p.MissingOperand {
	case MissingOperandReject, MissingOperandZero:
	default:
		return fmt.Errorf("unknown missing-operand policy %q", p.MissingOperand)
	}
	return nil
}

// Registry evaluates operations under a fixed Policy. It holds no mutable
// state and is safe for concurrent use.
type Registry struct {
	policy Policy
}

// NewRegistry returns a Registry for policy. Zero fields fall back to the
// package defaults.
func NewRegistry(policy Policy) (*Registry, error) {
	if policy.DivideByZero == "" {
		policy.DivideByZero = DefaultDivideByZero
	}
	if policy.MissingOperand == "" {
		policy.MissingOperand = DefaultMissingOperand
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Registry{policy: policy}, nil
}

// Policy returns the policy the registry evaluates under.
func (r *Registry) Policy() Policy { return r.policy }

// Evaluate applies op to a and b. b is ignored for unary operations.
// Domain degeneracies (negative sqrt, root of a negative base, zeroth root)
// yield NaN rather than an error.
func (r *Registry) Evaluate(a float64, b *float64, op Operation) (float64, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}

	if op.Unary() {
		return evalUnary(a, op), nil
	}

	var y float64
	switch {
	case b != nil:
		y = *b
	case r.policy.MissingOperand == MissingOperandZero:
		y = 0
	default:
		return 0, fmt.Errorf("%w: operation %q requires a second operand", ErrMissingOperand, op)
	}

	if op == OpDivide && y == 0 && r.policy.DivideByZero == DivideByZeroError {
		return 0, fmt.Errorf("%w: %g / %g", ErrDivisionByZero, a, y)
	}

	return evalBinary(a, y, op), nil
}

func evalUnary(a float64, op Operation) float64 {
	switch op {
	case OpSqrt:
		if a < 0 {
			return math.NaN()
		}
		return math.Sqrt(a)
	case OpSquare:
		return a * a
	case OpCube:
		return a * a * a
	}
	panic(fmt.Sprintf("calculator: %s is not unary", op))
}

func evalBinary(a, b float64, op Operation) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	case OpPower:
		return math.Pow(a, b)
	case OpRoot:
		if b == 0 || a < 0 {
			return math.NaN()
		}
		return math.Pow(a, 1/b)
	}
	panic(fmt.Sprintf("calculator: %s is not binary", op))
}
