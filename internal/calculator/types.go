package calculator

import (
	"encoding/json"
	"math"
	"time"

	"go-chi-calculator/internal/promo"
)

// Number is a float64 that survives JSON encoding when non-finite: NaN and
// ±Inf are written as the strings "NaN", "Infinity" and "-Infinity".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

func numberPtr(f *float64) *Number {
	if f == nil {
		return nil
	}
	n := Number(*f)
	return &n
}

// CalcRequest is the JSON body for POST /api/calculate. B may be omitted for
// unary operations.
// B stays raw until the operation is known to be binary.
type CalcRequest struct {
	A         *float64        `json:"a"`
	B         json.RawMessage `json:"b"`
	Operation string          `json:"operation" validate:"required,max=32"`
}

// CalcResponse is the JSON response for /api/calculate.
type CalcResponse struct {
	A                Number         `json:"a"`
	B                *Number        `json:"b,omitempty"`
	Operation        string         `json:"operation"`
	DisplayOperation string         `json:"display_operation"`
	Result           Number         `json:"result"`
	HistoryCount     int            `json:"history_count"`
	ProActivated     bool           `json:"pro_activated"`
	ShowProModal     bool           `json:"show_pro_modal"`
	ModalData        *promo.Payload `json:"modal_data,omitempty"`
}

func newCalcResponse(res Result) CalcResponse {
	return CalcResponse{
		A:                Number(res.Record.A),
		B:                numberPtr(res.Record.B),
		Operation:        res.Record.Operation.String(),
		DisplayOperation: res.Record.Symbol,
		Result:           Number(res.Record.Result),
		HistoryCount:     res.HistoryCount,
		ProActivated:     res.Unlocked,
		ShowProModal:     res.ShowPromo,
		ModalData:        res.Promo,
	}
}

// HistoryEntry is the wire form of a Record.
type HistoryEntry struct {
	A                Number  `json:"a"`
	B                *Number `json:"b,omitempty"`
	Operation        string  `json:"operation"`
	DisplayOperation string  `json:"display_operation"`
	Result           Number  `json:"result"`
	Timestamp        string  `json:"timestamp"`
}

func newHistoryEntry(rec Record) HistoryEntry {
	return HistoryEntry{
		A:                Number(rec.A),
		B:                numberPtr(rec.B),
		Operation:        rec.Operation.String(),
		DisplayOperation: rec.Symbol,
		Result:           Number(rec.Result),
		Timestamp:        rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// HistoryResponse is the JSON response for GET /api/history.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
	Total   int            `json:"total"`
}

// ClearResponse is the JSON response for POST /api/history/clear.
type ClearResponse struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

// OperationsResponse is the JSON response for GET /api/operations.
type OperationsResponse struct {
	Operations []OperationInfo `json:"operations"`
}

// ActivateResponse is the JSON response for POST /api/activate_pro.
type ActivateResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Features []string `json:"features"`
	Expires  string   `json:"expires"`
}

// ChainStep describes a single step in a chained calculation. Value is
// ignored by unary operations.
type ChainStep struct {
	Op    string   `json:"op" validate:"required,max=32"`
	Value *float64 `json:"value"`
}

// ChainRequest is the JSON body for POST /api/chain.
type ChainRequest struct {
	Initial *float64    `json:"initial"`
	Steps   []ChainStep `json:"steps" validate:"required,min=1,max=64,dive"`
}

// ChainResponse is the JSON response for POST /api/chain.
type ChainResponse struct {
	Initial      Number         `json:"initial"`
	Steps        []HistoryEntry `json:"steps"`
	Result       Number         `json:"result"`
	HistoryCount int            `json:"history_count"`
	ProActivated bool           `json:"pro_activated"`
	ShowProModal bool           `json:"show_pro_modal"`
	ModalData    *promo.Payload `json:"modal_data,omitempty"`
}

func newChainResponse(initial float64, res ChainResult) ChainResponse {
	steps := make([]HistoryEntry, 0, len(res.Records))
	for _, rec := range res.Records {
		steps = append(steps, newHistoryEntry(rec))
	}
	return ChainResponse{
		Initial:      Number(initial),
		Steps:        steps,
		Result:       Number(res.Final),
		HistoryCount: res.HistoryCount,
		ProActivated: res.Unlocked,
		ShowProModal: res.ShowPromo,
		ModalData:    res.Promo,
	}
}
