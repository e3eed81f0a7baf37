package calculator

import (
	"sync"
	"time"
)

// Record is one completed calculation. B is set iff the operation is binary.
type Record struct {
	A         float64
	B         *float64
	Operation Operation
	Symbol    string
	Result    float64
	CreatedAt time.Time
}

// NewRecord builds a Record for op, dropping b for unary operations and
// requiring it for binary ones.
func NewRecord(a float64, b *float64, op Operation, result float64, createdAt time.Time) Record {
	rec := Record{
		A:         a,
		Operation: op,
		Symbol:    op.Symbol(),
		Result:    result,
		CreatedAt: createdAt,
	}
	if !op.Unary() {
		var y float64
		if b != nil {
			y = *b
		}
		rec.B = &y
	}
	return rec
}

// clone returns r with its own copy of B.
func (r Record) clone() Record {
	if r.B != nil {
		b := *r.B
		r.B = &b
	}
	return r
}

// HistoryLog is an append-only, insertion-ordered log of calculations shared
// by all requests. Its zero value is ready to use.
type HistoryLog struct {
	mu      sync.RWMutex
	records []Record
}

// NewHistoryLog returns an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Append adds recs to the end of the log and returns the resulting size.
// Records appended in one call stay contiguous. The log keeps its own copies.
func (h *HistoryLog) Append(recs ...Record) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range recs {
		h.records = append(h.records, rec.clone())
	}
	return len(h.records)
}

// Suffix returns a copy of the last min(limit, Size()) records in
// chronological order. A non-positive limit yields an empty slice.
func (h *HistoryLog) Suffix(limit int) []Record {
	if limit <= 0 {
		return []Record{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	start := len(h.records) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Record, 0, len(h.records)-start)
	for _, rec := range h.records[start:] {
		out = append(out, rec.clone())
	}
	return out
}

// Clear empties the log.
func (h *HistoryLog) Clear() {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()
}

// Size returns the number of records in the log.
func (h *HistoryLog) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
