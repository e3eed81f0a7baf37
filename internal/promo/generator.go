package promo

import (
	"sync"
	"time"
)

// Payload is the content of the one-time PRO promo modal.
type Payload struct {
	ChosenPrice      string   `json:"chosen_price"`
	Reviews          []Review `json:"reviews"`
	AlreadySold      int      `json:"already_sold"`
	SatisfactionRate int      `json:"satisfaction_rate"`
	DisplayTimestamp string   `json:"display_timestamp"`
	CountdownSeconds int      `json:"countdown_seconds"`
}

// Joke is a random piece of calculator humour.
type Joke struct {
	Text       string `json:"joke"`
	Type       string `json:"type"`
	LaughLevel int    `json:"laugh_level"`
}

// Generator builds payloads from the fixed tables. It keeps no state besides
// its random source, which it serialises so callers may share it.
type Generator struct {
	mu  sync.Mutex
	src Source
	now func() time.Time
}

// NewGenerator returns a Generator drawing from src. A nil src uses
// DefaultSource and a nil now uses time.Now.
func NewGenerator(src Source, now func() time.Time) *Generator {
	if src == nil {
		src = DefaultSource()
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{src: src, now: now}
}

// Generate builds a fresh payload.
func (g *Generator) Generate() Payload {
	g.mu.Lock()
	defer g.mu.Unlock()

	// The tables are package constants with positive weights and enough
	// entries, so neither draw can fail.
	price, err := Choose(g.src, Prices)
	if err != nil {
		panic(err)
	}
	reviews, err := Sample(g.src, Reviews, ReviewsPerPayload)
	if err != nil {
		panic(err)
	}

	return Payload{
		ChosenPrice:      price,
		Reviews:          reviews,
		AlreadySold:      intBetween(g.src, MinAlreadySold, MaxAlreadySold),
		SatisfactionRate: intBetween(g.src, MinSatisfactionRate, MaxSatisfactionRate),
		DisplayTimestamp: g.now().Format("15:04"),
		CountdownSeconds: intBetween(g.src, MinCountdownSeconds, MaxCountdownSeconds),
	}
}

// Joke returns a uniformly chosen joke with a laugh level in [7, 10].
func (g *Generator) Joke() Joke {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Joke{
		Text:       jokes[g.src.IntN(len(jokes))],
		Type:       "calculator_humor",
		LaughLevel: intBetween(g.src, 7, 10),
	}
}
