package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnCalculationFreshShowsPromoOnce(t *testing.T) {
	s := Fresh
	assert.False(t, s.IsUnlocked())

	s, d := s.OnCalculation()
	assert.Equal(t, Decision{ShowPromo: true, Unlocked: true}, d)
	assert.True(t, s.IsUnlocked())

	s, d = s.OnCalculation()
	assert.Equal(t, Decision{ShowPromo: false, Unlocked: true}, d)
	assert.Equal(t, Unlocked, s)
}

func TestForceUnlock(t *testing.T) {
	s := Fresh.ForceUnlock()
	assert.True(t, s.IsUnlocked())

	// Idempotent, and a forced unlock never owes the promo.
	s = s.ForceUnlock()
	assert.Equal(t, Unlocked, s)

	_, d := s.OnCalculation()
	assert.False(t, d.ShowPromo)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "unlocked", Unlocked.String())
	assert.Equal(t, "unknown", State(7).String())
}
