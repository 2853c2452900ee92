// internal/model/elo_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEloTableIsOrdered(t *testing.T) {
	require.NotEmpty(t, Elos)
	assert.Equal(t, 0, Elos[0].Threshold, "first threshold must be zero")

	for i := 1; i < len(Elos); i++ {
		assert.Greater(t, Elos[i].Threshold, Elos[i-1].Threshold,
			"thresholds must be strictly increasing")
		assert.Equal(t, i, Elos[i].Rank, "rank must match table position")
	}
}

func TestResolveElo(t *testing.T) {
	tests := []struct {
		totalXP int
		wantID  string
	}{
		{0, "bronze"},
		{999, "bronze"},
		{1000, "prata"},
		{4999, "prata"},
		{5000, "ouro"},
		{15000, "platina"},
		{49999, "platina"},
		{50000, "diamante"},
		{1_000_000, "diamante"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantID, ResolveElo(tt.totalXP).ID, "totalXP=%d", tt.totalXP)
	}
}

func TestNextElo(t *testing.T) {
	next, ok := NextElo(Elos[0])
	require.True(t, ok)
	assert.Equal(t, "prata", next.ID)

	_, ok = NextElo(Elos[len(Elos)-1])
	assert.False(t, ok)
}

func TestEloProgress(t *testing.T) {
	t.Run("meio do caminho", func(t *testing.T) {
		current, next, progress, forNext := EloProgress(500)
		assert.Equal(t, "bronze", current.ID)
		require.NotNil(t, next)
		assert.Equal(t, "prata", next.ID)
		assert.InDelta(t, 50.0, progress, 0.0001)
		assert.Equal(t, 500, forNext)
	})

	t.Run("exatamente no limiar", func(t *testing.T) {
		current, next, progress, forNext := EloProgress(1000)
		assert.Equal(t, "prata", current.ID)
		require.NotNil(t, next)
		assert.InDelta(t, 0.0, progress, 0.0001)
		assert.Equal(t, 4000, forNext)
	})

	t.Run("elo máximo", func(t *testing.T) {
		current, next, progress, forNext := EloProgress(80000)
		assert.Equal(t, "diamante", current.ID)
		assert.Nil(t, next)
		assert.Equal(t, 100.0, progress)
		assert.Equal(t, 0, forNext)
	})
}
