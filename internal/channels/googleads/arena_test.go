package googleads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena(t *testing.T) {
	a := newArena("123", -1000)
	budget := a.reserve(collectionBudgets)
	camp := a.reserve(collectionCampaigns)
	assets := a.reserveN(collectionAssets, 2)

	assert.Equal(t, "customers/123/campaignBudgets/-1000", a.name(budget))
	assert.Equal(t, "customers/123/campaigns/-1001", a.name(camp))
	assert.Equal(t, []string{"customers/123/assets/-1002", "customers/123/assets/-1003"}, a.names(assets))

	a.bind(budget, 0)
	a.bind(camp, 1)
	a.bind(assets[0], 3)
	a.bind(assets[1], 4)
	require.NoError(t, a.resolve([]string{"b/1", "c/1", "crit/1", "a/1", "a/2"}))
	assert.Equal(t, "b/1", a.resolved(budget))
	assert.Equal(t, "c/1", a.resolved(camp))
	assert.Equal(t, "a/2", a.resolved(assets[1]))
}

func TestArenaResolveErrors(t *testing.T) {
	t.Run("unbound", func(t *testing.T) {
		a := newArena("1", -5)
		a.reserve(collectionCampaigns)
		assert.Error(t, a.resolve([]string{"x"}))
	})

	t.Run("short response", func(t *testing.T) {
		a := newArena("1", -5)
		a.bind(a.reserve(collectionCampaigns), 2)
		assert.Error(t, a.resolve([]string{"x", "y"}))
	})
}

func TestArenaStart(t *testing.T) {
	a := newArena("1", 7)
	assert.Equal(t, "customers/1/campaigns/-1", a.name(a.reserve(collectionCampaigns)))

	for range 100 {
		start := randomStart()
		assert.LessOrEqual(t, start, int64(-1_000))
		assert.Greater(t, start, int64(-1_001_000))
	}
}
