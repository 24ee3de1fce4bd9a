package rules

import (
	"testing"

	"github.com/rustweek/royale/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithValidTable(t *testing.T) {
	table, replaced := New(map[models.RuleCode]int{
		models.RuleCodeKill: 7,
		models.RuleCodeDead: -4,
		models.RuleCodeJoke: -2,
		models.RuleCodeNPC:  2,
		models.RuleCodeEnt:  12,
		models.RuleCodeBruh: -3,
		models.RuleCodeWhy:  4,
	})
	require.False(t, replaced)

	delta, ok := table.Lookup(models.RuleCodeKill)
	require.True(t, ok)
	assert.Equal(t, 7, delta)
}

func TestNewWithEmptyTableFallsBackToDefault(t *testing.T) {
	table, replaced := New(nil)
	require.True(t, replaced)

	delta, ok := table.Lookup(models.RuleCodeDead)
	require.True(t, ok)
	assert.Equal(t, -3, delta)
}

func TestNewWithIncompleteTableFallsBackWholesale(t *testing.T) {
	// A partial table must not be merged with the default
	table, replaced := New(map[models.RuleCode]int{
		models.RuleCodeKill: 100,
	})
	require.True(t, replaced)

	delta, ok := table.Lookup(models.RuleCodeKill)
	require.True(t, ok)
	assert.Equal(t, 5, delta)
}

func TestDefaultCoversAllCodes(t *testing.T) {
	table := Default()

	for _, code := range requiredCodes {
		_, ok := table.Lookup(code)
		assert.True(t, ok, "missing code %s", code)
	}
}

func TestLookupUnknownCode(t *testing.T) {
	table := Default()

	_, ok := table.Lookup(models.RuleCode("NOPE"))
	assert.False(t, ok)
}

func TestAllReturnsACopy(t *testing.T) {
	table := Default()

	all := table.All()
	all[models.RuleCodeKill] = 999

	delta, _ := table.Lookup(models.RuleCodeKill)
	assert.Equal(t, 5, delta)
}
