package rules

import (
	"github.com/rustweek/royale/internal/models"
)

// requiredCodes is the fixed set every table must cover
var requiredCodes = []models.RuleCode{
	models.RuleCodeKill,
	models.RuleCodeDead,
	models.RuleCodeJoke,
	models.RuleCodeNPC,
	models.RuleCodeEnt,
	models.RuleCodeBruh,
	models.RuleCodeWhy,
}

// defaultDeltas is the built-in rule table used when the configured one
// is missing or incomplete
var defaultDeltas = map[models.RuleCode]int{
	models.RuleCodeKill: 5,
	models.RuleCodeDead: -3,
	models.RuleCodeJoke: -1,
	models.RuleCodeNPC:  1,
	models.RuleCodeEnt:  10,
	models.RuleCodeBruh: -2,
	models.RuleCodeWhy:  3,
}

// Table maps scoring actions to point deltas. It is immutable after
// construction, so lookups need no locking.
type Table struct {
	deltas map[models.RuleCode]int
}

// Default returns the built-in seven-entry table
func Default() *Table {
	return &Table{deltas: copyDeltas(defaultDeltas)}
}

// New validates a configured rule table. An empty or incomplete table is
// replaced wholesale by the built-in default; the second return value
// reports the replacement so the caller can log it. This is never fatal.
func New(deltas map[models.RuleCode]int) (*Table, bool) {
	if len(deltas) == 0 {
		return Default(), true
	}

	for _, code := range requiredCodes {
		if _, ok := deltas[code]; !ok {
			return Default(), true
		}
	}

	return &Table{deltas: copyDeltas(deltas)}, false
}

// Lookup returns the point delta for a scoring action
func (t *Table) Lookup(code models.RuleCode) (int, bool) {
	delta, ok := t.deltas[code]
	return delta, ok
}

// All returns a copy of the table for display
func (t *Table) All() map[models.RuleCode]int {
	return copyDeltas(t.deltas)
}

func copyDeltas(src map[models.RuleCode]int) map[models.RuleCode]int {
	out := make(map[models.RuleCode]int, len(src))
	for code, delta := range src {
		out[code] = delta
	}
	return out
}
