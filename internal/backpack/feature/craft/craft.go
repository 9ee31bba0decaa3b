// Package craft decides what a crafting grid may produce once a backpack or
// upgrade token is in it.
package craft

import (
	"intheback.ai/internal/backpack/feature/upgrade"
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/item"
)

// Veto reasons.
const (
	ReasonWrongCount       = "wrong_count"
	ReasonExtraIngredients = "extra_ingredients"
	ReasonLevelMismatch    = "level_mismatch"
	ReasonMaxLevel         = "max_level"
	ReasonUpgradeFailed    = "upgrade_failed"
)

// Decision is the validator's verdict for one grid. When Interfere is false
// the host's own result stands. Otherwise Result replaces it; a nil Result is
// a veto.
type Decision struct {
	Interfere bool
	Result    *item.Stack
	Reason    string
}

func (d Decision) Vetoed() bool { return d.Interfere && d.Result == nil }

type Validator struct {
	store  *store.Store
	engine *upgrade.Engine
}

func New(st *store.Store, engine *upgrade.Engine) *Validator {
	return &Validator{store: st, engine: engine}
}

// Prepare inspects grid. The only non-default result it produces is one
// container plus the token for the next level with nothing else in the grid.
func (v *Validator) Prepare(grid []*item.Stack) Decision {
	var (
		container, token *item.Stack
		containers       int
		tokens           int
		others           int
	)
	for _, st := range grid {
		if st.IsEmpty() {
			continue
		}
		switch model.Classify(st).(type) {
		case model.Container:
			containers++
			container = st
		case model.UpgradeToken:
			tokens++
			token = st
		default:
			others++
		}
	}
	if containers == 0 && tokens == 0 {
		return Decision{}
	}
	switch {
	case others > 0:
		return veto(ReasonExtraIngredients)
	case containers != 1 || tokens != 1:
		return veto(ReasonWrongCount)
	case model.LevelOf(container) >= int(model.MaxLevel):
		return veto(ReasonMaxLevel)
	case !upgrade.CanApply(container, token):
		return veto(ReasonLevelMismatch)
	}

	contents := v.store.Load(container)
	result := container.Clone()
	result.Amount = 1
	if !v.engine.Upgrade(result) {
		return veto(ReasonUpgradeFailed)
	}
	v.store.Save(result, contents)
	return Decision{Interfere: true, Result: result}
}

func veto(reason string) Decision {
	return Decision{Interfere: true, Reason: reason}
}
