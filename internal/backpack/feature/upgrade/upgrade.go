// Package upgrade moves a backpack one level up while keeping its contents.
package upgrade

import (
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/item"
)

type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine { return &Engine{store: st} }

// Upgrade advances st by exactly one level in place. It returns false and
// leaves st untouched for non-containers and containers already at max level.
func (e *Engine) Upgrade(st *item.Stack) bool {
	c, ok := model.Classify(st).(model.Container)
	if !ok || c.Level >= model.MaxLevel {
		return false
	}
	contents := e.store.Load(st)

	next := c.Level + 1
	model.ApplyContainerDisplay(st, next)
	st.Meta.Tags.SetInt32(model.KeyBackpackLevel, int32(next))

	// Capacity only grows with level, so this save pads with empty slots.
	e.store.Save(st, contents)
	return true
}

// CanApply reports whether token promotes container from its current level.
func CanApply(container, token *item.Stack) bool {
	c, ok := model.Classify(container).(model.Container)
	if !ok {
		return false
	}
	t, ok := model.Classify(token).(model.UpgradeToken)
	if !ok || !t.Level.Valid() || t.Level < model.LevelMedium {
		return false
	}
	return t.Level == c.Level+1
}
