// Package guard keeps backpacks out of open backpack views.
package guard

import (
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/item"
)

type Click struct {
	ViewTitle string
	// Cursor is the stack being placed, Current the stack being shift-moved.
	Cursor  *item.Stack
	Current *item.Stack
	// InView is true when the click landed in the open view rather than the
	// player's own inventory.
	InView bool
	Shift  bool
}

// Allow reports whether the click may proceed. Taking a backpack out of a
// backpack view is fine; putting one in is not.
func Allow(c Click) bool {
	if c.ViewTitle != model.ViewTitle {
		return true
	}
	if c.InView && model.IsContainer(c.Cursor) {
		return false
	}
	if c.Shift && !c.InView && model.IsContainer(c.Current) {
		return false
	}
	return true
}
