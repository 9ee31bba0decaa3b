package model

import "intheback.ai/internal/item"

// SameLogical is the equality used to find "the same backpack" again after the
// host has handed out copies: both must be containers with the same material,
// display name, lore and tags (id, level and stored contents included).
// Pointer identity and stack amount do not matter.
func SameLogical(a, b *item.Stack) bool {
	if !IsContainer(a) || !IsContainer(b) {
		return false
	}
	return a.Material == b.Material && a.Meta.Equal(b.Meta)
}
