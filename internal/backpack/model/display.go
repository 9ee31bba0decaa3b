package model

import (
	"fmt"

	"intheback.ai/internal/item"
)

const (
	// ViewTitle is the title of an open backpack view.
	ViewTitle = "Backpack"

	signature = "§8§oIn The Back"
)

var containerMaterials = [...]string{
	"CHEST",
	"WAXED_COPPER_CHEST",
	"WAXED_WEATHERED_COPPER_CHEST",
	"WAXED_OXIDIZED_COPPER_CHEST",
}

func MaterialForLevel(l Level) string {
	if !l.Valid() {
		return containerMaterials[LevelSmall]
	}
	return containerMaterials[l]
}

// ApplyContainerDisplay sets material, name and lore for a container at l.
// Tags are left alone.
func ApplyContainerDisplay(s *item.Stack, l Level) {
	s.Material = MaterialForLevel(l)
	m := s.EnsureMeta()
	m.DisplayName = "§6" + l.Name() + " Backpack"
	m.Lore = []string{
		"§7Right-click to open your backpack",
		"§7Items are stored persistently in the item",
		"§7Can be given to other players",
		fmt.Sprintf("§7Size: %d slots (%d rows)", l.Capacity(), l.Rows()),
		signature,
	}
}

type tokenDisplay struct {
	material string
	from     Level
}

var tokens = map[Level]tokenDisplay{
	LevelMedium: {material: "IRON_INGOT", from: LevelSmall},
	LevelLarge:  {material: "GOLD_INGOT", from: LevelMedium},
	LevelHuge:   {material: "DIAMOND", from: LevelLarge},
}

// TokenMaterial returns the material for a token targeting l, or "".
func TokenMaterial(l Level) string { return tokens[l].material }

// ApplyTokenDisplay sets material, name and lore for a token targeting l.
// It reports false for levels no token exists for.
func ApplyTokenDisplay(s *item.Stack, l Level) bool {
	d, ok := tokens[l]
	if !ok {
		return false
	}
	s.Material = d.material
	m := s.EnsureMeta()
	m.DisplayName = "§6" + l.Name() + " Backpack Upgrade"
	m.Lore = []string{
		fmt.Sprintf("§7Upgrade a %s Backpack to %s (%d rows)", d.from.Name(), l.Name(), l.Rows()),
		"§7Combine with a backpack in a crafting table to upgrade it",
		signature,
	}
	return true
}
