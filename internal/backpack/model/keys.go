package model

const Namespace = "minecraft-backpack"

// Tag keys, stored as "<namespace>:<key>" in the item's tag container.
var (
	KeyBackpack      = key("backpack")
	KeyBackpackID    = key("backpack_id")
	KeyBackpackLevel = key("backpack_level")
	KeyInventory     = key("inventory")
	KeyUpgrade       = key("upgrade")
	KeyUpgradeLevel  = key("upgrade_level")
)

func key(name string) string { return Namespace + ":" + name }
