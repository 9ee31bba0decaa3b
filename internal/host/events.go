package host

import "intheback.ai/internal/item"

type Action string

const (
	RightClickAir   Action = "RIGHT_CLICK_AIR"
	RightClickBlock Action = "RIGHT_CLICK_BLOCK"
	LeftClickAir    Action = "LEFT_CLICK_AIR"
)

type Area string

const (
	AreaInventory Area = "inventory"
	AreaOffHand   Area = "offhand"
	AreaView      Area = "view"
	AreaGrid      Area = "grid"
)

type InteractEvent struct {
	Player    *Player
	Action    Action
	Cancelled bool
}

type CloseEvent struct {
	Player *Player
	View   *View
}

// ClickEvent fires for every move while a view is open. Cursor is the stack
// being placed by a plain move, Current the stack being shift-moved, and
// Clicked the area the click landed in.
type ClickEvent struct {
	Player    *Player
	View      *View
	Cursor    *item.Stack
	Current   *item.Stack
	Clicked   Area
	Shift     bool
	Cancelled bool
}

// PrepareCraftEvent fires whenever a craft grid changes. Result starts as the
// host's own recipe match; listeners may replace it or set it to nil.
type PrepareCraftEvent struct {
	Player *Player
	Matrix []*item.Stack
	Result *item.Stack
}

// Listener receives host notifications. Calls for one player never overlap.
type Listener interface {
	OnInteract(*InteractEvent)
	OnClose(*CloseEvent)
	OnClick(*ClickEvent)
	OnPrepareCraft(*PrepareCraftEvent)
}
