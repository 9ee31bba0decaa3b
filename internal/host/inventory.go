package host

import "intheback.ai/internal/item"

const (
	MainSlots   = 36
	HotbarSlots = 9
)

// Inventory is a player's own storage: 36 main slots (the first nine are the
// hotbar) and an off-hand slot.
type Inventory struct {
	main    [MainSlots]*item.Stack
	offHand *item.Stack
	held    int
}

func (inv *Inventory) MainSlots() int { return MainSlots }

func (inv *Inventory) MainSlot(i int) *item.Stack {
	if i < 0 || i >= MainSlots {
		return nil
	}
	return inv.main[i]
}

func (inv *Inventory) SetMainSlot(i int, st *item.Stack) {
	if i < 0 || i >= MainSlots {
		return
	}
	inv.main[i] = emptyToNil(st)
}

func (inv *Inventory) OffHand() *item.Stack      { return inv.offHand }
func (inv *Inventory) SetOffHand(st *item.Stack) { inv.offHand = emptyToNil(st) }
func (inv *Inventory) Held() int                 { return inv.held }
func (inv *Inventory) MainHand() *item.Stack     { return inv.main[inv.held] }

func (inv *Inventory) SetHeld(slot int) bool {
	if slot < 0 || slot >= HotbarSlots {
		return false
	}
	inv.held = slot
	return true
}

// Add puts st into the first empty main slot and reports the slot, or -1.
func (inv *Inventory) Add(st *item.Stack) int {
	if st.IsEmpty() {
		return -1
	}
	for i := range inv.main {
		if inv.main[i] == nil {
			inv.main[i] = st
			return i
		}
	}
	return -1
}

func (inv *Inventory) Main() []*item.Stack { return item.CloneAll(inv.main[:]) }

func emptyToNil(st *item.Stack) *item.Stack {
	if st.IsEmpty() {
		return nil
	}
	return st
}

// View is a container view presented to a player.
type View struct {
	Title string
	Slots []*item.Stack
}

// Contents returns a copy of the view's slots.
func (v *View) Contents() []*item.Stack { return item.CloneAll(v.Slots) }
