package host

import (
	"fmt"

	"intheback.ai/internal/item"
)

// Move picks up the stack at From and puts it at To, swapping with whatever
// was there. A shift move sends it to the other side instead: player slots to
// the open view, view or grid slots back to the inventory. A Count below the
// stack's amount splits it; the split part needs an empty target.
type Move struct {
	From     Area
	FromSlot int
	To       Area
	ToSlot   int
	Shift    bool
	Count    int
}

type slotRef struct {
	get func() *item.Stack
	set func(*item.Stack)
}

func (p *Player) ref(a Area, slot int) (slotRef, error) {
	switch a {
	case AreaInventory:
		if slot < 0 || slot >= MainSlots {
			return slotRef{}, fmt.Errorf("%w: inventory %d", ErrBadSlot, slot)
		}
		return slotRef{
			get: func() *item.Stack { return p.inv.MainSlot(slot) },
			set: func(st *item.Stack) { p.inv.SetMainSlot(slot, st) },
		}, nil
	case AreaOffHand:
		return slotRef{get: p.inv.OffHand, set: p.inv.SetOffHand}, nil
	case AreaView:
		if p.view == nil {
			return slotRef{}, ErrNoView
		}
		if slot < 0 || slot >= len(p.view.Slots) {
			return slotRef{}, fmt.Errorf("%w: view %d", ErrBadSlot, slot)
		}
		v := p.view
		return slotRef{
			get: func() *item.Stack { return v.Slots[slot] },
			set: func(st *item.Stack) { v.Slots[slot] = emptyToNil(st) },
		}, nil
	case AreaGrid:
		if slot < 0 || slot >= len(p.matrix) {
			return slotRef{}, fmt.Errorf("%w: grid %d", ErrBadSlot, slot)
		}
		return slotRef{
			get: func() *item.Stack { return p.matrix[slot] },
			set: func(st *item.Stack) { p.matrix[slot] = emptyToNil(st) },
		}, nil
	}
	return slotRef{}, fmt.Errorf("%w: unknown area %q", ErrBadSlot, a)
}

func (h *Platform) Move(id string, m Move) error {
	return h.withPlayer(id, func(p *Player) error {
		src, err := p.ref(m.From, m.FromSlot)
		if err != nil {
			return err
		}
		st := src.get()
		if st == nil {
			return ErrEmptySlot
		}
		// The craft grid is out of reach while a view is open.
		if p.view != nil && (m.From == AreaGrid || (!m.Shift && m.To == AreaGrid)) {
			return fmt.Errorf("%w: craft grid unavailable with an open view", ErrCancelled)
		}

		var dst slotRef
		if m.Shift {
			dst, err = p.shiftTarget(m.From)
		} else {
			dst, err = p.ref(m.To, m.ToSlot)
		}
		if err != nil {
			return err
		}
		split := m.Count > 0 && m.Count < st.Amount
		if split && dst.get() != nil {
			return fmt.Errorf("%w: split target occupied", ErrBadSlot)
		}

		if p.view != nil {
			ev := &ClickEvent{Player: p, View: p.view, Shift: m.Shift}
			if m.Shift {
				ev.Current, ev.Clicked = st, clickedSide(m.From)
			} else {
				ev.Cursor, ev.Clicked = st, clickedSide(m.To)
			}
			for _, l := range h.snapshotListeners() {
				l.OnClick(ev)
			}
			if ev.Cancelled {
				return ErrCancelled
			}
		}

		if split {
			part := st.Clone()
			part.Amount = m.Count
			st.Amount -= m.Count
			src.set(st)
			dst.set(part)
		} else {
			prev := dst.get()
			dst.set(st)
			src.set(prev)
		}
		if m.From == AreaGrid || m.To == AreaGrid || m.Shift {
			h.prepareLocked(p)
		}
		return nil
	})
}

// clickedSide folds areas into the two sides of an open view.
func clickedSide(a Area) Area {
	if a == AreaView {
		return AreaView
	}
	return AreaInventory
}

func (p *Player) shiftTarget(from Area) (slotRef, error) {
	switch from {
	case AreaInventory, AreaOffHand:
		if p.view == nil {
			return slotRef{}, ErrNoView
		}
		for i, st := range p.view.Slots {
			if st == nil {
				return p.ref(AreaView, i)
			}
		}
		return slotRef{}, ErrInventoryFull
	default:
		for i := 0; i < MainSlots; i++ {
			if p.inv.MainSlot(i) == nil {
				return p.ref(AreaInventory, i)
			}
		}
		return slotRef{}, ErrInventoryFull
	}
}
