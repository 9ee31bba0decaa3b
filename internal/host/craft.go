package host

import (
	"fmt"
	"slices"

	"intheback.ai/internal/item"
)

func (h *Platform) defaultResult(matrix []*item.Stack) *item.Stack {
	h.mu.RLock()
	recipes := slices.Clone(h.recipes)
	h.mu.RUnlock()
	for _, r := range recipes {
		if r.Matches(matrix) {
			return r.Result()
		}
	}
	return nil
}

func (h *Platform) prepareLocked(p *Player) {
	ev := &PrepareCraftEvent{Player: p, Matrix: p.matrix[:]}
	ev.Result = h.defaultResult(ev.Matrix)
	for _, l := range h.snapshotListeners() {
		l.OnPrepareCraft(ev)
	}
	p.result = emptyToNil(ev.Result)
}

// Craft takes the prepared result: one of every ingredient is consumed and the
// result goes to the first free inventory slot.
func (h *Platform) Craft(id string) error {
	return h.withPlayer(id, func(p *Player) error {
		if p.result == nil {
			return ErrNoResult
		}
		if p.view != nil {
			return fmt.Errorf("%w: craft grid unavailable with an open view", ErrCancelled)
		}
		if p.inv.Add(p.result) < 0 {
			return ErrInventoryFull
		}
		for i, st := range p.matrix {
			if st == nil {
				continue
			}
			st.Amount--
			if st.Amount <= 0 {
				p.matrix[i] = nil
			}
		}
		p.result = nil
		h.prepareLocked(p)
		return nil
	})
}
