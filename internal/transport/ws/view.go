package ws

import (
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
	"intheback.ai/internal/protocol"
)

func stateMsg(st *store.Store, ackFor string, s host.State) protocol.StateMsg {
	m := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		AckFor:          ackFor,
		Inventory:       itemViews(st, s.Main),
		OffHand:         itemView(st, s.OffHand),
		Held:            s.Held,
		Grid:            itemViews(st, s.Grid),
		Result:          itemView(st, s.Result),
	}
	if s.View != nil {
		m.View = &protocol.ViewState{Title: s.View.Title, Slots: itemViews(st, s.View.Slots)}
	}
	return m
}

func itemViews(st *store.Store, stacks []*item.Stack) []*protocol.ItemView {
	out := make([]*protocol.ItemView, len(stacks))
	for i, s := range stacks {
		out[i] = itemView(st, s)
	}
	return out
}

func itemView(st *store.Store, s *item.Stack) *protocol.ItemView {
	if s.IsEmpty() {
		return nil
	}
	v := &protocol.ItemView{Material: s.Material, Amount: s.Amount}
	if s.Meta != nil {
		v.Name = s.Meta.DisplayName
		v.Lore = append([]string(nil), s.Meta.Lore...)
	}
	switch k := model.Classify(s).(type) {
	case model.Container:
		used := 0
		for _, in := range st.Load(s) {
			if in != nil {
				used++
			}
		}
		v.Backpack = &protocol.BackpackView{ID: k.ID, Level: int(k.Level), Slots: k.Level.Capacity(), Used: used}
	case model.UpgradeToken:
		if k.Level.Valid() {
			v.UpgradeLevel = int(k.Level)
		}
	}
	return v
}
