package host

import (
	"sort"

	"intheback.ai/internal/item"
)

// State is a copy of everything a player can see.
type State struct {
	PlayerID string
	Name     string
	Main     []*item.Stack
	OffHand  *item.Stack
	Held     int
	View     *View
	Grid     []*item.Stack
	Result   *item.Stack
}

func (h *Platform) State(id string) (State, error) {
	var s State
	err := h.withPlayer(id, func(p *Player) error {
		s = stateLocked(p)
		return nil
	})
	return s, err
}

func stateLocked(p *Player) State {
	s := State{
		PlayerID: p.id,
		Name:     p.name,
		Main:     p.inv.Main(),
		OffHand:  p.inv.offHand.Clone(),
		Held:     p.inv.held,
		Grid:     item.CloneAll(p.matrix[:]),
		Result:   p.result.Clone(),
	}
	if p.view != nil {
		s.View = &View{Title: p.view.Title, Slots: p.view.Contents()}
	}
	return s
}

// Saved is the durable part of a player: what they carry.
type Saved struct {
	ID      string
	Name    string
	Main    []*item.Stack
	OffHand *item.Stack
	Held    int
}

// Export copies every player's carried items, ordered by id. Open views and
// craft grids are not included.
func (h *Platform) Export() []Saved {
	h.mu.RLock()
	players := make([]*Player, 0, len(h.players))
	for _, p := range h.players {
		players = append(players, p)
	}
	h.mu.RUnlock()
	sort.Slice(players, func(i, j int) bool { return players[i].id < players[j].id })

	out := make([]Saved, 0, len(players))
	for _, p := range players {
		p.mu.Lock()
		out = append(out, Saved{
			ID:      p.id,
			Name:    p.name,
			Main:    p.inv.Main(),
			OffHand: p.inv.offHand.Clone(),
			Held:    p.inv.held,
		})
		p.mu.Unlock()
	}
	return out
}

// Import replaces the platform's players with saved ones.
func (h *Platform) Import(saved []Saved) {
	players := make(map[string]*Player, len(saved))
	for _, s := range saved {
		p := &Player{host: h, id: s.ID, name: s.Name}
		for i, st := range s.Main {
			p.inv.SetMainSlot(i, st.Clone())
		}
		p.inv.SetOffHand(s.OffHand.Clone())
		p.inv.SetHeld(s.Held)
		players[s.ID] = p
	}
	h.mu.Lock()
	h.players = players
	h.mu.Unlock()
}
