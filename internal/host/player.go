package host

import (
	"sync"

	"intheback.ai/internal/item"
)

// Player is one connected actor. The platform holds mu while it dispatches
// events for the player, so listeners may use these methods freely.
type Player struct {
	mu sync.Mutex

	host *Platform
	id   string
	name string

	inv    Inventory
	view   *View
	matrix [GridSize * GridSize]*item.Stack
	result *item.Stack
}

func (p *Player) ID() string            { return p.id }
func (p *Player) Name() string          { return p.name }
func (p *Player) Inventory() *Inventory { return &p.inv }
func (p *Player) View() *View           { return p.view }

// CloseView closes the open view, if any, firing the close event.
func (p *Player) CloseView() {
	if p.view != nil {
		p.host.closeLocked(p)
	}
}

// OpenView presents a container view, closing any view already open.
func (p *Player) OpenView(title string, slots []*item.Stack) *View {
	p.CloseView()
	v := &View{Title: title, Slots: make([]*item.Stack, len(slots))}
	copy(v.Slots, slots)
	p.view = v
	return v
}
