// Package host is an in-memory stand-in for the game server a plugin runs
// inside: players and their inventories, container views, craft grids with
// shaped recipes, and event dispatch to registered listeners.
package host

import (
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"sort"
	"sync"

	"intheback.ai/internal/item"
)

var (
	ErrNoPlayer      = errors.New("no such player")
	ErrNoView        = errors.New("no open view")
	ErrBadSlot       = errors.New("bad slot")
	ErrEmptySlot     = errors.New("empty slot")
	ErrCancelled     = errors.New("cancelled by listener")
	ErrNoResult      = errors.New("nothing to craft")
	ErrInventoryFull = errors.New("inventory full")
)

const maxStack = 64

type Config struct {
	Logger       *log.Logger
	StarterItems map[string]int
}

type Platform struct {
	log     *log.Logger
	starter map[string]int

	mu        sync.RWMutex
	players   map[string]*Player
	listeners []Listener
	recipes   []Recipe
}

func New(cfg Config) *Platform {
	h := &Platform{
		log:     cfg.Logger,
		starter: cfg.StarterItems,
		players: map[string]*Player{},
	}
	if h.log == nil {
		h.log = log.New(io.Discard, "", 0)
	}
	return h
}

func (h *Platform) Register(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *Platform) Unregister(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = slices.DeleteFunc(h.listeners, func(x Listener) bool { return x == l })
}

func (h *Platform) AddRecipe(r Recipe) error {
	if err := r.validate(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, old := range h.recipes {
		if old.Key == r.Key {
			return fmt.Errorf("recipe %s: already registered", r.Key)
		}
	}
	h.recipes = append(h.recipes, r)
	return nil
}

func (h *Platform) RemoveRecipe(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.recipes)
	h.recipes = slices.DeleteFunc(h.recipes, func(r Recipe) bool { return r.Key == key })
	return len(h.recipes) != n
}

func (h *Platform) RecipeKeys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.recipes))
	for _, r := range h.recipes {
		out = append(out, r.Key)
	}
	return out
}

func (h *Platform) snapshotListeners() []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.listeners)
}

// Join returns the player with id, creating it (with starter items) when it
// does not exist yet. The bool reports creation.
func (h *Platform) Join(id, name string) (*Player, bool) {
	h.mu.Lock()
	if p, ok := h.players[id]; ok {
		// p.mu is never taken under h.mu; dispatch locks them the other way.
		h.mu.Unlock()
		if name != "" {
			p.mu.Lock()
			p.name = name
			p.mu.Unlock()
		}
		return p, false
	}
	defer h.mu.Unlock()
	p := &Player{host: h, id: id, name: name}
	keys := make([]string, 0, len(h.starter))
	for k := range h.starter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, mat := range keys {
		for n := h.starter[mat]; n > 0; n -= maxStack {
			p.inv.Add(item.New(mat, min(n, maxStack)))
		}
	}
	h.players[id] = p
	return p, true
}

// Leave closes the player's view and returns craft grid contents to the
// inventory. The player's items stay on the platform.
func (h *Platform) Leave(id string) {
	p, err := h.player(id)
	if err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view != nil {
		h.closeLocked(p)
	}
	for i, st := range p.matrix {
		if st == nil {
			continue
		}
		if p.inv.Add(st) < 0 {
			h.log.Printf("host: %s left with full inventory; dropped %s x%d", p.name, st.Material, st.Amount)
		}
		p.matrix[i] = nil
	}
	p.result = nil
}

func (h *Platform) player(id string) (*Player, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPlayer, id)
	}
	return p, nil
}

// Player returns the player with id, or nil.
func (h *Platform) Player(id string) *Player {
	p, _ := h.player(id)
	return p
}

// Do runs fn while holding the player's lock.
func (h *Platform) Do(id string, fn func(*Player)) error {
	p, err := h.player(id)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
	return nil
}

func (h *Platform) Select(id string, slot int) error {
	return h.withPlayer(id, func(p *Player) error {
		if !p.inv.SetHeld(slot) {
			return fmt.Errorf("%w: hotbar %d", ErrBadSlot, slot)
		}
		return nil
	})
}

// Interact delivers a use of the main-hand item.
func (h *Platform) Interact(id string, action Action) error {
	return h.withPlayer(id, func(p *Player) error {
		ev := &InteractEvent{Player: p, Action: action}
		for _, l := range h.snapshotListeners() {
			l.OnInteract(ev)
		}
		return nil
	})
}

func (h *Platform) CloseView(id string) error {
	return h.withPlayer(id, func(p *Player) error {
		if p.view == nil {
			return ErrNoView
		}
		h.closeLocked(p)
		return nil
	})
}

func (h *Platform) closeLocked(p *Player) {
	v := p.view
	p.view = nil
	ev := &CloseEvent{Player: p, View: v}
	for _, l := range h.snapshotListeners() {
		l.OnClose(ev)
	}
}

func (h *Platform) withPlayer(id string, fn func(*Player) error) error {
	p, err := h.player(id)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p)
}
