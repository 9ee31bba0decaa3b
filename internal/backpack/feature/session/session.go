// Package session remembers which backpack each actor has open so the edit
// can be written back to the right item when the view closes.
package session

import (
	"io"
	"log"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/item"
)

type Tracker struct {
	store Store
	log   *log.Logger
}

func NewTracker(store Store, logger *log.Logger) *Tracker {
	if store == nil {
		store = NewMemStore()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Tracker{store: store, log: logger}
}

// Begin opens a session for actor holding a copy of snapshot. An unclosed
// earlier session is discarded (last write wins); the return value reports
// whether that happened.
func (t *Tracker) Begin(actor string, snapshot *item.Stack) bool {
	prev, replaced := t.store.Swap(actor, snapshot.Clone())
	if replaced {
		t.log.Printf("session: actor=%s reopened before close; discarded pending edit for backpack %s", actor, model.ID(prev))
	}
	return replaced
}

// End closes actor's session and returns the snapshot taken at open time.
func (t *Tracker) End(actor string) (*item.Stack, bool) {
	return t.store.LoadAndDelete(actor)
}

func (t *Tracker) Active(actor string) bool {
	_, ok := t.store.Load(actor)
	return ok
}

func (t *Tracker) Len() int { return t.store.Len() }

// Close drops every open session. Pending edits are lost.
func (t *Tracker) Close() {
	if n := t.store.Clear(); n > 0 {
		t.log.Printf("session: shutdown dropped %d open sessions", n)
	}
}

// Holder is the part of an actor's inventory searched on close.
type Holder interface {
	MainSlots() int
	MainSlot(i int) *item.Stack
	OffHand() *item.Stack
}

type Location struct {
	Slot    int
	OffHand bool
}

// Locate finds the held item that is logically the same backpack as
// snapshot: main inventory in slot order first, then the off-hand.
func Locate(h Holder, snapshot *item.Stack) (*item.Stack, Location, bool) {
	for i := 0; i < h.MainSlots(); i++ {
		if st := h.MainSlot(i); model.SameLogical(st, snapshot) {
			return st, Location{Slot: i}, true
		}
	}
	if st := h.OffHand(); model.SameLogical(st, snapshot) {
		return st, Location{Slot: -1, OffHand: true}, true
	}
	return nil, Location{Slot: -1}, false
}
