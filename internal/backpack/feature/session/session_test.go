package session

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/item"
)

type fakeHolder struct {
	main    []*item.Stack
	offHand *item.Stack
}

func (h *fakeHolder) MainSlots() int             { return len(h.main) }
func (h *fakeHolder) MainSlot(i int) *item.Stack { return h.main[i] }
func (h *fakeHolder) OffHand() *item.Stack       { return h.offHand }

func TestTracker_BeginEnd(t *testing.T) {
	st := store.New(store.Config{})
	tr := NewTracker(NewMemStore(), nil)
	bp := st.Create(0)

	tr.Begin("A", bp)
	if !tr.Active("A") {
		t.Fatalf("expected active session")
	}
	snap, ok := tr.End("A")
	if !ok || !model.SameLogical(snap, bp) {
		t.Fatalf("End returned %v %#v", ok, snap)
	}
	if snap == bp {
		t.Fatalf("snapshot should be a copy")
	}
	if _, ok := tr.End("A"); ok {
		t.Fatalf("second End without Begin should return nothing")
	}
}

func TestTracker_SnapshotIsolatedFromLaterMutation(t *testing.T) {
	st := store.New(store.Config{})
	tr := NewTracker(nil, nil)
	bp := st.Create(0)
	tr.Begin("A", bp)
	bp.Meta.DisplayName = "renamed"

	snap, _ := tr.End("A")
	if snap.Meta.DisplayName == "renamed" {
		t.Fatalf("snapshot tracked the live item")
	}
}

func TestTracker_LastWriteWins(t *testing.T) {
	var logs bytes.Buffer
	st := store.New(store.Config{})
	tr := NewTracker(NewMemStore(), log.New(&logs, "", 0))
	first, second := st.Create(0), st.Create(1)

	if tr.Begin("A", first) {
		t.Fatalf("first Begin should not report a replacement")
	}
	if !tr.Begin("A", second) {
		t.Fatalf("second Begin should report a replacement")
	}
	snap, _ := tr.End("A")
	if model.ID(snap) != model.ID(second) {
		t.Fatalf("expected latest snapshot to win")
	}
	if !strings.Contains(logs.String(), model.ID(first)) {
		t.Fatalf("expected discarded session to be logged: %q", logs.String())
	}
}

func TestTracker_Close(t *testing.T) {
	st := store.New(store.Config{})
	tr := NewTracker(nil, nil)
	tr.Begin("A", st.Create(0))
	tr.Begin("B", st.Create(0))
	tr.Close()
	if tr.Len() != 0 || tr.Active("A") {
		t.Fatalf("Close should drop all sessions")
	}
}

func TestTracker_ConcurrentActors(t *testing.T) {
	st := store.New(store.Config{})
	tr := NewTracker(NewMemStore(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := fmt.Sprintf("actor-%d", i)
			bp := st.Create(i % 4)
			for j := 0; j < 50; j++ {
				tr.Begin(actor, bp)
				if snap, ok := tr.End(actor); !ok || model.ID(snap) != model.ID(bp) {
					t.Errorf("%s: wrong snapshot", actor)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	if tr.Len() != 0 {
		t.Fatalf("expected no open sessions, got %d", tr.Len())
	}
}

func TestLocate_OrderAndStructuralMatch(t *testing.T) {
	st := store.New(store.Config{})
	bp := st.Create(1)
	other := st.Create(1)

	h := &fakeHolder{main: make([]*item.Stack, 36)}
	h.main[2] = other
	h.main[7] = bp.Clone()
	h.main[20] = bp.Clone()
	h.offHand = bp.Clone()

	got, loc, ok := Locate(h, bp)
	if !ok || loc.Slot != 7 || loc.OffHand || got != h.main[7] {
		t.Fatalf("expected first main slot match, got %v %+v", ok, loc)
	}

	h.main[7], h.main[20] = nil, nil
	got, loc, ok = Locate(h, bp)
	if !ok || !loc.OffHand || got != h.offHand {
		t.Fatalf("expected off-hand match, got %v %+v", ok, loc)
	}

	h.offHand = nil
	if _, _, ok := Locate(h, bp); ok {
		t.Fatalf("expected no match")
	}
}

func TestLocate_EditedCopyDoesNotMatch(t *testing.T) {
	st := store.New(store.Config{})
	bp := st.Create(0)
	snap := bp.Clone()
	st.Save(bp, []*item.Stack{item.New("STONE", 1)})

	h := &fakeHolder{main: []*item.Stack{bp}}
	if _, _, ok := Locate(h, snap); ok {
		t.Fatalf("backpack with different stored contents should not match")
	}
}
