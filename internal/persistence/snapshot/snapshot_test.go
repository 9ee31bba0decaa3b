package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
)

func TestSnapshot_RoundTripKeepsBackpackContents(t *testing.T) {
	st := store.New(store.Config{})
	bp := st.Create(2)
	in := make([]*item.Stack, 45)
	in[3] = item.New("BREAD", 7)
	in[44] = st.CreateToken(3)
	st.Save(bp, in)

	main := make([]*item.Stack, host.MainSlots)
	main[0] = item.New("STONE", 32)
	main[35] = bp
	saved := []host.Saved{
		{ID: "P1", Name: "alex", Held: 4, Main: main, OffHand: st.Create(0)},
		{ID: "P2", Name: "blair", Main: make([]*item.Stack, host.MainSlots)},
	}

	dir := t.TempDir()
	path := PathFor(dir, 1234)
	if err := WriteSnapshot(path, FromHost(1234, "digest", saved)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.Header.UnixMs != 1234 || snap.Header.Players != 2 || snap.RecipesDigest != "digest" {
		t.Fatalf("header: %+v digest=%q", snap.Header, snap.RecipesDigest)
	}
	if n := len(snap.Backpacks()); n != 2 {
		t.Fatalf("backpacks: got %d want 2", n)
	}

	back := snap.ToHost()
	if len(back) != 2 || back[0].ID != "P1" || back[0].Held != 4 || back[1].OffHand != nil {
		t.Fatalf("players: %+v", back)
	}
	got := back[0].Main[35]
	if !model.SameLogical(got, bp) || model.ID(got) != model.ID(bp) {
		t.Fatalf("backpack changed across snapshot")
	}
	contents := st.Load(got)
	if contents[3] == nil || contents[3].Material != "BREAD" || contents[3].Amount != 7 {
		t.Fatalf("contents[3]: %+v", contents[3])
	}
	if model.TokenLevel(contents[44]) != 3 {
		t.Fatalf("contents[44]: %+v", contents[44])
	}
	if back[0].Main[0].Material != "STONE" || back[0].Main[1] != nil {
		t.Fatalf("main slots: %+v %+v", back[0].Main[0], back[0].Main[1])
	}
	if !model.IsContainer(back[0].OffHand) {
		t.Fatalf("off-hand backpack lost")
	}
}

func TestSnapshot_ListAndLatest(t *testing.T) {
	dir := t.TempDir()
	for _, ms := range []int64{30, 1000, 200} {
		if err := WriteSnapshot(PathFor(dir, ms), FromHost(ms, "", nil)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	paths, err := List(dir)
	if err != nil || len(paths) != 3 {
		t.Fatalf("List: %v %v", paths, err)
	}
	if filepath.Base(paths[0]) != "30.snap.zst" {
		t.Fatalf("order: %v", paths)
	}
	latest, err := Latest(dir)
	if err != nil || filepath.Base(latest) != "1000.snap.zst" {
		t.Fatalf("Latest: %q %v", latest, err)
	}
	if p, err := Latest(filepath.Join(dir, "missing")); err != nil || p != "" {
		t.Fatalf("Latest on missing dir: %q %v", p, err)
	}
}

func TestReadSnapshot_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected error")
	}
}
