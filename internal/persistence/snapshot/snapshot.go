package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
)

const Version = 1

type Header struct {
	Version int   `json:"version"`
	UnixMs  int64 `json:"unix_ms"`
	Players int   `json:"players"`
}

// SnapshotV1 is everything the host needs to come back after a restart: each
// player's carried items. Backpack contents live inside the items' tags.
type SnapshotV1 struct {
	Header Header `json:"header"`

	RecipesDigest string `json:"recipes_digest,omitempty"`

	Players []PlayerV1 `json:"players"`
}

type PlayerV1 struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Held    int         `json:"held"`
	Main    []SlotV1    `json:"main"`
	OffHand *item.Stack `json:"off_hand,omitempty"`
}

// SlotV1 is one occupied slot. Empty slots are not written.
type SlotV1 struct {
	Index int        `json:"index"`
	Stack item.Stack `json:"stack"`
}

func FromHost(unixMs int64, recipesDigest string, saved []host.Saved) SnapshotV1 {
	snap := SnapshotV1{
		Header:        Header{Version: Version, UnixMs: unixMs, Players: len(saved)},
		RecipesDigest: recipesDigest,
		Players:       make([]PlayerV1, 0, len(saved)),
	}
	for _, s := range saved {
		p := PlayerV1{ID: s.ID, Name: s.Name, Held: s.Held, OffHand: s.OffHand.Clone()}
		for i, st := range s.Main {
			if st.IsEmpty() {
				continue
			}
			p.Main = append(p.Main, SlotV1{Index: i, Stack: *st.Clone()})
		}
		snap.Players = append(snap.Players, p)
	}
	return snap
}

func (snap SnapshotV1) ToHost() []host.Saved {
	out := make([]host.Saved, 0, len(snap.Players))
	for _, p := range snap.Players {
		s := host.Saved{ID: p.ID, Name: p.Name, Held: p.Held, OffHand: p.OffHand.Clone()}
		s.Main = make([]*item.Stack, host.MainSlots)
		for _, slot := range p.Main {
			if slot.Index < 0 || slot.Index >= host.MainSlots {
				continue
			}
			st := slot.Stack
			s.Main[slot.Index] = st.Clone()
		}
		out = append(out, s)
	}
	return out
}

// Backpacks lists every container carried by any player.
func (snap SnapshotV1) Backpacks() []*item.Stack {
	var out []*item.Stack
	for _, p := range snap.Players {
		for i := range p.Main {
			if model.IsContainer(&p.Main[i].Stack) {
				out = append(out, &p.Main[i].Stack)
			}
		}
		if model.IsContainer(p.OffHand) {
			out = append(out, p.OffHand)
		}
	}
	return out
}

// WriteSnapshot writes snap to path through a temp file, so a crash never
// leaves a half-written snapshot under the final name.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	err = writeTo(f, snap)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeTo(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is for humans and tooling; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// PathFor names the snapshot taken at unixMs inside dir.
func PathFor(dir string, unixMs int64) string {
	return filepath.Join(dir, strconv.FormatInt(unixMs, 10)+".snap.zst")
}

// List returns the snapshots in dir, oldest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	type named struct {
		path string
		ms   int64
	}
	var out []named
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		ms, err := strconv.ParseInt(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, named{path: filepath.Join(dir, name), ms: ms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ms < out[j].ms })
	paths := make([]string, len(out))
	for i, n := range out {
		paths[i] = n.path
	}
	return paths, nil
}

// Latest returns the newest snapshot in dir, or "".
func Latest(dir string) (string, error) {
	paths, err := List(dir)
	if err != nil || len(paths) == 0 {
		return "", err
	}
	return paths[len(paths)-1], nil
}
