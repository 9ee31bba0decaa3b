package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"intheback.ai/internal/persistence/snapshot"
)

// DayMeta is written as meta.json next to the snapshots archived for one UTC day.
type DayMeta struct {
	Day       string  `json:"day"`
	Snapshots []Entry `json:"snapshots"`
	UpdatedAt string  `json:"updated_at"`
}

type Entry struct {
	File      string `json:"file"`
	UnixMs    int64  `json:"unix_ms"`
	Players   int    `json:"players"`
	Backpacks int    `json:"backpacks"`
}

// Prune keeps the newest keep snapshots in snapDir and moves the older ones
// into archiveDir/<YYYY-MM-DD>/. It returns the archived paths. keep <= 0
// leaves everything in place.
func Prune(snapDir, archiveDir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	paths, err := snapshot.List(snapDir)
	if err != nil {
		return nil, err
	}
	if len(paths) <= keep {
		return nil, nil
	}

	byDay := map[string][]Entry{}
	var moved []string
	for _, src := range paths[:len(paths)-keep] {
		e := entryFor(src)
		day := time.UnixMilli(e.UnixMs).UTC().Format("2006-01-02")
		dayDir := filepath.Join(archiveDir, day)
		if err := os.MkdirAll(dayDir, 0o755); err != nil {
			return moved, err
		}
		dst := filepath.Join(dayDir, e.File)
		if err := moveFile(src, dst); err != nil {
			return moved, fmt.Errorf("archive %s: %w", e.File, err)
		}
		moved = append(moved, dst)
		byDay[day] = append(byDay[day], e)
	}
	for day, entries := range byDay {
		if err := appendMeta(filepath.Join(archiveDir, day), day, entries); err != nil {
			return moved, err
		}
	}
	return moved, nil
}

func entryFor(path string) Entry {
	name := filepath.Base(path)
	e := Entry{File: name}
	e.UnixMs, _ = strconv.ParseInt(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
	if snap, err := snapshot.ReadSnapshot(path); err == nil {
		e.Players = len(snap.Players)
		e.Backpacks = len(snap.Backpacks())
	}
	return e
}

func appendMeta(dayDir, day string, entries []Entry) error {
	path := filepath.Join(dayDir, "meta.json")
	meta := DayMeta{Day: day}
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &meta); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	meta.Snapshots = append(meta.Snapshots, entries...)
	sort.Slice(meta.Snapshots, func(i, j int) bool { return meta.Snapshots[i].UnixMs < meta.Snapshots[j].UnixMs })
	meta.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
