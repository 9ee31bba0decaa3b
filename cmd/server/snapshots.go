package main

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"intheback.ai/internal/host"
	"intheback.ai/internal/persistence/archive"
	"intheback.ai/internal/persistence/indexdb"
	"intheback.ai/internal/persistence/r2s3"
	"intheback.ai/internal/persistence/snapshot"
)

// snapshotter writes host snapshots on a timer and on request. Each new
// snapshot is mirrored offsite, then anything beyond keep is archived.
type snapshotter struct {
	dir    string
	host   *host.Platform
	digest string
	idx    *indexdb.SQLiteIndex
	log    *log.Logger
	now    func() time.Time

	mirror     *r2s3.Mirror
	archiveDir string
	keep       int

	mu     sync.Mutex
	lastMs int64
}

func (s *snapshotter) run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.take(); err != nil {
				s.log.Printf("snapshot write: %v", err)
			}
		}
	}
}

// take writes one snapshot and returns its path.
func (s *snapshotter) take() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastMs {
		ms = s.lastMs + 1
	}
	snap := snapshot.FromHost(ms, s.digest, s.host.Export())
	path := snapshot.PathFor(s.dir, ms)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	s.lastMs = ms
	s.idx.RecordSnapshot(indexdb.SnapshotRow{
		UnixMs:    ms,
		Path:      path,
		Players:   len(snap.Players),
		Backpacks: len(snap.Backpacks()),
	})
	s.log.Printf("snapshot %s players=%d", filepath.Base(path), len(snap.Players))
	s.mirror.Enqueue(path)
	if s.archiveDir != "" {
		moved, err := archive.Prune(s.dir, s.archiveDir, s.keep)
		if err != nil {
			s.log.Printf("snapshot archive: %v", err)
		} else if len(moved) > 0 {
			s.log.Printf("archived %d old snapshots", len(moved))
		}
	}
	return path, nil
}
