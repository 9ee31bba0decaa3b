package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"intheback.ai/internal/audit"
	"intheback.ai/internal/catalogs"
	"intheback.ai/internal/tuning"
)

func TestSQLiteIndex_AuditRows(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index", "audit.sqlite"), 16)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	entries := []audit.Entry{
		{UnixMs: 1, Actor: "A", Action: audit.ActionOpen, ContainerID: "c1", Level: 0, Slots: 27},
		{UnixMs: 2, Actor: "A", Action: audit.ActionSave, ContainerID: "c1", Level: 0, Slots: 27},
		{UnixMs: 3, Actor: "B", Action: audit.ActionCraftVetoed, ContainerID: "c2", Level: 1, Slots: 36, Reason: "level_mismatch"},
	}
	for _, e := range entries {
		if err := idx.WriteAudit(e); err != nil {
			t.Fatalf("WriteAudit: %v", err)
		}
	}
	idx.RecordSnapshot(SnapshotRow{UnixMs: 10, Path: "/tmp/10.snap.zst", Players: 2, Backpacks: 3})
	ctx := context.Background()
	if err := idx.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rows, err := QueryAudits(ctx, idx.DB(), AuditFilter{Actor: "A"})
	if err != nil {
		t.Fatalf("QueryAudits: %v", err)
	}
	if len(rows) != 2 || rows[0].Action != audit.ActionSave || rows[1].Action != audit.ActionOpen {
		t.Fatalf("actor rows: %+v", rows)
	}
	rows, err = QueryAudits(ctx, idx.DB(), AuditFilter{ContainerID: "c2"})
	if err != nil {
		t.Fatalf("QueryAudits: %v", err)
	}
	if len(rows) != 1 || rows[0].Reason != "level_mismatch" || rows[0].Slots != 36 {
		t.Fatalf("container rows: %+v", rows)
	}
	rows, _ = QueryAudits(ctx, idx.DB(), AuditFilter{SinceMs: 2, Limit: 1})
	if len(rows) != 1 || rows[0].UnixMs != 3 {
		t.Fatalf("since/limit rows: %+v", rows)
	}

	snaps, err := QuerySnapshots(ctx, idx.DB(), 0)
	if err != nil {
		t.Fatalf("QuerySnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Backpacks != 3 || snaps[0].Players != 2 {
		t.Fatalf("snapshots: %+v", snaps)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqAudit}

	_ = s.WriteAudit(audit.Entry{Actor: "A"})
	s.RecordSnapshot(SnapshotRow{UnixMs: 1})

	st := s.Stats()
	if st.DropAuditTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drops: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_UpsertCatalogs(t *testing.T) {
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("catalogs.Load: %v", err)
	}
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.sqlite"), 0)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()
	if err := idx.UpsertCatalogs("../../../configs", cats, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	var digest string
	if err := idx.DB().QueryRow(`SELECT digest FROM catalogs WHERE name='recipes'`).Scan(&digest); err != nil {
		t.Fatalf("select: %v", err)
	}
	if digest != cats.Recipes.Digest {
		t.Fatalf("digest: got %s want %s", digest, cats.Recipes.Digest)
	}
	var n int
	if err := idx.DB().QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("catalog rows: n=%d err=%v", n, err)
	}
}
