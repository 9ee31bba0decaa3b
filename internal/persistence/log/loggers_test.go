package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"intheback.ai/internal/audit"
)

func TestAuditLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	want := []audit.Entry{
		{UnixMs: 1, Actor: "A", Action: audit.ActionOpen, ContainerID: "c1", Slots: 27},
		{UnixMs: 2, Actor: "A", Action: audit.ActionSaveDropped, ContainerID: "c1", Reason: "no_match"},
	}
	for _, e := range want {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("WriteAudit: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := AuditFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("AuditFiles: %v %v", files, err)
	}
	var got []audit.Entry
	if err := ReadAudit(files[0], func(e audit.Entry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadAudit: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	now := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(audit.Entry{Actor: "A"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(audit.Entry{Actor: "B"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"audit-2024-05-01-10.jsonl.zst", "audit-2024-05-01-11.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestAuditLogger_ReportsClosedFiles(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	now := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return now }
	var closed []string
	l.OnFileClosed(func(p string) { closed = append(closed, filepath.Base(p)) })

	_ = l.WriteAudit(audit.Entry{Actor: "A"})
	now = now.Add(2 * time.Minute)
	_ = l.WriteAudit(audit.Entry{Actor: "B"})
	if len(closed) != 1 || closed[0] != "audit-2024-05-01-10.jsonl.zst" {
		t.Fatalf("after rotation: %v", closed)
	}
	_ = l.Close()
	if len(closed) != 2 || closed[1] != "audit-2024-05-01-11.jsonl.zst" {
		t.Fatalf("after close: %v", closed)
	}
}
