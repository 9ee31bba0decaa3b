package indexdb

import (
	"context"
	"database/sql"
	"strings"
)

// AuditFilter narrows QueryAudits. Zero fields match everything.
type AuditFilter struct {
	Actor       string
	ContainerID string
	Action      string
	SinceMs     int64
	Limit       int
}

type AuditRow struct {
	Seq         int64  `json:"seq"`
	UnixMs      int64  `json:"unix_ms"`
	Actor       string `json:"actor"`
	Action      string `json:"action"`
	ContainerID string `json:"container_id,omitempty"`
	Level       int    `json:"level"`
	Slots       int    `json:"slots,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// QueryAudits returns matching audit rows, newest first.
func QueryAudits(ctx context.Context, db *sql.DB, f AuditFilter) ([]AuditRow, error) {
	var (
		where []string
		args  []any
	)
	if f.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, f.Actor)
	}
	if f.ContainerID != "" {
		where = append(where, "container_id = ?")
		args = append(args, f.ContainerID)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.SinceMs > 0 {
		where = append(where, "unix_ms >= ?")
		args = append(args, f.SinceMs)
	}
	q := `SELECT seq,unix_ms,actor,action,container_id,level,slots,COALESCE(reason,'') FROM audits`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuditRow
	for rows.Next() {
		var r AuditRow
		if err := rows.Scan(&r.Seq, &r.UnixMs, &r.Actor, &r.Action, &r.ContainerID, &r.Level, &r.Slots, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QuerySnapshots returns recorded snapshots, newest first.
func QuerySnapshots(ctx context.Context, db *sql.DB, limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `SELECT unix_ms,path,players,backpacks FROM snapshots ORDER BY unix_ms DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.UnixMs, &r.Path, &r.Players, &r.Backpacks); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DB exposes the underlying handle for read queries.
func (s *SQLiteIndex) DB() *sql.DB { return s.db }
