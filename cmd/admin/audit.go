package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"intheback.ai/internal/audit"
	"intheback.ai/internal/persistence/indexdb"
	persistlog "intheback.ai/internal/persistence/log"
)

func newAuditCmd(opts *rootOpts) *cobra.Command {
	var (
		dbPath  string
		jsonl   bool
		f       indexdb.AuditFilter
		sinceMs int64
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the backpack audit trail",
		Long:  "audit reads the sqlite index by default. With --jsonl it scans the compressed JSONL files instead, which also works when the index was disabled.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.SinceMs = sinceMs
			enc := json.NewEncoder(cmd.OutOrStdout())
			if jsonl {
				return scanJSONL(opts.dataDir, f, enc)
			}

			path := strings.TrimSpace(dbPath)
			if path == "" {
				path = filepath.Join(opts.dataDir, "index", "audit.sqlite")
			}
			db, err := sql.Open("sqlite", path)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer db.Close()
			rows, err := indexdb.QueryAudits(cmd.Context(), db, f)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			for _, r := range rows {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite db path (default: <data>/index/audit.sqlite)")
	cmd.Flags().BoolVar(&jsonl, "jsonl", false, "scan the JSONL audit files instead of the index")
	cmd.Flags().StringVar(&f.Actor, "actor", "", "player id filter")
	cmd.Flags().StringVar(&f.ContainerID, "container", "", "backpack id filter")
	cmd.Flags().StringVar(&f.Action, "action", "", "action filter (OPEN, SAVE, SAVE_DROPPED, ...)")
	cmd.Flags().Int64Var(&sinceMs, "since_ms", 0, "only entries at or after this unix ms")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "result limit")
	return cmd
}

func matches(f indexdb.AuditFilter, e audit.Entry) bool {
	return (f.Actor == "" || e.Actor == f.Actor) &&
		(f.ContainerID == "" || e.ContainerID == f.ContainerID) &&
		(f.Action == "" || e.Action == f.Action) &&
		e.UnixMs >= f.SinceMs
}

// scanJSONL prints matching entries oldest first, up to the limit.
func scanJSONL(dataDir string, f indexdb.AuditFilter, enc *json.Encoder) error {
	files, err := persistlog.AuditFiles(dataDir)
	if err != nil {
		return err
	}
	n := 0
	errLimit := fmt.Errorf("limit reached")
	for _, path := range files {
		err := persistlog.ReadAudit(path, func(e audit.Entry) error {
			if !matches(f, e) {
				return nil
			}
			if f.Limit > 0 && n >= f.Limit {
				return errLimit
			}
			n++
			return enc.Encode(e)
		})
		if err == errLimit {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newServerCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Talk to a running server's admin endpoints",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "http://127.0.0.1:8080", "server base url")

	var player string
	state := &cobra.Command{
		Use:   "state",
		Short: "Print a player's live state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/admin/v1/state?player=" + player
			return adminRequest(cmd, http.MethodGet, u)
		},
	}
	state.Flags().StringVar(&player, "player", "", "player id")

	snap := &cobra.Command{
		Use:   "snapshot",
		Short: "Ask the server to write a snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/admin/v1/snapshot"
			return adminRequest(cmd, http.MethodPost, u)
		},
	}
	cmd.AddCommand(state, snap)
	return cmd
}

func adminRequest(cmd *cobra.Command, method, u string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
