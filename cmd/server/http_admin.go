package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"intheback.ai/internal/backpack/plugin"
	"intheback.ai/internal/host"
	"intheback.ai/internal/persistence/indexdb"
	"intheback.ai/internal/persistence/r2s3"
	"intheback.ai/internal/transport/ws"
)

func registerAdmin(mux *http.ServeMux, h *host.Platform, snaps *snapshotter) {
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		id := r.URL.Query().Get("player")
		if id == "" {
			http.Error(rw, "missing player", http.StatusBadRequest)
			return
		}
		st, err := h.State(id)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusNotFound)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(st)
	})
	mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		path, err := snaps.take()
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "path": path})
	})
}

func metricsHandler(h *host.Platform, bp *plugin.Plugin, wsSrv *ws.Server, idx *indexdb.SQLiteIndex, mirror *r2s3.Mirror) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		fmt.Fprintf(rw, "# HELP intheback_players Players known to the host.\n")
		fmt.Fprintf(rw, "# TYPE intheback_players gauge\n")
		fmt.Fprintf(rw, "intheback_players %d\n", len(h.Export()))

		fmt.Fprintf(rw, "# HELP intheback_clients Connected websocket clients.\n")
		fmt.Fprintf(rw, "# TYPE intheback_clients gauge\n")
		fmt.Fprintf(rw, "intheback_clients %d\n", wsSrv.Connected())

		fmt.Fprintf(rw, "# HELP intheback_open_backpacks Backpack views currently open.\n")
		fmt.Fprintf(rw, "# TYPE intheback_open_backpacks gauge\n")
		fmt.Fprintf(rw, "intheback_open_backpacks %d\n", bp.Sessions().Len())

		if idx != nil {
			st := idx.Stats()
			fmt.Fprintf(rw, "# HELP intheback_index_queue_depth Pending audit index writes.\n")
			fmt.Fprintf(rw, "# TYPE intheback_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "intheback_index_queue_depth %d\n", st.QueueDepth)
			fmt.Fprintf(rw, "# HELP intheback_index_dropped_total Index writes dropped because the queue was full.\n")
			fmt.Fprintf(rw, "# TYPE intheback_index_dropped_total counter\n")
			fmt.Fprintf(rw, "intheback_index_dropped_total{kind=%q} %d\n", "audit", st.DropAuditTotal)
			fmt.Fprintf(rw, "intheback_index_dropped_total{kind=%q} %d\n", "snapshot", st.DropSnapshotTotal)
		}

		if mirror != nil {
			st := mirror.Stats()
			fmt.Fprintf(rw, "# HELP intheback_mirror_queue_depth Files waiting for offsite upload.\n")
			fmt.Fprintf(rw, "# TYPE intheback_mirror_queue_depth gauge\n")
			fmt.Fprintf(rw, "intheback_mirror_queue_depth %d\n", st.QueueDepth)
			fmt.Fprintf(rw, "# HELP intheback_mirror_uploads_total Offsite uploads by result.\n")
			fmt.Fprintf(rw, "# TYPE intheback_mirror_uploads_total counter\n")
			fmt.Fprintf(rw, "intheback_mirror_uploads_total{result=%q} %d\n", "ok", st.UploadSuccessTotal)
			fmt.Fprintf(rw, "intheback_mirror_uploads_total{result=%q} %d\n", "fail", st.UploadFailTotal)
			fmt.Fprintf(rw, "intheback_mirror_uploads_total{result=%q} %d\n", "dropped", st.DroppedTotal)
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
