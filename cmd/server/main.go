package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"intheback.ai/internal/audit"
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/plugin"
	"intheback.ai/internal/catalogs"
	"intheback.ai/internal/host"
	"intheback.ai/internal/persistence/indexdb"
	persistlog "intheback.ai/internal/persistence/log"
	"intheback.ai/internal/persistence/r2s3"
	"intheback.ai/internal/persistence/snapshot"
	"intheback.ai/internal/protocol"
	"intheback.ai/internal/transport/ws"
	"intheback.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite audit index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if tune.ProtocolVersion != "" && tune.ProtocolVersion != protocol.Version {
		logger.Fatalf("tuning protocol_version=%s but server speaks %s", tune.ProtocolVersion, protocol.Version)
	}
	_ = os.MkdirAll(*dataDir, 0o755)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "audit.sqlite"), tune.AuditQueue)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}
	var mirror *r2s3.Mirror
	if s3cfg, ok := r2s3.ConfigFromEnv(); ok {
		client, err := r2s3.New(s3cfg)
		if err != nil {
			logger.Fatalf("offsite mirror: %v", err)
		}
		mirror = r2s3.NewMirror(client, r2s3.MirrorConfig{
			DataDir: *dataDir,
			Prefix:  os.Getenv("ITB_S3_PREFIX"),
			Workers: 2,
			Logger:  logger,
		})
		defer mirror.Close()
		logger.Printf("offsite mirror enabled bucket=%s", s3cfg.Bucket)
	}

	auditLog := persistlog.NewAuditLogger(*dataDir)
	defer auditLog.Close()
	auditLog.OnFileClosed(func(path string) { mirror.Enqueue(path) })
	sinks := audit.Multi{auditLog}
	if idx != nil {
		sinks = append(sinks, idx)
	}

	h := host.New(host.Config{Logger: logger, StarterItems: tune.StarterItems})

	snapDir := filepath.Join(*dataDir, "snapshots")
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		if snapshotToLoad, err = snapshot.Latest(snapDir); err != nil {
			logger.Fatalf("list snapshots: %v", err)
		}
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.RecipesDigest != "" && snap.RecipesDigest != cats.Recipes.Digest {
			logger.Printf("snapshot %s was taken with different recipes", filepath.Base(snapshotToLoad))
		}
		h.Import(snap.ToHost())
		logger.Printf("resumed from snapshot=%s players=%d", filepath.Base(snapshotToLoad), len(snap.Players))
	}

	bp, err := plugin.Enable(h, plugin.Config{Logger: logger, Catalogs: cats, Audit: sinks})
	if err != nil {
		logger.Fatalf("enable plugin: %v", err)
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("compile schemas: %v", err)
	}
	capacities := make([]int, 0, model.MaxLevel+1)
	for lv := model.LevelSmall; lv <= model.MaxLevel; lv++ {
		capacities = append(capacities, lv.Capacity())
	}
	wsSrv := ws.NewServer(ws.Config{
		Logger:    logger,
		Host:      h,
		Store:     bp.Store(),
		Validator: validator,
		Params: protocol.ServerParams{
			MaxPlayers: tune.MaxPlayers,
			Capacities: capacities,
			ViewTitle:  model.ViewTitle,
			Recipes:    h.RecipeKeys(),
		},
		RecipesDigest: cats.Recipes.Digest,
		MaxPlayers:    tune.MaxPlayers,
	})

	ctx, cancel := signalContext()
	defer cancel()

	snaps := &snapshotter{
		dir:    snapDir,
		host:   h,
		digest: cats.Recipes.Digest,
		idx:    idx,
		log:    logger,
		now:    time.Now,

		mirror:     mirror,
		archiveDir: filepath.Join(*dataDir, "archives"),
		keep:       tune.SnapshotKeep,
	}
	snapDone := make(chan struct{})
	go func() {
		defer close(snapDone)
		snaps.run(ctx, time.Duration(tune.SnapshotEverySeconds)*time.Second)
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(h, bp, wsSrv, idx, mirror))
	if envBool("ITB_ENABLE_ADMIN_HTTP", true) {
		registerAdmin(mux, h, snaps)
	} else {
		logger.Printf("admin endpoints disabled (ITB_ENABLE_ADMIN_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Players disconnect on shutdown; their open views are settled before the
	// final snapshot.
	cancel()
	<-snapDone
	for _, s := range h.Export() {
		h.Leave(s.ID)
	}
	bp.Disable()
	if _, err := snaps.take(); err != nil {
		logger.Printf("final snapshot: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
