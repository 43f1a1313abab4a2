package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"skyrunner/internal/persistence/runlog"
	"skyrunner/internal/persistence/scoredb"
	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/session"
	"skyrunner/internal/sim/tuning"
	"skyrunner/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the score database (runs are logged only)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join("configs", "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	sink := &finalSink{log: logger}

	if !*disableDB {
		store, err := scoredb.Open(filepath.Join(*dataDir, "scores.db"), tune.Cheat)
		if err != nil {
			logger.Fatalf("open score db: %v", err)
		}
		defer store.Close()
		sink.store = store
	}

	runs := runlog.NewWriter(filepath.Join(*dataDir, "runs"))
	defer runs.Close()
	sink.runs = runs

	registry := session.NewRegistry(tune, sink, logger)
	defer registry.Shutdown()

	wsServer := ws.NewServer(registry, tune, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registry.Infos())
	})
	mux.HandleFunc("/v1/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if sink.store == nil {
			http.Error(w, "score db disabled", http.StatusServiceUnavailable)
			return
		}
		top, err := sink.store.Top(20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, top)
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Printf("listening on %s (tick %d Hz)", *addr, tune.TickRateHz)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// finalSink fans a finalized run out to the score database and the run log.
// A database rejection is surfaced to the caller; a log failure is not.
type finalSink struct {
	store *scoredb.Store
	runs  *runlog.Writer
	log   *log.Logger
}

func (f *finalSink) Finalize(sessionID string, stats game.FinalStats) error {
	if f.runs != nil {
		if err := f.runs.WriteRun(sessionID, stats); err != nil {
			f.log.Printf("run log: %v", err)
		}
	}
	if f.store == nil {
		return nil
	}
	return f.store.Finalize(sessionID, stats)
}
