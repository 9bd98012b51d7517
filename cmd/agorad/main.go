// Command agorad runs one peer of the agora economy mesh: either the
// authority, which owns and persists the canonical state and serves
// replicas, or a replica that mirrors it.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/agora/internal/api"
	"github.com/talgya/agora/internal/catalog"
	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/hooks"
	"github.com/talgya/agora/internal/mesh"
	"github.com/talgya/agora/internal/persistence"
)

func main() {
	configPath := flag.String("config", "agora.yaml", "path to daemon config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		slog.Error("catalog load failed", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "path", cfg.CatalogPath, "items", len(cat.Entries))

	rng := entropy.NewSource(cfg.Seed)
	eng := engine.New(cfg.Economy, cat, rng, cfg.Seed)

	if cfg.Authority {
		runAuthority(cfg, eng)
	} else {
		runReplica(cfg, eng)
	}
}

func runAuthority(cfg daemonConfig, eng *engine.Engine) {
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	peer := mesh.NewPeer(eng, db, true)
	hub := mesh.NewHub(peer)
	boundary := hooks.NewBoundary(peer)

	if err := boundary.OnSaveLoaded(); err != nil {
		slog.Error("economy startup failed", "error", err)
		os.Exit(1)
	}

	ticker := engine.NewTicker(peer.Day(), cfg.DayInterval(), cfg.Economy.DaysPerSeason)
	ticker.OnDay = boundary.FireDayStart
	ticker.OnSeason = boundary.FireSeasonStart
	ticker.OnYear = boundary.FireYearStart
	go ticker.Run()

	server := &api.Server{
		Peer:     peer,
		Boundary: boundary,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	server.Start()

	waitForShutdown()
	ticker.Stop()
	boundary.OnSessionEnd()
}

func runReplica(cfg daemonConfig, eng *engine.Engine) {
	if cfg.AuthorityURL == "" {
		slog.Error("replica requires authority_url")
		os.Exit(1)
	}

	peer := mesh.NewPeer(eng, nil, false)
	boundary := hooks.NewBoundary(peer)

	if err := boundary.OnSaveLoaded(); err != nil {
		slog.Error("economy startup failed", "error", err)
		os.Exit(1)
	}

	client := mesh.NewClient(peer, cfg.AuthorityURL)
	go client.Run()

	server := &api.Server{
		Peer:     peer,
		Boundary: boundary,
		Eng:      eng,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	server.Start()

	waitForShutdown()
	client.Close()
	boundary.OnSessionEnd()
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	slog.Info("shutting down", "signal", s)
}
