package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/Pulgas25/activacel-fans-full/internal/config"
	"github.com/Pulgas25/activacel-fans-full/internal/logging"
	"github.com/Pulgas25/activacel-fans-full/internal/server"
	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
	"github.com/Pulgas25/activacel-fans-full/internal/version"
)

func main() {
	logging.Init(slog.LevelInfo)

	cfg, err := config.Load(config.Options{})
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	// The hub owns all room state; everything else just feeds it events.
	hub := signaling.NewHub(signaling.NewRoomStore())
	go hub.Run()

	mux := server.Routes(hub, cfg.StaticDir)

	slog.Info("signaling server listening",
		"addr", cfg.Addr(), "static", cfg.StaticDir, "version", version.Version)

	if err := http.ListenAndServe(cfg.Addr(), mux); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
