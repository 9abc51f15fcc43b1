package main

import (
	"log/slog"

	"github.com/Pulgas25/activacel-fans-full/internal/logging"
)

func main() {
	// Keep the terminal quiet during calls unless LOG_LEVEL says otherwise
	logging.Init(slog.LevelWarn)
	Execute()
}
