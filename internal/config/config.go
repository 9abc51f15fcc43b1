package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultPort      = "8080"
	DefaultStaticDir = "web"
	DefaultServerURL = "ws://localhost:8080/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Config holds everything either binary needs. The relay server reads Port
// and StaticDir; the CLI peer reads ServerURL and STUNServer.
type Config struct {
	// Port the relay listens on, without the colon.
	Port string

	// StaticDir is the directory of browser client assets served at /.
	StaticDir string

	// ServerURL is the websocket endpoint the CLI peer dials.
	ServerURL string

	// STUNServer used for ICE candidate gathering.
	STUNServer string
}

// Options carry CLI flag overrides into Load.
type Options struct {
	ServerURL  string
	STUNServer string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (a .env file is honored if present)
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	// godotenv.Load does not overwrite existing env vars.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = DefaultStaticDir
	}

	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("SIGNAL_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	stunServer := opts.STUNServer
	if stunServer == "" {
		stunServer = os.Getenv("STUN_SERVER")
	}
	if stunServer == "" {
		stunServer = DefaultSTUN
	}

	return &Config{
		Port:       port,
		StaticDir:  staticDir,
		ServerURL:  serverURL,
		STUNServer: stunServer,
	}, nil
}

// Addr returns the listen address for the relay server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// GetSTUNServers returns STUN server URLs as strings.
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}
