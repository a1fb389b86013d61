package config

import (
	"os"
	"path/filepath"
	"testing"
)

// scrubEnv clears the REMOTIX_* overrides so host environment leaks cannot
// sway the resolution tests.
func scrubEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"REMOTIX_SERVER", "REMOTIX_LISTEN", "REMOTIX_STUN", "REMOTIX_TURN", "REMOTIX_TURN_USER", "REMOTIX_TURN_PASS"} {
		t.Setenv(key, "")
	}
}

// emptyConfigFile gives Load an explicit empty file so the test never reads
// a real ~/.config/remotix/config.toml.
func emptyConfigFile(t *testing.T) string {
	t.Helper()
	scrubEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{ConfigFile: emptyConfigFile(t)})
	if err != nil {
		t.Fatal("Load() error: ", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Fatalf("expected default server URL, got %q", cfg.ServerURL)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.STUNServer != DefaultSTUN {
		t.Fatalf("expected default STUN server, got %q", cfg.STUNServer)
	}
	if cfg.GetTURNServers() != nil {
		t.Fatal("no TURN servers without configuration")
	}
}

func TestLoad_Priority(t *testing.T) {
	scrubEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "server = \"ws://from-file:3010/ws\"\nstun = \"stun:from-file:3478\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("REMOTIX_SERVER", "ws://from-env:3010/ws")

	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatal("Load() error: ", err)
	}
	// Env beats file, file beats defaults.
	if cfg.ServerURL != "ws://from-env:3010/ws" {
		t.Fatalf("env should override the file, got %q", cfg.ServerURL)
	}
	if cfg.STUNServer != "stun:from-file:3478" {
		t.Fatalf("file should override the default, got %q", cfg.STUNServer)
	}

	// Flags beat everything.
	cfg, err = Load(Options{ConfigFile: path, ServerURL: "ws://from-flag:3010/ws"})
	if err != nil {
		t.Fatal("Load() error: ", err)
	}
	if cfg.ServerURL != "ws://from-flag:3010/ws" {
		t.Fatalf("flag should override env and file, got %q", cfg.ServerURL)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	if _, err := Load(Options{ConfigFile: "/nonexistent/remotix.toml"}); err == nil {
		t.Fatal("an explicitly named missing file should be an error")
	}
}

func TestGetTURNServers(t *testing.T) {
	cfg := &Config{TURNServer: "turn:turn.example.com"}
	servers := cfg.GetTURNServers()
	if len(servers) != 2 {
		t.Fatal("expected udp and tcp TURN URLs, got ", servers)
	}
	if servers[0] != "turn:turn.example.com:3478?transport=udp" {
		t.Fatalf("unexpected TURN URL %q", servers[0])
	}
}

func TestStatusURL(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"ws://localhost:3010/ws", "http://localhost:3010/status"},
		{"wss://relay.example.com/ws", "https://relay.example.com/status"},
		{"ws://localhost:3010", "http://localhost:3010/status"},
	}
	for _, tt := range tests {
		cfg := &Config{ServerURL: tt.server}
		if got := cfg.StatusURL(); got != tt.want {
			t.Errorf("StatusURL(%q) = %q, want %q", tt.server, got, tt.want)
		}
	}
}
