package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default configuration values.
const (
	DefaultServerURL  = "ws://localhost:3010/ws"
	DefaultListenAddr = ":3010"
	DefaultSTUN       = "stun:stun.l.google.com:19302"
)

// Config holds the resolved application configuration.
type Config struct {
	// ServerURL is the websocket URL of the signaling relay.
	ServerURL string

	// ListenAddr is where `remotix serve` binds.
	ListenAddr string

	// ICE servers for WebRTC.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay forces TURN-only candidate paths.
	ForceRelay bool
}

// Options carries CLI flag overrides into Load.
type Options struct {
	ServerURL  string
	ListenAddr string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
	ConfigFile string
}

// fileConfig is the on-disk TOML shape.
type fileConfig struct {
	Server string `toml:"server"`
	Listen string `toml:"listen"`
	STUN   string `toml:"stun"`
	TURN   string `toml:"turn"`
	User   string `toml:"turn_user"`
	Pass   string `toml:"turn_pass"`
}

// Load resolves configuration with the priority:
// CLI flags > environment variables > config file > defaults.
func Load(opts Options) (*Config, error) {
	file, err := loadFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerURL:  pick(opts.ServerURL, os.Getenv("REMOTIX_SERVER"), file.Server, DefaultServerURL),
		ListenAddr: pick(opts.ListenAddr, os.Getenv("REMOTIX_LISTEN"), file.Listen, DefaultListenAddr),
		STUNServer: pick(opts.STUNServer, os.Getenv("REMOTIX_STUN"), file.STUN, DefaultSTUN),
		TURNServer: pick(opts.TURNServer, os.Getenv("REMOTIX_TURN"), file.TURN, ""),
		TURNUser:   pick(opts.TURNUser, os.Getenv("REMOTIX_TURN_USER"), file.User, ""),
		TURNPass:   pick(opts.TURNPass, os.Getenv("REMOTIX_TURN_PASS"), file.Pass, ""),
		ForceRelay: opts.ForceRelay,
	}
	return cfg, nil
}

// loadFile parses the TOML config file. A missing default file is fine; an
// explicitly named file must exist.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig

	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fc, nil
		}
		path = filepath.Join(dir, "remotix", "config.toml")
	}

	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, nil
		}
		return fc, fmt.Errorf("config file %s: %w", path, err)
	}
	return fc, nil
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetSTUNServers returns STUN server URLs.
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured.
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns the TURN username and password.
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

// StatusURL derives the HTTP status endpoint from the websocket URL.
func (c *Config) StatusURL() string {
	u := c.ServerURL
	switch {
	case len(u) > 6 && u[:6] == "wss://":
		u = "https://" + u[6:]
	case len(u) > 5 && u[:5] == "ws://":
		u = "http://" + u[5:]
	}
	// Strip the /ws path if present.
	if len(u) > 3 && u[len(u)-3:] == "/ws" {
		u = u[:len(u)-3]
	}
	return u + "/status"
}
