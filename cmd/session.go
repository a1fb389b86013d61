package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/session"
	"github.com/remotix/remotix/internal/signaling"
	"github.com/remotix/remotix/internal/ui"
)

// welcomeTimeout bounds how long we wait for the relay to assign us an
// endpoint id after the websocket comes up.
const welcomeTimeout = 10 * time.Second

// ConnectionContext bundles everything a connected command needs: the relay
// transport, the typed message router, and the endpoint id the relay
// assigned us.
type ConnectionContext struct {
	Client  *signaling.Client
	Handler *signaling.Handler
	Config  *config.Config
	LocalID string
}

// NewConnectionContext dials the relay, starts the message router, and
// blocks until the relay's welcome arrives.
func NewConnectionContext(cfg *config.Config) (*ConnectionContext, error) {
	stop := ui.RunConnectionSpinner("Connecting to relay...")
	defer stop()

	client := signaling.NewClient(cfg.ServerURL)
	if err := client.Connect(); err != nil {
		return nil, session.NewError("connect to relay", err)
	}

	handler := signaling.NewHandler(client)
	go handler.Start()

	select {
	case id := <-handler.Welcome:
		return &ConnectionContext{
			Client:  client,
			Handler: handler,
			Config:  cfg,
			LocalID: id,
		}, nil
	case <-handler.Disconnected:
		client.Close()
		return nil, session.NewError("connect to relay", session.ErrSignalingError)
	case <-time.After(welcomeTimeout):
		client.Close()
		return nil, fmt.Errorf("relay did not identify us within %s", welcomeTimeout)
	}
}

func (c *ConnectionContext) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, session.NewError("load config", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}

// connectionFlags registers the flag set shared by host and join.
func connectionFlags(cmd *cobra.Command, opts *config.Options) {
	cmd.Flags().StringVarP(&opts.ServerURL, "server", "s", "", "relay server websocket URL")
	cmd.Flags().StringVar(&opts.STUNServer, "stun", "", "STUN server host")
	cmd.Flags().StringVar(&opts.TURNServer, "turn", "", "TURN server host")
	cmd.Flags().StringVar(&opts.TURNUser, "turn-user", "", "TURN username")
	cmd.Flags().StringVar(&opts.TURNPass, "turn-pass", "", "TURN password")
	cmd.Flags().BoolVar(&opts.ForceRelay, "force-relay", false, "route media through the TURN relay even if a direct path exists")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to config file")
}
