package cmd

import (
	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/logging"
	"github.com/remotix/remotix/internal/relay"
	"github.com/remotix/remotix/internal/ui"
)

var serveOpts config.Options

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling relay server",
	Long:  `Runs the signaling relay other remotix instances rendezvous through. The relay keeps room membership and forwards signaling messages between room members; screen and input traffic goes peer-to-peer and never touches it.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveOpts.ListenAddr, "listen", "l", "", "address to listen on")
	serveCmd.Flags().StringVarP(&serveOpts.ConfigFile, "config", "c", "", "path to config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.Init(true)

	cfg, err := LoadConfig(serveOpts)
	if err != nil {
		return err
	}

	ui.PrintInfof("relay listening on %s", cfg.ListenAddr)
	return relay.NewServer(relay.NewHub(), cfg.ListenAddr).Run()
}
