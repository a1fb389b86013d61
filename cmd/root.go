package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/ui"
	"github.com/remotix/remotix/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "remotix",
	Short:   "Remote desktop sharing over WebRTC with a lightweight signaling relay",
	Long:    `Remotix shares a desktop between two machines over a direct WebRTC connection. One side hosts a room and streams its screen; the other joins the room and, once the host allows it, drives the host's mouse and keyboard. A small relay server brokers the rendezvous and carries nothing but signaling.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
