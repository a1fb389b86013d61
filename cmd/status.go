package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/relay"
	"github.com/remotix/remotix/internal/ui"
	"github.com/remotix/remotix/internal/utils"
)

var statusOpts config.Options

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the relay's active rooms",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOpts.ServerURL, "server", "s", "", "relay server websocket URL")
	statusCmd.Flags().StringVarP(&statusOpts.ConfigFile, "config", "c", "", "path to config file")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(statusOpts)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Get(cfg.StatusURL())
	if err != nil {
		return fmt.Errorf("reach relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned %s", resp.Status)
	}

	var report relay.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("decode relay status: %w", err)
	}

	ui.PrintInfo(utils.FormatCount(report.Endpoints, "connected endpoint"))
	if len(report.Rooms) == 0 {
		ui.PrintInfo("no active rooms")
		return nil
	}

	rows := make([]ui.RoomRow, 0, len(report.Rooms))
	for _, r := range report.Rooms {
		rows = append(rows, ui.RoomRow{ID: r.ID, Members: r.Members, HasHost: r.HasHost})
	}
	ui.RenderRoomTable(rows)
	return nil
}
