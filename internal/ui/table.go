package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/remotix/remotix/internal/utils"
)

// RoomRow is one row of the relay status table.
type RoomRow struct {
	ID      string
	Members int
	HasHost bool
}

// RenderRoomTable prints the active rooms of a relay.
func RenderRoomTable(rows []RoomRow) {
	if len(rows) == 0 {
		fmt.Println(MutedStyle.Render("No active rooms"))
		return
	}

	var body [][]string
	for _, r := range rows {
		host := MutedStyle.Render("waiting")
		if r.HasHost {
			host = "yes"
		}
		body = append(body, []string{
			utils.TruncateString(r.ID, 36),
			fmt.Sprintf("%d", r.Members),
			host,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("Room", "Members", "Host").
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	fmt.Println(tbl.Render())
}

// RenderRoomInfo prints the share box shown after a room is created.
func RenderRoomInfo(roomID string) {
	content := fmt.Sprintf("%s Session ready!\n\n%s Room ID:  %s\n\n%s share this id with the person who should connect",
		IconSuccess,
		IconRoom, BoldStyle.Foreground(Primary).Render(roomID),
		IconInfo,
	)
	fmt.Println(SuccessBoxStyle.Render(content))
}
