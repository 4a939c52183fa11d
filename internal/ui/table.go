package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/BioHazard786/relayroom/internal/client"
)

func metricTable(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("Metric", "Value").
		Rows(rows...).
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
}

// StatsView renders a server's stats as a two-column table.
func StatsView(server string, stats *client.Stats) string {
	rows := [][]string{
		{"Server", server},
		{"Version", stats.Version},
		{"Rooms", strconv.Itoa(stats.Rooms)},
		{"Active", strconv.Itoa(stats.Active)},
		{"Hibernating", strconv.Itoa(stats.Hibernating)},
		{"Connections", strconv.Itoa(stats.Connections)},
	}
	return metricTable(rows).Render()
}

type RoomInfo struct {
	Name      string
	Generated bool
}

func NewRoomInfo(name string, generated bool) *RoomInfo {
	return &RoomInfo{Name: name, Generated: generated}
}

func (r *RoomInfo) View() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(1, 2)

	title := "Joined room"
	if r.Generated {
		title = "Room created"
	}
	content := fmt.Sprintf("%s %s\n\n%s Room:  %s\n%s Share: %s",
		IconRoom, title,
		IconCopy, BoldStyle.Foreground(Primary).Render(r.Name),
		IconWeb, MutedStyle.Render("relayroom join "+r.Name),
	)
	return boxStyle.Render(content)
}
