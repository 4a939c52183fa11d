package ui

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/BioHazard786/relayroom/internal/client"
)

// Output formats accepted by StatsReport besides the styled terminal view.
const (
	OutputTable    = "table"
	OutputPlain    = "plain"
	OutputMarkdown = "markdown"
	OutputCSV      = "csv"
)

// StatsReport renders stats in a format meant for scripts and docs. The
// "table" format falls back to the styled StatsView.
func StatsReport(server string, stats *client.Stats, format string) (string, error) {
	if strings.EqualFold(format, OutputTable) || format == "" {
		return StatsView(server, stats), nil
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Server", server},
		{"Version", stats.Version},
		{"Rooms", stats.Rooms},
		{"Active", stats.Active},
		{"Hibernating", stats.Hibernating},
		{"Connections", stats.Connections},
	})

	switch strings.ToLower(format) {
	case OutputPlain:
		tw.SetStyle(table.StyleLight)
		return tw.Render(), nil
	case OutputMarkdown:
		return tw.RenderMarkdown(), nil
	case OutputCSV:
		return tw.RenderCSV(), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, plain, markdown or csv)", format)
	}
}
