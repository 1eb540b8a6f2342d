package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"adsmanager/internal/channels"
	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
)

// channelsCmd lists the registered channels
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels declared in the config",
	Args:  cobra.NoArgs,
	RunE:  listChannels,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func listChannels(cmd *cobra.Command, args []string) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "TYPE", "CONFIGURED")
	for _, ch := range registry.Channels() {
		t.Row(ch.ID(), channelType(ch), fmt.Sprint(ch.IsConfigured()))
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func channelType(ch channels.Channel) string {
	switch ch.(type) {
	case *facebook.Channel:
		return "facebook"
	case *googleads.Channel:
		return "google"
	case *twitter.Channel:
		return "twitter"
	}
	return fmt.Sprintf("%T", ch)
}
