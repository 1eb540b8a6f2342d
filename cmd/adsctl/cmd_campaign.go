package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adsmanager/internal/channels"
	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
)

var campaignFile string

// campaignCmd is the parent command for campaign operations
var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Create, update, pause or delete campaigns",
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create [channel]",
	Short: "Create a campaign with its targeting and creatives",
	Long: `Runs the full creation chain of the channel's network. A failure part-way
leaves the entities created so far on the account; the error names the
step that failed.

Example:
  adsctl campaign create fb-main -f spring.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCampaignCreate,
}

var campaignUpdateCmd = &cobra.Command{
	Use:   "update [channel] [campaign-id]",
	Short: "Update campaign fields",
	Args:  cobra.ExactArgs(2),
	RunE:  runCampaignUpdate,
}

var campaignStatusCmd = &cobra.Command{
	Use:   "status [channel] [campaign-id] [status]",
	Short: "Set a campaign status",
	Long: `Sets the status using the network's own vocabulary, for example
ACTIVE/PAUSED on Facebook, ENABLED/PAUSED on Google Ads and
ACTIVE/PAUSED/DRAFT on Twitter.`,
	Args: cobra.ExactArgs(3),
	RunE: runCampaignStatus,
}

var campaignDeleteCmd = &cobra.Command{
	Use:   "delete [channel] [campaign-id]",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(2),
	RunE:  runCampaignDelete,
}

func init() {
	campaignCreateCmd.Flags().StringVarP(&campaignFile, "file", "f", "", "Campaign input file (YAML or JSON, - for stdin)")
	campaignUpdateCmd.Flags().StringVarP(&campaignFile, "file", "f", "", "Update input file (YAML or JSON, - for stdin)")

	campaignCmd.AddCommand(campaignCreateCmd)
	campaignCmd.AddCommand(campaignUpdateCmd)
	campaignCmd.AddCommand(campaignStatusCmd)
	campaignCmd.AddCommand(campaignDeleteCmd)
}

func runCampaignCreate(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(cmd, campaignFile)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var campaign *channels.Campaign
	switch ch := ch.(type) {
	case *facebook.Channel:
		campaign, err = createCampaign[facebook.CampaignData](ctx, ch, input)
	case *googleads.Channel:
		campaign, err = createCampaign[googleads.CampaignData](ctx, ch, input)
	case *twitter.Channel:
		campaign, err = createCampaign[twitter.CampaignData](ctx, ch, input)
	default:
		err = unsupportedChannel(ch)
	}
	if err != nil {
		return err
	}
	logger.Info("Campaign created", zap.String("channel", ch.ID()), zap.String("campaign_id", campaign.ID))
	return printJSON(cmd, campaign)
}

func runCampaignUpdate(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(cmd, campaignFile)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var campaign *channels.Campaign
	switch ch := ch.(type) {
	case *facebook.Channel:
		campaign, err = updateCampaign[facebook.CampaignUpdate](ctx, ch, args[1], input)
	case *googleads.Channel:
		campaign, err = updateCampaign[googleads.CampaignUpdate](ctx, ch, args[1], input)
	case *twitter.Channel:
		campaign, err = updateCampaign[twitter.CampaignUpdate](ctx, ch, args[1], input)
	default:
		err = unsupportedChannel(ch)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, campaign)
}

func runCampaignStatus(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	id, err := ch.UpdateCampaignStatus(ctx, args[1], args[2])
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"id": id, "status": args[2]})
}

func runCampaignDelete(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	id, err := ch.DeleteCampaign(ctx, args[1])
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"id": id})
}
