package main

import (
	"github.com/spf13/cobra"

	"adsmanager/internal/channels"
	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
)

var adFile string

// adCmd is the parent command for standalone creatives
var adCmd = &cobra.Command{
	Use:   "ad",
	Short: "Create standalone creatives",
}

var adCreateCmd = &cobra.Command{
	Use:   "create [channel]",
	Short: "Create an ad creative (Facebook) or tweet (Twitter)",
	Long: `Creates a creative outside a campaign. Google Ads does not support this;
its ads are created with the campaign.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdCreate,
}

func init() {
	adCreateCmd.Flags().StringVarP(&adFile, "file", "f", "", "Ad input file (YAML or JSON, - for stdin)")
	adCmd.AddCommand(adCreateCmd)
}

func runAdCreate(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(cmd, adFile)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var ad *channels.Ad
	switch ch := ch.(type) {
	case *facebook.Channel:
		ad, err = createAd[facebook.AdCreativeData](ctx, ch, input)
	case *googleads.Channel:
		ad, err = createAd[any](ctx, ch, input)
	case *twitter.Channel:
		ad, err = createAd[twitter.TweetData](ctx, ch, input)
	default:
		err = unsupportedChannel(ch)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, ad)
}
