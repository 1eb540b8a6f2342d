package main

import (
	"context"

	"github.com/spf13/cobra"

	"adsmanager/internal/channels"
	"adsmanager/internal/channels/facebook"
	"adsmanager/internal/channels/googleads"
	"adsmanager/internal/channels/twitter"
)

var audienceFile string

// audienceCmd is the parent command for audience operations
var audienceCmd = &cobra.Command{
	Use:   "audience",
	Short: "Manage custom audiences and their members",
}

var audienceCreateCmd = &cobra.Command{
	Use:   "create [channel]",
	Short: "Create an empty custom audience",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudienceCreate,
}

var audienceAddUsersCmd = &cobra.Command{
	Use:   "add-users [channel] [audience-id]",
	Short: "Add users to a custom audience",
	Long: `Adds users to an audience. Emails and phone numbers are normalized and
hashed before they leave the process.

The input file holds:
  users:
    - email: jane@example.com
      phone: "+1 555 0100"
  expires_at: 2025-01-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudienceUsers(cmd, args, channels.Channel.CreateCustomAudienceUsers)
	},
}

var audienceRemoveUsersCmd = &cobra.Command{
	Use:   "remove-users [channel] [audience-id]",
	Short: "Remove users from a custom audience",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudienceUsers(cmd, args, channels.Channel.DeleteCustomAudienceUsers)
	},
}

func init() {
	for _, c := range []*cobra.Command{audienceCreateCmd, audienceAddUsersCmd, audienceRemoveUsersCmd} {
		c.Flags().StringVarP(&audienceFile, "file", "f", "", "Input file (YAML or JSON, - for stdin)")
		audienceCmd.AddCommand(c)
	}
}

func runAudienceCreate(cmd *cobra.Command, args []string) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(cmd, audienceFile)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var audience *channels.Audience
	switch ch := ch.(type) {
	case *facebook.Channel:
		audience, err = createAudience[facebook.AudienceData](ctx, ch, input)
	case *googleads.Channel:
		audience, err = createAudience[googleads.UserListData](ctx, ch, input)
	case *twitter.Channel:
		audience, err = createAudience[twitter.AudienceData](ctx, ch, input)
	default:
		err = unsupportedChannel(ch)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, audience)
}

type usersOp func(ch channels.Channel, ctx context.Context, audienceID string, data channels.UserData) (*channels.AudienceUsersResult, error)

func runAudienceUsers(cmd *cobra.Command, args []string, op usersOp) error {
	ch, err := registry.Use(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(cmd, audienceFile)
	if err != nil {
		return err
	}
	var data channels.UserData
	if err := decodeInput(input, &data); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := op(ch, ctx, args[1], data)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
