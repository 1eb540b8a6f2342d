package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adsmanager/internal/channels"
)

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("an input file is required (--file)")
	}
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// decodeInput parses YAML or JSON into out, rejecting unknown keys.
func decodeInput(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("input is empty")
		}
		return fmt.Errorf("failed to parse input: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type campaignCreator[D any] interface {
	CreateCampaign(ctx context.Context, data D) (*channels.Campaign, error)
}

type campaignUpdater[U any] interface {
	UpdateCampaign(ctx context.Context, campaignID string, data U) (*channels.Campaign, error)
}

type audienceCreator[A any] interface {
	CreateCustomAudience(ctx context.Context, data A) (*channels.Audience, error)
}

type adCreator[A any] interface {
	CreateAd(ctx context.Context, data A) (*channels.Ad, error)
}

func createCampaign[D any](ctx context.Context, p campaignCreator[D], input []byte) (*channels.Campaign, error) {
	var data D
	if err := decodeInput(input, &data); err != nil {
		return nil, err
	}
	return p.CreateCampaign(ctx, data)
}

func updateCampaign[U any](ctx context.Context, p campaignUpdater[U], campaignID string, input []byte) (*channels.Campaign, error) {
	var data U
	if err := decodeInput(input, &data); err != nil {
		return nil, err
	}
	return p.UpdateCampaign(ctx, campaignID, data)
}

func createAudience[A any](ctx context.Context, p audienceCreator[A], input []byte) (*channels.Audience, error) {
	var data A
	if err := decodeInput(input, &data); err != nil {
		return nil, err
	}
	return p.CreateCustomAudience(ctx, data)
}

func createAd[A any](ctx context.Context, p adCreator[A], input []byte) (*channels.Ad, error) {
	var data A
	if err := decodeInput(input, &data); err != nil {
		return nil, err
	}
	return p.CreateAd(ctx, data)
}

// unsupportedChannel reports a channel implementation the CLI cannot decode
// typed inputs for.
func unsupportedChannel(ch channels.Channel) error {
	return fmt.Errorf("channel %s: %w: %T", ch.ID(), channels.ErrNotImplemented, ch)
}
