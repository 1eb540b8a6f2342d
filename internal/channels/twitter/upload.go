package twitter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"adsmanager/internal/channels"
	"adsmanager/internal/transport"
)

// uploadMedia fetches mediaURL, pushes it through the chunked upload
// protocol as a single segment (INIT, APPEND, FINALIZE) and adds the result
// to the account media library. It returns the media key.
func (c *Channel) uploadMedia(ctx context.Context, s session, mediaURL, owner string, log *zap.Logger) (string, error) {
	media, err := transport.FetchMedia(ctx, c.fetcher, mediaURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media: %w", err)
	}
	log = log.With(zap.String("file", media.Name))
	log.Info("Uploading media", zap.Int("bytes", media.Size))

	var started mediaResponse
	if _, err := s.api.Upload(ctx, composeUploadInit(media.Name, media.Size, owner).values(), &started); err != nil {
		return "", fmt.Errorf("failed to initialize media upload: %w", err)
	}
	if started.MediaIDString == "" {
		return "", &channels.UpstreamError{Provider: "twitter", Op: "POST media/upload INIT", Err: errors.New("response has no media id")}
	}

	if _, err := s.api.Upload(ctx, composeUploadAppend(started.MediaIDString, media.Base64).values(), nil); err != nil {
		return "", fmt.Errorf("failed to append media: %w", err)
	}

	var finished mediaResponse
	if _, err := s.api.Upload(ctx, composeUploadFinalize(started.MediaIDString).values(), &finished); err != nil {
		return "", fmt.Errorf("failed to finalize media upload: %w", err)
	}
	if finished.MediaKey == "" {
		return "", &channels.UpstreamError{Provider: "twitter", Op: "POST media/upload FINALIZE", Err: errors.New("response has no media key")}
	}

	log.Info("Adding media to media library", zap.String("media_key", finished.MediaKey))
	if _, err := s.api.Post(ctx, s.account+"/media_library", composeMediaLibrary(media.Name, finished.MediaKey).values(), nil); err != nil {
		return "", fmt.Errorf("failed to add media to media library: %w", err)
	}
	return finished.MediaKey, nil
}

// uploadAll uploads every media URL concurrently and returns the media keys
// in input order. A failed upload does not cancel the others.
func (c *Channel) uploadAll(ctx context.Context, s session, mediaURLs []string, owner string, log *zap.Logger) ([]string, error) {
	keys := make([]string, len(mediaURLs))
	var g errgroup.Group
	for i, u := range mediaURLs {
		g.Go(func() error {
			key, err := c.uploadMedia(ctx, s, u, owner, log.With(zap.Int("media", i+1), zap.Int("of", len(mediaURLs))))
			if err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}
