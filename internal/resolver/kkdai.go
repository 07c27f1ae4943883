package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"voicerelay/pkg/retrylimit"
)

// kkdaiResolver extracts stream URLs from YouTube without the yt-dlp
// binary. YouTube throttles aggressively, so calls run through an
// adaptive limiter.
type kkdaiResolver struct {
	client  *youtube.Client
	limiter *retrylimit.AdaptiveLimiter
}

func newKkdaiResolver() *kkdaiResolver {
	return &kkdaiResolver{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
	}
}

func (k *kkdaiResolver) streamURL(ctx context.Context, watchURL string) (string, error) {
	videoID, err := extractYouTubeID(watchURL)
	if err != nil {
		return "", err
	}

	var link string
	err = retrylimit.WithRetryMax(ctx, func() error {
		video, verr := k.client.GetVideoContext(ctx, videoID)
		if verr != nil {
			return verr
		}
		formats := video.Formats.WithAudioChannels()
		if len(formats) == 0 {
			return &retrylimit.FatalError{Err: errors.New("no audio formats found for video")}
		}
		link, verr = k.client.GetStreamURLContext(ctx, video, &formats[0])
		return verr
	}, k.limiter, 3)
	if err != nil {
		return "", fmt.Errorf("youtube client: %w", err)
	}
	return link, nil
}

func extractYouTubeID(url string) (string, error) {
	switch {
	case strings.Contains(url, "youtu.be/"):
		rest, ok := cutAfter(url, "youtu.be/")
		if !ok {
			return "", errors.New("invalid YouTube URL format")
		}
		id, _, _ := strings.Cut(rest, "?")
		return id, nil

	case strings.Contains(url, "youtube.com/watch?v="):
		rest, ok := cutAfter(url, "v=")
		if !ok {
			return "", errors.New("invalid YouTube URL format")
		}
		id, _, _ := strings.Cut(rest, "&")
		return id, nil

	default:
		return "", errors.New("unsupported URL format")
	}
}

func cutAfter(s, sep string) (string, bool) {
	_, after, ok := strings.Cut(s, sep)
	if !ok || after == "" {
		return "", false
	}
	return after, true
}
