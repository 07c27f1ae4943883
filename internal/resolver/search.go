package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppalone/ytsearch"

	"voicerelay/pkg/retrylimit"
)

const maxSearchResults = 10

// ytSearch returns ranked YouTube metadata without spawning yt-dlp.
type ytSearch struct {
	client  *ytsearch.Client
	limiter *retrylimit.AdaptiveLimiter
}

func newYTSearch() *ytSearch {
	return &ytSearch{
		client:  ytsearch.NewClient(nil),
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
	}
}

func (s *ytSearch) search(ctx context.Context, query string) ([]Track, error) {
	var tracks []Track
	err := retrylimit.WithRetryMax(ctx, func() error {
		r, serr := s.client.Search(ctx, query)
		if serr != nil {
			return serr
		}
		tracks = tracks[:0]
		for _, v := range r.Results {
			if v.VideoID == "" {
				continue
			}
			tracks = append(tracks, Track{
				Title:    v.Title,
				URL:      "https://www.youtube.com/watch?v=" + v.VideoID,
				Duration: parseColonDuration(v.Duration),
				Source:   "youtube",
			})
			if len(tracks) == maxSearchResults {
				break
			}
		}
		return nil
	}, s.limiter, 3)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: search: %v", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNotFound
	}
	return tracks, nil
}

// parseColonDuration parses "3:20" or "1:05:20" style durations.
func parseColonDuration(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
