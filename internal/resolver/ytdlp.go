package resolver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"voicerelay/internal/logging"
)

// YTDLP resolves stream URLs with the yt-dlp binary, falling back to a
// native YouTube client when the binary fails on a YouTube URL. Non-YouTube
// URLs pass through untouched: ffmpeg consumes them directly.
type YTDLP struct {
	// Timeout bounds each resolve/search call when the caller's context
	// carries no earlier deadline.
	Timeout time.Duration

	fallback *kkdaiResolver
	search   *ytSearch
	log      zerolog.Logger
}

// NewYTDLP creates the default resolver chain.
func NewYTDLP(timeout time.Duration) *YTDLP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YTDLP{
		Timeout:  timeout,
		fallback: newKkdaiResolver(),
		search:   newYTSearch(),
		log:      logging.For("resolver"),
	}
}

func (r *YTDLP) ResolveStream(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrNotFound
	}

	// Direct non-YouTube URLs (radio streams, direct files) need no
	// extraction at all.
	if IsURL(query) && !IsYouTubeURL(query) {
		return query, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	target := query
	if !IsURL(query) {
		target = "ytsearch1:" + query
	}

	link, err := r.extract(ctx, target)
	if err == nil {
		return link, nil
	}
	if errors.Is(err, ErrTimeout) {
		return "", err
	}

	if IsYouTubeURL(query) {
		r.log.Warn().Err(err).Str("url", query).Msg("yt-dlp failed, trying native client")
		if link, ferr := r.fallback.streamURL(ctx, query); ferr == nil {
			return link, nil
		}
	}
	return "", err
}

// extract runs yt-dlp and returns the first URL it prints.
func (r *YTDLP) extract(ctx context.Context, target string) (string, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", "-f", "bestaudio", "--get-url", target)
	output, err := cmd.Output()
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: yt-dlp: %v", ErrTimeout, ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}

	link, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "http") {
		return "", ErrNotFound
	}
	return link, nil
}

func (r *YTDLP) Search(ctx context.Context, query string) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.search.search(ctx, query)
}

func (r *YTDLP) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.Timeout)
}
