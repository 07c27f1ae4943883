package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"voicerelay/pkg/retrylimit"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"
	// The endpoint rejects long inputs; text is split on word boundaries.
	maxChunkLen = 200
)

// GoogleTranslate synthesizes speech through the public Google Translate
// TTS endpoint and writes the mp3 chunks to a temp file.
type GoogleTranslate struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration

	limiter *retrylimit.AdaptiveLimiter
}

func NewGoogleTranslate(timeout time.Duration) *GoogleTranslate {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleTranslate{
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Timeout: timeout,
		limiter: retrylimit.NewAdaptiveLimiter(3, 1, 5, 1, 0.5),
	}
}

// Synthesize fetches the spoken form of text and returns the path of a
// temp mp3 owned by the caller. The file is removed on any error.
func (g *GoogleTranslate) Synthesize(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrSynthesisFailed)
	}
	if lang == "" {
		lang = "en"
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	f, err := os.CreateTemp("", "voicerelay-tts-*.mp3")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrSynthesisFailed, err)
	}
	path := f.Name()

	for _, chunk := range splitChunks(text, maxChunkLen) {
		audio, err := g.fetchChunk(ctx, chunk, lang)
		if err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
		}
		if _, err := f.Write(audio); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: write artifact: %v", ErrSynthesisFailed, err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: close artifact: %v", ErrSynthesisFailed, err)
	}
	return path, nil
}

// fetchChunk returns one chunk's audio bytes. The body is buffered so a
// retry after a mid-body failure cannot leave partial bytes behind.
func (g *GoogleTranslate) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("textlen", fmt.Sprintf("%d", utf8.RuneCountInString(chunk)))

	var audio []byte
	err := retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
		if err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		resp, err := g.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tts endpoint returned %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		audio = data
		return nil
	}, g.limiter, 3)
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// splitChunks splits text into pieces of at most max runes, breaking on
// spaces where possible. Cutting by runes keeps multibyte text valid.
func splitChunks(text string, max int) []string {
	var chunks []string
	runes := []rune(strings.TrimSpace(text))
	for len(runes) > max {
		cut := -1
		for i := max - 1; i > 0; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = max
		}
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		for cut < len(runes) && runes[cut] == ' ' {
			cut++
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
