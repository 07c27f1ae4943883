// Package tts synthesizes speech into temporary audio files.
package tts

import (
	"context"
	"errors"
)

// ErrSynthesisFailed reports that no audio could be produced for a text.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// Synthesizer converts text to a playable audio file. The returned path is
// owned by the caller until explicitly deleted; implementations never keep
// a reference to it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (string, error)
}
