// Package stream turns an audio input (stream URL or local file) into raw
// PCM via ffmpeg and pushes it into a Discord voice connection as opus.
package stream

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// Open starts an ffmpeg transcode of input to s16le 48kHz stereo and
// returns its stdout pipe. volume scales the audio; 1.0 (or 0) leaves it
// untouched. The cleanup func kills ffmpeg and reaps the process; it is
// safe to call after the pipe is drained.
func Open(input string, volume float64) (io.ReadCloser, func(), error) {
	ffmpeg := exec.Command("ffmpeg", ffmpegArgs(input, volume)...)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		_ = ffmpeg.Process.Kill()
		_ = ffmpeg.Wait()
	}

	return reader, cleanup, nil
}

func ffmpegArgs(input string, volume float64) []string {
	args := []string{}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	args = append(args, "-i", input)
	if volume > 0 && volume != 1.0 {
		args = append(args, "-af", fmt.Sprintf("volume=%.2f", volume))
	}
	return append(args,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}
