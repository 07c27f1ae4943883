package voice

// SourceKind distinguishes resolved media streams from synthesized speech.
type SourceKind int

const (
	SourceStream SourceKind = iota
	SourceSpeech
)

func (k SourceKind) String() string {
	if k == SourceSpeech {
		return "speech"
	}
	return "stream"
}

// Source describes one playable audio input. For SourceSpeech the Path
// points at a temporary artifact whose ownership transfers to the session
// when passed to Manager.Play; the session deletes it exactly once.
type Source struct {
	Kind SourceKind
	URL  string
	Path string
}

// StreamSource wraps a resolved stream URL.
func StreamSource(url string) Source {
	return Source{Kind: SourceStream, URL: url}
}

// SpeechSource wraps a synthesized audio file path.
func SpeechSource(path string) Source {
	return Source{Kind: SourceSpeech, Path: path}
}

// Input returns the ffmpeg input argument for the source.
func (s Source) Input() string {
	if s.Kind == SourceSpeech {
		return s.Path
	}
	return s.URL
}
