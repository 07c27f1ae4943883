package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/stream"))
	assert.True(t, IsURL("http://radio.example.com:8000/live"))
	assert.False(t, IsURL("never gonna give you up"))
	assert.False(t, IsURL("ftp://example.com/file"))
	assert.False(t, IsURL("https://"))
	assert.False(t, IsURL(""))
}

func TestIsYouTubeURL(t *testing.T) {
	assert.True(t, IsYouTubeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, IsYouTubeURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.False(t, IsYouTubeURL("https://soundcloud.com/some/track"))
}

func TestExtractYouTubeID(t *testing.T) {
	cases := []struct {
		url string
		id  string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ"},
	}
	for _, c := range cases {
		id, err := extractYouTubeID(c.url)
		require.NoError(t, err, c.url)
		assert.Equal(t, c.id, id, c.url)
	}

	_, err := extractYouTubeID("https://example.com/video")
	assert.Error(t, err)
	_, err = extractYouTubeID("https://youtu.be/")
	assert.Error(t, err)
}

func TestParseColonDuration(t *testing.T) {
	assert.Equal(t, 3*time.Minute+20*time.Second, parseColonDuration("3:20"))
	assert.Equal(t, time.Hour+5*time.Minute+20*time.Second, parseColonDuration("1:05:20"))
	assert.Equal(t, 42*time.Second, parseColonDuration("0:42"))
	assert.Equal(t, time.Duration(0), parseColonDuration("200"))
	assert.Equal(t, time.Duration(0), parseColonDuration("a:b"))
	assert.Equal(t, time.Duration(0), parseColonDuration(""))
}

func TestResolveStreamEmptyQuery(t *testing.T) {
	r := NewYTDLP(time.Second)
	_, err := r.ResolveStream(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveStreamPassesThroughDirectURLs(t *testing.T) {
	r := NewYTDLP(time.Second)
	link, err := r.ResolveStream(context.Background(), "https://radio.example.com/live.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://radio.example.com/live.mp3", link)
}
