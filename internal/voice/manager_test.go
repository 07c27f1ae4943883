package voice

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu          sync.Mutex
	channelID   string
	disconnects int
	src         Source
	onDone      func(error)
}

func (c *fakeConn) Play(src Source, onDone func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.src = src
	c.onDone = onDone
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

func (c *fakeConn) ChannelID() string { return c.channelID }

func (c *fakeConn) disconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

func (c *fakeConn) done() func(error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onDone
}

type fakeConnector struct {
	mu      sync.Mutex
	conns   []*fakeConn
	joinErr error

	// when set, Join blocks until the channel is closed
	block chan struct{}
}

func (f *fakeConnector) Join(guildID, channelID string) (Connection, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	c := &fakeConn{channelID: channelID}
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

func (f *fakeConnector) joined() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func tempArtifact(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "artifact-*.mp3")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestPlayThenStop(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	artifact := tempArtifact(t)
	require.NoError(t, m.Play("guild-1", "chan-1", SpeechSource(artifact)))
	assert.True(t, m.IsActive("guild-1"))
	assert.Equal(t, 1, m.ActiveCount())

	assert.True(t, m.Stop("guild-1"))
	assert.False(t, m.IsActive("guild-1"))
	assert.Equal(t, 1, connector.conn(0).disconnectCount())

	_, err := os.Stat(artifact)
	assert.True(t, os.IsNotExist(err), "artifact should be removed on stop")
}

func TestStopWithoutSession(t *testing.T) {
	m := NewManager(&fakeConnector{})
	assert.False(t, m.Stop("guild-1"))
}

func TestStopIsIdempotent(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	require.NoError(t, m.Play("guild-1", "chan-1", StreamSource("https://example.com/a")))
	assert.True(t, m.Stop("guild-1"))
	assert.False(t, m.Stop("guild-1"))
	assert.Equal(t, 1, connector.conn(0).disconnectCount())
}

func TestPlaySupersedesPrevious(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	first := tempArtifact(t)
	require.NoError(t, m.Play("guild-1", "chan-1", SpeechSource(first)))
	require.NoError(t, m.Play("guild-1", "chan-2", SpeechSource(tempArtifact(t))))

	assert.Equal(t, 1, m.ActiveCount(), "still one session per guild")
	assert.Equal(t, 1, connector.conn(0).disconnectCount(), "old connection released")
	assert.Equal(t, 0, connector.conn(1).disconnectCount())

	_, err := os.Stat(first)
	assert.True(t, os.IsNotExist(err), "old artifact released on supersede")

	refs := m.ActiveChannels()
	require.Len(t, refs, 1)
	assert.Equal(t, "chan-2", refs[0].ChannelID)
}

func TestCompletionTearsDownSession(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	artifact := tempArtifact(t)
	require.NoError(t, m.Play("guild-1", "chan-1", SpeechSource(artifact)))

	connector.conn(0).done()(nil)

	assert.False(t, m.IsActive("guild-1"))
	assert.Equal(t, 1, connector.conn(0).disconnectCount())
	_, err := os.Stat(artifact)
	assert.True(t, os.IsNotExist(err))
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	require.NoError(t, m.Play("guild-1", "chan-1", StreamSource("https://example.com/a")))
	stale := connector.conn(0).done()

	require.NoError(t, m.Play("guild-1", "chan-1", StreamSource("https://example.com/b")))

	// completion of the superseded playback must not touch the new session
	stale(errors.New("pipe closed"))
	assert.True(t, m.IsActive("guild-1"))
	assert.Equal(t, 0, connector.conn(1).disconnectCount())
}

func TestConnectFailureLeavesNoSession(t *testing.T) {
	connector := &fakeConnector{joinErr: errors.New("gateway timeout")}
	m := NewManager(connector)

	artifact := tempArtifact(t)
	err := m.Play("guild-1", "chan-1", SpeechSource(artifact))
	require.ErrorIs(t, err, ErrConnectFailed)
	assert.False(t, m.IsActive("guild-1"))

	_, serr := os.Stat(artifact)
	assert.True(t, os.IsNotExist(serr), "artifact released on connect failure")
}

func TestSupersededWhileConnecting(t *testing.T) {
	connector := &fakeConnector{block: make(chan struct{})}
	m := NewManager(connector)

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Play("guild-1", "chan-1", StreamSource("https://example.com/a"))
	}()

	// wait for the first Play to claim the table before superseding it
	require.Eventually(t, func() bool { return m.IsActive("guild-1") },
		time.Second, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- m.Play("guild-1", "chan-1", StreamSource("https://example.com/b"))
	}()
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		s := m.sessions["guild-1"]
		return s != nil && s.generation == 2
	}, time.Second, 5*time.Millisecond)

	connector.mu.Lock()
	block := connector.block
	connector.block = nil
	connector.mu.Unlock()
	close(block)

	require.ErrorIs(t, <-errCh, ErrSuperseded)
	require.NoError(t, <-done)

	assert.True(t, m.IsActive("guild-1"))
	assert.Equal(t, 2, connector.joined())
	// the loser's connection must not leak
	assert.Equal(t, 1, connector.conn(0).disconnectCount()+connector.conn(1).disconnectCount())
}

func TestJoinHoldsIdleSession(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	require.NoError(t, m.Join("guild-1", "chan-1"))
	assert.True(t, m.IsActive("guild-1"))
	assert.Nil(t, connector.conn(0).done(), "idle session never starts playback")

	assert.True(t, m.Stop("guild-1"))
	assert.Equal(t, 1, connector.conn(0).disconnectCount())
}

func TestStopAll(t *testing.T) {
	connector := &fakeConnector{}
	m := NewManager(connector)

	require.NoError(t, m.Play("guild-1", "chan-1", StreamSource("https://example.com/a")))
	require.NoError(t, m.Play("guild-2", "chan-2", StreamSource("https://example.com/b")))
	require.NoError(t, m.Join("guild-3", "chan-3"))

	assert.Equal(t, 3, m.StopAll())
	assert.Equal(t, 0, m.ActiveCount())
	assert.Equal(t, 0, m.StopAll())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, connector.conn(i).disconnectCount())
	}
}
