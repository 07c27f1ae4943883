package voice

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"voicerelay/internal/logging"
)

var (
	// ErrConnectFailed reports that the voice channel could not be joined.
	ErrConnectFailed = errors.New("voice connect failed")
	// ErrSuperseded reports that another Play call replaced this one while
	// it was still connecting.
	ErrSuperseded = errors.New("session superseded")
)

type sessionState int

const (
	stateConnecting sessionState = iota
	statePlaying
	stateDisconnecting
)

// session is one guild's live playback. Owned exclusively by the Manager;
// it leaves the table before its resources are torn down.
type session struct {
	guildID    string
	channelID  string
	generation uint64
	state      sessionState
	conn       Connection
	artifact   string

	// artifact removal must happen exactly once regardless of which path
	// (supersede, stop, connect failure, completion) tears the session down
	cleanupOnce sync.Once
}

// ChannelRef identifies the voice channel of an active session.
type ChannelRef struct {
	GuildID   string
	ChannelID string
}

// Manager owns at most one playback session per guild. All entry points
// (slash commands, legacy text commands, HTTP handlers) share a single
// Manager; the table lock covers only table mutation, never the blocking
// connect/disconnect/playback work.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*session
	generation uint64

	connector Connector
	log       zerolog.Logger
}

// NewManager creates a Manager using the given connector.
func NewManager(connector Connector) *Manager {
	return &Manager{
		sessions:  make(map[string]*session),
		connector: connector,
		log:       logging.For("voice"),
	}
}

// Play replaces whatever the guild is currently playing with src. It
// returns once playback has started; completion is handled asynchronously.
// The src's artifact (if any) is owned by the new session from this point
// on and is deleted even when Play fails.
func (m *Manager) Play(guildID, channelID string, src Source) error {
	s, err := m.begin(guildID, channelID, src.Path)
	if err != nil {
		return err
	}

	gen := s.generation
	s.conn.Play(src, func(perr error) {
		m.completed(guildID, gen, perr)
	})
	m.log.Info().
		Str("guild", guildID).
		Str("channel", channelID).
		Str("kind", src.Kind.String()).
		Uint64("generation", gen).
		Msg("playback started")
	return nil
}

// Join connects to a voice channel without playing anything, holding an
// idle session until it is stopped or superseded.
func (m *Manager) Join(guildID, channelID string) error {
	_, err := m.begin(guildID, channelID, "")
	if err == nil {
		m.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("joined voice channel")
	}
	return err
}

// begin supersedes the guild's current session, connects to channelID and
// installs the new session in the table. The returned session is in state
// Playing with its connection set.
func (m *Manager) begin(guildID, channelID, artifact string) (*session, error) {
	m.mu.Lock()
	old := m.sessions[guildID]
	delete(m.sessions, guildID)
	m.generation++
	s := &session{
		guildID:    guildID,
		channelID:  channelID,
		generation: m.generation,
		state:      stateConnecting,
		artifact:   artifact,
	}
	m.sessions[guildID] = s
	m.mu.Unlock()

	// Old session teardown is best-effort and must not fail the new play.
	if old != nil {
		m.teardown(old)
	}

	conn, err := m.connector.Join(guildID, channelID)

	m.mu.Lock()
	cur, ok := m.sessions[guildID]
	if !ok || cur.generation != s.generation {
		// A concurrent Play or Stop superseded us while we were connecting.
		// Our table entry is gone and its teardown already released the
		// artifact; only the freshly won connection is ours to close.
		m.mu.Unlock()
		if err == nil {
			if derr := conn.Disconnect(); derr != nil {
				m.log.Warn().Err(derr).Str("guild", guildID).Msg("disconnect of superseded connection failed")
			}
		}
		return nil, ErrSuperseded
	}
	if err != nil {
		delete(m.sessions, guildID)
		m.mu.Unlock()
		s.removeArtifact(m.log)
		return nil, fmt.Errorf("%w: join %s/%s: %v", ErrConnectFailed, guildID, channelID, err)
	}
	cur.conn = conn
	cur.state = statePlaying
	m.mu.Unlock()
	return cur, nil
}

// Stop tears down the guild's session, if any. Reports whether one existed.
func (m *Manager) Stop(guildID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	if ok {
		delete(m.sessions, guildID)
		s.state = stateDisconnecting
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.teardown(s)
	m.log.Info().Str("guild", guildID).Msg("session stopped")
	return true
}

// StopAll stops every active session and returns how many were stopped.
func (m *Manager) StopAll() int {
	m.mu.Lock()
	stopped := make([]*session, 0, len(m.sessions))
	for guildID, s := range m.sessions {
		delete(m.sessions, guildID)
		s.state = stateDisconnecting
		stopped = append(stopped, s)
	}
	m.mu.Unlock()

	for _, s := range stopped {
		m.teardown(s)
	}
	if len(stopped) > 0 {
		m.log.Info().Int("count", len(stopped)).Msg("all sessions stopped")
	}
	return len(stopped)
}

// IsActive reports whether the guild has a live session.
func (m *Manager) IsActive(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[guildID]
	return ok
}

// ActiveCount returns the number of live sessions across all guilds.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ActiveChannels lists the voice channels of all live sessions.
func (m *Manager) ActiveChannels() []ChannelRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]ChannelRef, 0, len(m.sessions))
	for _, s := range m.sessions {
		refs = append(refs, ChannelRef{GuildID: s.guildID, ChannelID: s.channelID})
	}
	return refs
}

// completed is the playback completion callback. It runs on the
// connection's goroutine and may race with Play/Stop from any entry point;
// the generation check makes stale deliveries a no-op.
func (m *Manager) completed(guildID string, generation uint64, perr error) {
	if perr != nil {
		m.log.Error().Err(perr).Str("guild", guildID).Uint64("generation", generation).Msg("playback error")
	}

	m.mu.Lock()
	s, ok := m.sessions[guildID]
	if !ok || s.generation != generation {
		m.mu.Unlock()
		// The session this callback belongs to was already stopped or
		// superseded; its teardown handled the resources.
		m.log.Debug().Str("guild", guildID).Uint64("generation", generation).Msg("stale completion ignored")
		return
	}
	delete(m.sessions, guildID)
	s.state = stateDisconnecting
	m.mu.Unlock()

	m.teardown(s)
	m.log.Info().Str("guild", guildID).Uint64("generation", generation).Msg("playback finished")
}

// teardown releases a session's resources after it has left the table.
// Failures are logged, never propagated.
func (m *Manager) teardown(s *session) {
	if s.conn != nil {
		if err := s.conn.Disconnect(); err != nil {
			m.log.Warn().Err(err).Str("guild", s.guildID).Msg("disconnect failed")
		}
	}
	s.removeArtifact(m.log)
}

func (s *session) removeArtifact(log zerolog.Logger) {
	if s.artifact == "" {
		return
	}
	s.cleanupOnce.Do(func() {
		if err := os.Remove(s.artifact); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.artifact).Msg("failed to remove audio artifact")
		}
	})
}
