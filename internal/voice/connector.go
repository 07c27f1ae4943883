package voice

// Connection is an established audio link to one voice channel. The
// Manager is its only owner: it starts at most one playback on it and
// disconnects it exactly once.
type Connection interface {
	// Play starts asynchronous playback of src. onDone is invoked exactly
	// once when playback ends, errors, or is cut off by Stop/Disconnect.
	// It runs on the connection's own goroutine.
	Play(src Source, onDone func(error))

	// Disconnect stops any running playback and leaves the voice channel.
	Disconnect() error

	ChannelID() string
}

// Connector establishes voice connections. Implemented for discordgo in
// this package; tests substitute fakes.
type Connector interface {
	Join(guildID, channelID string) (Connection, error)
}
