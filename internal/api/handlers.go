package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"voicerelay/internal/resolver"
	"voicerelay/internal/voice"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// targetChannel picks the requested channel or falls back to the first
// currently active session's channel.
func (s *Server) targetChannel(channelID string) (guildID, chanID string, err error) {
	if channelID != "" {
		guildID, err = s.channels.GuildOfChannel(channelID)
		if err != nil {
			return "", "", err
		}
		return guildID, channelID, nil
	}
	refs := s.manager.ActiveChannels()
	if len(refs) == 0 {
		return "", "", errors.New("no voice channel available")
	}
	return refs[0].GuildID, refs[0].ChannelID, nil
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "no message provided")
		return
	}

	guildID, channelID, err := s.targetChannel(req.ChannelID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	artifact, err := s.synth.Synthesize(r.Context(), req.Message, s.ttsLang)
	if err != nil {
		s.log.Error().Err(err).Msg("notify: synthesis failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.manager.Play(guildID, channelID, voice.SpeechSource(artifact)); err != nil {
		s.log.Error().Err(err).Str("guild", guildID).Msg("notify: playback failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Str("channel", channelID).Msg("notify: speaking")
	writeJSON(w, http.StatusOK, map[string]any{"status": "playing"})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL       string `json:"url"`
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "no URL provided")
		return
	}

	guildID, channelID, err := s.targetChannel(req.ChannelID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	streamURL, err := s.resolver.ResolveStream(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) || errors.Is(err, resolver.ErrTimeout) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Str("url", req.URL).Msg("stream: resolve failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.manager.Play(guildID, channelID, voice.StreamSource(streamURL)); err != nil {
		s.log.Error().Err(err).Str("guild", guildID).Msg("stream: playback failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Str("url", req.URL).Str("channel", channelID).Msg("stream: playing")
	writeJSON(w, http.StatusOK, map[string]any{"status": "playing", "url": req.URL})
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action  string `json:"action"`
		GuildID string `json:"guild_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "stop":
		if req.GuildID != "" {
			s.manager.Stop(req.GuildID)
		} else {
			s.manager.StopAll()
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "stopped"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "no query provided")
		return
	}

	tracks, err := s.resolver.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
			return
		}
		s.log.Error().Err(err).Str("query", query).Msg("search failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type result struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Duration int    `json:"duration"`
		Source   string `json:"source"`
	}
	results := make([]result, 0, len(tracks))
	for _, t := range tracks {
		results = append(results, result{
			Title:    t.Title,
			URL:      t.URL,
			Duration: int(t.Duration.Seconds()),
			Source:   t.Source,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                   "ok",
		"bot_name":                 s.botName,
		"active_voice_connections": s.manager.ActiveCount(),
	})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "no user_id provided")
		return
	}

	guildID, channelID, ok := s.channels.UserVoiceChannel(req.UserID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"in_voice": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"in_voice":   true,
		"guild_id":   guildID,
		"channel_id": channelID,
	})
}
