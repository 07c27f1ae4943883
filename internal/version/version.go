package version

// Build metadata. BuildDate and GoVersion are filled in by the linker:
//
//	go build -ldflags "-X voicerelay/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	AppName        = "VoiceRelay"
	AppDescription = "Discord voice relay: streams resolved media and synthesized speech into voice channels, controllable via chat commands and an HTTP API."
	BuildDate      = ""
	GoVersion      = ""
)
