package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the voice chat backend.
type Config struct {
	Transcribe TranscribeConfig
	Reply      ReplyConfig
	Audio      AudioConfig
	Speech     SpeechConfig
	Preview    PreviewConfig
	Rules      RulesConfig
	Settings   SettingsConfig
	Session    SessionConfig
}

type TranscribeConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type ReplyConfig struct {
	BaseURL      string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	EchoDelay    time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SpeechConfig struct {
	Command string
	Args    []string
}

type PreviewConfig struct {
	URL string
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type SettingsConfig struct {
	Path string
}

type SessionConfig struct {
	ChunkSize int
}

// Load resolves configuration from environment variables and sensible
// defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	rulesPath := strings.TrimSpace(os.Getenv("TALKBACK_RULES_FILE"))
	if rulesPath == "" {
		rulesPath = firstExisting(filepath.Join(home, ".config", "talkback", "transcript.rules"))
	}

	cfg := Config{
		Transcribe: TranscribeConfig{
			Endpoint: envOrDefault("TALKBACK_TRANSCRIBE_URL", "http://127.0.0.1:8001/transcribe"),
			APIKey:   strings.TrimSpace(os.Getenv("TALKBACK_TRANSCRIBE_API_KEY")),
			Timeout:  time.Duration(envOrDefaultInt("TALKBACK_TRANSCRIBE_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		Reply: ReplyConfig{
			BaseURL:      strings.TrimSpace(os.Getenv("TALKBACK_REPLY_BASE_URL")),
			Model:        envOrDefault("TALKBACK_REPLY_MODEL", "gpt-4o-mini"),
			SystemPrompt: envOrDefault("TALKBACK_REPLY_SYSTEM_PROMPT", "You are a friendly voice assistant. Keep replies short and conversational."),
			Timeout:      time.Duration(envOrDefaultInt("TALKBACK_REPLY_TIMEOUT_MS", 30000)) * time.Millisecond,
			EchoDelay:    time.Duration(envOrDefaultInt("TALKBACK_ECHO_DELAY_MS", 600)) * time.Millisecond,
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("TALKBACK_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("TALKBACK_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("TALKBACK_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("TALKBACK_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("TALKBACK_CHANNELS", 1),
		},
		Speech: SpeechConfig{
			Command: envOrDefault("TALKBACK_SPEECH_COMMAND", "espeak-ng"),
			Args:    splitArgs(os.Getenv("TALKBACK_SPEECH_ARGS")),
		},
		Preview: PreviewConfig{
			URL: strings.TrimSpace(os.Getenv("TALKBACK_PREVIEW_URL")),
		},
		Rules: RulesConfig{
			Path:           rulesPath,
			IterationLimit: envOrDefaultInt("TALKBACK_RULE_ITERATION_LIMIT", 30),
		},
		Settings: SettingsConfig{
			Path: strings.TrimSpace(os.Getenv("TALKBACK_SETTINGS_FILE")),
		},
		Session: SessionConfig{
			ChunkSize: envOrDefaultInt("TALKBACK_AUDIO_CHUNK_SIZE", 4096),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Transcribe.Timeout <= 0 {
		cfg.Transcribe.Timeout = 30 * time.Second
	}
	if cfg.Reply.Timeout <= 0 {
		cfg.Reply.Timeout = 30 * time.Second
	}

	return cfg, nil
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitArgs(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
