package bootstrap

import (
	"talkback/internal/audio"
	"talkback/internal/config"
	"talkback/internal/ports"
	"talkback/internal/reply"
	"talkback/internal/rules"
	"talkback/internal/settings"
	"talkback/internal/speech"
	"talkback/internal/transcribe"
	"talkback/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Conversation *usecase.Conversation
	Config       config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	store, err := settings.NewFileStore(cfg.Settings.Path)
	if err != nil {
		return Services{}, err
	}

	filter, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	var preview ports.PreviewProvider
	if cfg.Preview.URL != "" {
		preview = transcribe.NewPreviewProvider(cfg.Preview.URL)
	}

	conversation := usecase.NewConversation(
		audio.NewFFmpegCapture(cfg.Audio.RecorderCommand),
		transcribe.NewClient(transcribe.Config{
			Endpoint: cfg.Transcribe.Endpoint,
			APIKey:   cfg.Transcribe.APIKey,
			Timeout:  cfg.Transcribe.Timeout,
		}),
		filter,
		reply.NewGenerator(reply.Config{
			BaseURL:      cfg.Reply.BaseURL,
			Model:        cfg.Reply.Model,
			SystemPrompt: cfg.Reply.SystemPrompt,
			EchoDelay:    cfg.Reply.EchoDelay,
		}),
		speech.NewCommandSynthesizer(cfg.Speech.Command, cfg.Speech.Args...),
		store,
		preview,
		eventSink,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Preview: ports.PreviewConfig{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
				Encoding:   "linear16",
			},
			ChunkSize:         cfg.Session.ChunkSize,
			TranscribeTimeout: cfg.Transcribe.Timeout,
			GenerateTimeout:   cfg.Reply.Timeout,
		},
	)

	return Services{Conversation: conversation, Config: cfg}, nil
}
