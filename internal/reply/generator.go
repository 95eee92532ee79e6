package reply

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"talkback/internal/domain"
)

// Config controls reply generation.
type Config struct {
	BaseURL      string
	Model        string
	SystemPrompt string
	EchoDelay    time.Duration
}

// Generator produces bot replies. With an empty credential it routes to
// the echo fallback; otherwise it calls an OpenAI-compatible chat
// completion endpoint using the caller-supplied credential, so credential
// rotation needs no client state.
type Generator struct {
	cfg  Config
	echo *EchoGenerator
}

func NewGenerator(cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.EchoDelay <= 0 {
		cfg.EchoDelay = 600 * time.Millisecond
	}
	return &Generator{cfg: cfg, echo: NewEchoGenerator(cfg.EchoDelay)}
}

func (g *Generator) Generate(ctx context.Context, text string, credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return g.echo.Generate(ctx, text, "")
	}

	opts := []option.RequestOption{option.WithAPIKey(credential)}
	if g.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(g.cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if g.cfg.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(g.cfg.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(text))

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.cfg.Model),
		Messages: messages,
	})
	if err != nil {
		return "", &domain.GenerationError{Detail: "reply service request failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Detail: "reply service returned no choices"}
	}

	replyText := strings.TrimSpace(resp.Choices[0].Message.Content)
	if replyText == "" {
		return "", &domain.GenerationError{Detail: "reply service returned an empty reply"}
	}
	return replyText, nil
}
