package reply

import (
	"context"
	"fmt"
	"time"

	"talkback/internal/domain"
)

const echoTemplate = "Echo: %s (configure credential for real replies)"

// EchoGenerator is the deterministic local fallback used when no
// credential is configured. It performs no network access; the fixed
// delay keeps the UI timing identical to the networked path.
type EchoGenerator struct {
	delay time.Duration
}

func NewEchoGenerator(delay time.Duration) *EchoGenerator {
	if delay < 0 {
		delay = 0
	}
	return &EchoGenerator{delay: delay}
}

func (g *EchoGenerator) Generate(ctx context.Context, text string, _ string) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", &domain.GenerationError{Detail: "echo fallback interrupted", Err: ctx.Err()}
		}
	}
	return fmt.Sprintf(echoTemplate, text), nil
}
