package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"talkback/internal/ports"
)

// PreviewProvider streams recording audio to a websocket endpoint for
// live partial transcripts. Preview output is advisory only; the final
// transcript always comes from the buffered upload.
type PreviewProvider struct {
	url string
}

func NewPreviewProvider(rawURL string) *PreviewProvider {
	return &PreviewProvider{url: rawURL}
}

func (p *PreviewProvider) Start(ctx context.Context, cfg ports.PreviewConfig) (ports.PreviewSession, error) {
	if strings.TrimSpace(p.url) == "" {
		return nil, errors.New("preview URL is not configured")
	}

	wsURL, err := buildPreviewURL(p.url, cfg)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to preview endpoint: %w", err)
	}

	session := &previewSession{
		conn:     conn,
		partials: make(chan string, 16),
		audio:    make(chan []byte, 32),
		done:     make(chan struct{}),
	}

	go session.readLoop()
	go session.writeLoop()
	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type previewSession struct {
	conn *websocket.Conn

	partials chan string
	audio    chan []byte
	done     chan struct{}

	closeOnce sync.Once

	sendMu     sync.Mutex
	sendClosed bool
}

func (s *previewSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.Lock()
	closed := s.sendClosed
	s.sendMu.Unlock()
	if closed {
		return errors.New("preview session is closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.done:
		return errors.New("preview session is closed")
	default:
		// Drop rather than stall the recording pump.
		return nil
	}
}

func (s *previewSession) Partials() <-chan string {
	return s.partials
}

func (s *previewSession) Close() error {
	s.closeOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		s.sendMu.Unlock()

		close(s.done)
		_ = s.conn.Close()
	})
	return nil
}

func (s *previewSession) writeLoop() {
	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *previewSession) readLoop() {
	defer close(s.partials)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		text := extractPartial(payload)
		if text == "" {
			continue
		}

		select {
		case s.partials <- text:
		case <-s.done:
			return
		default:
			// Drop rather than stall the recording pump.
		}
	}
}

// extractPartial accepts either "text" or "transcript" as the payload key.
func extractPartial(payload []byte) string {
	var parsed struct {
		Text       string `json:"text"`
		Transcript string `json:"transcript"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return ""
	}
	if text := strings.TrimSpace(parsed.Text); text != "" {
		return text
	}
	return strings.TrimSpace(parsed.Transcript)
}

func buildPreviewURL(rawURL string, cfg ports.PreviewConfig) (string, error) {
	base := strings.TrimSpace(rawURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	previewURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid preview URL: %w", err)
	}

	if cfg.Encoding == "" {
		cfg.Encoding = "linear16"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	query := previewURL.Query()
	query.Set("encoding", cfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	query.Set("channels", strconv.Itoa(cfg.Channels))
	previewURL.RawQuery = query.Encode()
	return previewURL.String(), nil
}
