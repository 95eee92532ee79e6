package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"

	"talkback/internal/domain"
	"talkback/internal/ports"
)

// recordingSession owns one microphone capture from start to stop. It
// drains the capture stream into a buffer and optionally tees chunks to
// a live transcript preview.
type recordingSession struct {
	audio   ports.CaptureSession
	preview ports.PreviewSession
	cancel  context.CancelFunc

	done     chan struct{}
	buf      bytes.Buffer
	readErr  error
	stopping atomic.Bool
}

func beginCapture(
	ctx context.Context,
	audio ports.AudioCapture,
	preview ports.PreviewProvider,
	cfg Config,
	events ports.EventSink,
) (*recordingSession, error) {
	recCtx, cancel := context.WithCancel(ctx)

	session, err := audio.Start(recCtx, cfg.Audio)
	if err != nil {
		cancel()
		return nil, err
	}

	rec := &recordingSession{
		audio:  session,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if preview != nil {
		previewSession, previewErr := preview.Start(recCtx, cfg.Preview)
		if previewErr != nil {
			events.ConversationError(domain.ErrorCodePreview, "live preview unavailable: "+previewErr.Error())
		} else {
			rec.preview = previewSession
			go forwardPartials(previewSession, events)
		}
	}

	go rec.pump(cfg.ChunkSize, events)
	return rec, nil
}

func (r *recordingSession) pump(chunkSize int, events ports.EventSink) {
	defer close(r.done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	preview := r.preview
	buf := make([]byte, chunkSize)
	for {
		n, err := r.audio.Read(buf)
		if n > 0 {
			r.buf.Write(buf[:n])
			if preview != nil {
				if sendErr := preview.SendAudio(buf[:n]); sendErr != nil {
					if !r.stopping.Load() {
						events.ConversationError(domain.ErrorCodePreview, "live preview stream dropped")
					}
					preview = nil
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.readErr = err
			}
			return
		}
	}
}

// stop releases the microphone, waits for the pump to drain, and returns
// the buffered recording. The preview session is closed before joining
// the pump so a stalled preview endpoint cannot block the stop.
func (r *recordingSession) stop() ([]byte, error) {
	r.stopping.Store(true)
	stopErr := r.audio.Stop()
	if r.preview != nil {
		_ = r.preview.Close()
	}
	<-r.done
	r.cancel()

	if r.readErr != nil {
		return nil, r.readErr
	}
	if stopErr != nil {
		return nil, stopErr
	}
	return r.buf.Bytes(), nil
}

func forwardPartials(session ports.PreviewSession, events ports.EventSink) {
	for text := range session.Partials() {
		events.PartialTranscript(text)
	}
}
