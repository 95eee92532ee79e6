package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talkback/internal/domain"
)

func TestClientTranscribeAcceptsTextKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected file form field: %v", err)
		} else {
			payload, _ := io.ReadAll(file)
			if string(payload) != "RIFFaudio" {
				t.Errorf("unexpected upload payload: %q", string(payload))
			}
			_ = file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" hello world "}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	text, err := client.Transcribe(context.Background(), []byte("RIFFaudio"))
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected transcript: %q", text)
	}
}

func TestClientTranscribeAcceptsTranscriptionKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transcription":"namaskara"}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	text, err := client.Transcribe(context.Background(), []byte("a"))
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "namaskara" {
		t.Fatalf("unexpected transcript: %q", text)
	}
}

func TestClientTranscribeSendsAuthorizationWhenConfigured(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, APIKey: "secret"})
	if _, err := client.Transcribe(context.Background(), []byte("a")); err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
}

func TestClientTranscribeNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Transcribe(context.Background(), []byte("a"))

	var transcriptionErr *domain.TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
}

func TestClientTranscribeMalformedPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Transcribe(context.Background(), []byte("a"))

	var transcriptionErr *domain.TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
}

func TestClientTranscribeEmptyTranscriptIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	if _, err := client.Transcribe(context.Background(), []byte("a")); err == nil {
		t.Fatalf("expected empty transcript error")
	}
}

func TestClientTranscribeEmptyBufferIsError(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Endpoint: "http://127.0.0.1:0"})
	if _, err := client.Transcribe(context.Background(), nil); err == nil {
		t.Fatalf("expected empty buffer error")
	}
}

func TestClientTranscribeHonorsContextTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"text":"late"}`))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Transcribe(ctx, []byte("a"))

	var transcriptionErr *domain.TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("expected TranscriptionError on timeout, got %v", err)
	}
}
