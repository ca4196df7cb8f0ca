package stream

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/polymind-ai/polymind/pkg/models"
)

// Sink is the engine-side writer for one request's frame stream. All frames
// for a request flow through a single Sink; implementations serialise writes
// so concurrent steps can share it.
type Sink interface {
	// Status emits a STATUS:STEP: progress frame.
	Status(step string)

	// Data emits one fragment of the final assistant answer.
	Data(chunk string)

	// ModelResponses emits the per-model reply array for UI display.
	// Exactly one is sent per successful request.
	ModelResponses(replies []models.ModelReply)

	// SummaryExecuted emits the synthetic history prefix produced by the
	// summariser.
	SummaryExecuted(history []models.Message)

	// Error emits a fatal ERROR frame; no frames may follow it.
	Error(msg string)
}

// Flusher matches http.Flusher; the writer flushes after every frame so
// tokens reach the client incrementally.
type Flusher interface {
	Flush()
}

// Writer is a Sink that encodes frames onto an io.Writer. Write errors are
// recorded and subsequent frames are dropped: a disconnected client cannot
// be distinguished from a slow one at this layer, and the orchestrator
// observes the disconnect through request-context cancellation.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	flusher Flusher
	failed  bool
}

// NewWriter creates a frame writer. flusher may be nil (buffered output,
// used in tests).
func NewWriter(w io.Writer, flusher Flusher) *Writer {
	return &Writer{w: w, flusher: flusher}
}

func (s *Writer) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return
	}
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		slog.Debug("Stream write failed, dropping further frames", "error", err)
		s.failed = true
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// Status implements Sink.
func (s *Writer) Status(step string) {
	s.writeLine(Encode(KindStatus, step))
}

// Data implements Sink.
func (s *Writer) Data(chunk string) {
	if chunk == "" {
		return
	}
	s.writeLine(Encode(KindData, chunk))
}

// ModelResponses implements Sink.
func (s *Writer) ModelResponses(replies []models.ModelReply) {
	if replies == nil {
		replies = []models.ModelReply{}
	}
	payload, err := json.Marshal(replies)
	if err != nil {
		slog.Error("Failed to marshal model responses", "error", err)
		return
	}
	s.writeLine(Encode(KindModelResponses, string(payload)))
}

// SummaryExecuted implements Sink.
func (s *Writer) SummaryExecuted(history []models.Message) {
	payload, err := json.Marshal(history)
	if err != nil {
		slog.Error("Failed to marshal summary history", "error", err)
		return
	}
	s.writeLine(Encode(KindSummaryExecuted, string(payload)))
}

// Error implements Sink.
func (s *Writer) Error(msg string) {
	s.writeLine(Encode(KindError, msg))
}
