package ai

import (
	"iter"
	"strings"
	"sync"
)

// DeltaType identifies the kind of payload carried by a Delta.
type DeltaType string

const (
	// DeltaText carries an incremental text fragment.
	DeltaText DeltaType = "text"
	// DeltaUsage carries token usage metadata (typically near the end of a stream).
	DeltaUsage DeltaType = "usage"
	// DeltaDone carries the finish reason reported by the provider.
	DeltaDone DeltaType = "done"
)

// Delta is a single normalized unit of streamed output. Each delta carries
// exactly one kind of payload, identified by the Type field. Model is
// metadata that may ride along on any delta; adapters set it from the first
// frame that names the serving model.
type Delta struct {
	Type         DeltaType    `json:"type"`
	Text         string       `json:"text,omitempty"`          // Type == DeltaText
	Usage        *Usage       `json:"usage,omitempty"`         // Type == DeltaUsage
	FinishReason FinishReason `json:"finish_reason,omitempty"` // Type == DeltaDone
	Model        string       `json:"model,omitempty"`
}

// TextStream is a lazy, single-pass, forward-only sequence of text chunks
// from a streaming generation call. Network reads and frame decoding happen
// as the caller advances the sequence, not eagerly.
//
// Usage, finish reason, and model are terminal state: the accessors report
// "unset" (nil / empty) until the stream has been fully drained, and are
// populated exactly once after. Consuming the stream a second time yields
// nothing; issue a new request for a fresh stream.
//
// Callers must either drain the stream, break out of the range loop, or call
// Close. All three release the underlying network connection exactly once.
// A TextStream belongs to a single goroutine; distinct streams from the same
// client may be advanced concurrently.
type TextStream struct {
	deltas   iter.Seq2[Delta, error]
	acc      UsageAccumulator
	consumed bool

	closeOnce sync.Once
	closeFunc func() error
	closeErr  error
}

// NewTextStream wraps a raw delta iterator into a TextStream. closeFunc
// releases the underlying transport resources (typically the HTTP response
// body); it is guarded so repeated closes are harmless. A nil closeFunc is
// allowed for purely in-memory streams.
func NewTextStream(deltas iter.Seq2[Delta, error], closeFunc func() error) *TextStream {
	return &TextStream{deltas: deltas, closeFunc: closeFunc}
}

// NewSingleDeltaStream wraps a completed blocking result as a stream that
// delivers the whole text in one chunk, followed by its usage and finish
// reason. It is the fallback used when an adapter does not support native
// streaming.
func NewSingleDeltaStream(result *GenerateResult) *TextStream {
	deltas := func(yield func(Delta, error) bool) {
		if result == nil {
			return
		}
		if result.Text != "" {
			if !yield(Delta{Type: DeltaText, Text: result.Text, Model: result.Model}, nil) {
				return
			}
		}
		if result.Usage != nil {
			if !yield(Delta{Type: DeltaUsage, Usage: result.Usage, Model: result.Model}, nil) {
				return
			}
		}
		yield(Delta{Type: DeltaDone, FinishReason: result.FinishReason, Model: result.Model}, nil)
	}

	return NewTextStream(deltas, nil)
}

// Deltas returns the low-level single-pass event view of the stream. Most
// callers want Chunks or Collect instead; Deltas exists for middleware that
// needs to observe usage and finish-reason frames as they pass through.
//
// Draining the returned sequence finalizes the stream's usage snapshot and
// closes the underlying connection. An error, if any, is yielded as the
// final element and terminates the sequence.
func (s *TextStream) Deltas() iter.Seq2[Delta, error] {
	return func(yield func(Delta, error) bool) {
		if s.consumed {
			return
		}
		s.consumed = true
		defer s.doClose()

		for delta, err := range s.deltas {
			if err != nil {
				yield(Delta{}, err)
				return
			}

			s.acc.Record(delta)

			if !yield(delta, nil) {
				return // caller abandoned the stream
			}
		}

		s.acc.Finalize()
	}
}

// Chunks returns the caller-facing sequence of text fragments, in the exact
// order the provider emitted them. Usage and finish-reason frames are folded
// into the stream's terminal state instead of being yielded.
func (s *TextStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for delta, err := range s.Deltas() {
			if err != nil {
				yield("", err)
				return
			}
			if delta.Type == DeltaText && delta.Text != "" {
				if !yield(delta.Text, nil) {
					return
				}
			}
		}
	}
}

// Collect drains the stream and returns the accumulated GenerateResult.
// On a mid-stream error the partial result collected so far is returned
// alongside the error; chunks received before the failure remain valid.
func (s *TextStream) Collect() (*GenerateResult, error) {
	var text strings.Builder

	for chunk, err := range s.Chunks() {
		if err != nil {
			return &GenerateResult{Text: text.String()}, err
		}
		text.WriteString(chunk)
	}

	return &GenerateResult{
		Text:         text.String(),
		Model:        s.Model(),
		FinishReason: s.FinishReason(),
		Usage:        s.Usage(),
	}, nil
}

// Usage returns the terminal token accounting, or nil while the stream is
// still being consumed and when the provider never reported usage.
func (s *TextStream) Usage() *Usage { return s.acc.Usage() }

// FinishReason returns the terminal finish reason, or the empty string while
// the stream is still being consumed.
func (s *TextStream) FinishReason() FinishReason { return s.acc.FinishReason() }

// Model returns the model that served the stream, or the empty string while
// the stream is still being consumed.
func (s *TextStream) Model() string { return s.acc.Model() }

// Done reports whether the stream has reached its terminal state.
func (s *TextStream) Done() bool { return s.acc.Done() }

// Close abandons the stream and releases the underlying connection. Closing
// an already-consumed or already-closed stream is a no-op. Abandoning a
// stream before exhaustion is not an error.
func (s *TextStream) Close() error {
	s.consumed = true
	return s.doClose()
}

func (s *TextStream) doClose() error {
	s.closeOnce.Do(func() {
		if s.closeFunc != nil {
			s.closeErr = s.closeFunc()
		}
	})
	return s.closeErr
}
