package query

import (
	"context"
	"errors"
	"strings"

	"github.com/topograph/topograph/pkg/ai"
)

// Partial is one cumulative answer state. Err is set at most once, on the
// final value, when the stream died before the answer completed.
type Partial struct {
	Text string
	Err  error
}

// Streamer yields successive cumulative partial answer states for a chat
// request. Each value on the channel is the full answer so far, not a
// delta; the engine derives deltas itself. A stream that faults after
// opening ends with a Partial carrying the error.
type Streamer interface {
	StreamPartials(
		ctx context.Context,
		messages []ai.ChatMessage,
		opts ...ai.GenerateOption,
	) (<-chan Partial, error)
}

// Generator is the structured-output slice of the AI contract the engine
// uses for classification and query generation.
type Generator interface {
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...ai.GenerateOption,
	) error
}

// streamAdapter turns a delta-emitting GraphAIClient stream into
// cumulative partial states.
type streamAdapter struct {
	client ai.GraphAIClient
}

// NewStreamAdapter wraps an AI client as a Streamer.
func NewStreamAdapter(client ai.GraphAIClient) Streamer {
	return &streamAdapter{client: client}
}

func (a *streamAdapter) StreamPartials(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (<-chan Partial, error) {
	events, err := a.client.GenerateChatStream(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	out := make(chan Partial, 16)
	go func() {
		defer close(out)
		var acc strings.Builder
		for event := range events {
			switch event.Type {
			case "error":
				select {
				case out <- Partial{Err: errors.New(event.Content)}:
				case <-ctx.Done():
				}
				return
			case "content":
				if event.Content == "" {
					continue
				}
				acc.WriteString(event.Content)
				select {
				case out <- Partial{Text: acc.String()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// suffixDelta returns the characters next appends to prev. When next is
// not a prefix extension of prev the full new value is returned, so a
// misbehaving stream degrades to repetition instead of a crash.
func suffixDelta(prev string, next string) string {
	if strings.HasPrefix(next, prev) {
		return next[len(prev):]
	}
	return next
}
