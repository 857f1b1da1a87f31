// Package query answers natural-language questions about the knowledge
// graph catalog. It classifies the question, generates and executes a
// catalog query when needed, and streams the answer incrementally.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/topograph/topograph/pkg/ai"
	"github.com/topograph/topograph/pkg/logger"
	"github.com/topograph/topograph/pkg/schema"
	"github.com/topograph/topograph/pkg/store"
)

// Step names emitted as progress events on the answer stream.
const (
	StepClassify      = "classify"
	StepCasual        = "casual"
	StepSchemaFetch   = "schema_fetch"
	StepGenerateQuery = "generate_query"
	StepExecute       = "execute"
	StepAnalyze       = "analyze"
	StepError         = "error"
)

const noResultsText = "No results found."

// Options configures per-engine generation behavior.
type Options struct {
	Model         string
	Thinking      string
	SystemPrompts []string
}

// Engine runs the question answering state machine.
type Engine struct {
	generator Generator
	streamer  Streamer
	storage   store.GraphStorage
	options   Options
}

// NewEngineParams contains configuration options for creating a new Engine.
type NewEngineParams struct {
	Client  ai.GraphAIClient
	Storage store.GraphStorage
	Options Options
}

// NewEngine creates an engine over a GraphAIClient and the graph storage.
func NewEngine(params NewEngineParams) *Engine {
	return &Engine{
		generator: params.Client,
		streamer:  NewStreamAdapter(params.Client),
		storage:   params.Storage,
		options:   params.Options,
	}
}

// NewEngineWithCapabilities creates an engine over explicit capability
// implementations.
func NewEngineWithCapabilities(
	generator Generator,
	streamer Streamer,
	storage store.GraphStorage,
	options Options,
) *Engine {
	return &Engine{
		generator: generator,
		streamer:  streamer,
		storage:   storage,
		options:   options,
	}
}

type intentResult struct {
	RequiresGraphQuery bool   `json:"requires_graph_query"`
	Reasoning          string `json:"reasoning"`
}

type generatedQuery struct {
	Query string `json:"query"`
}

func (e *Engine) generateOpts() []ai.GenerateOption {
	opts := make([]ai.GenerateOption, 0, 3)
	if e.options.Model != "" {
		opts = append(opts, ai.WithModel(e.options.Model))
	}
	if e.options.Thinking != "" {
		opts = append(opts, ai.WithThinking(e.options.Thinking))
	}
	if len(e.options.SystemPrompts) > 0 {
		opts = append(opts, ai.WithSystemPrompts(e.options.SystemPrompts...))
	}
	return opts
}

// Query answers a question about the graph catalog. The returned channel
// carries step events for progress and content events holding answer text
// deltas. Failures terminate the stream with a descriptive content
// message; the channel always closes.
func (e *Engine) Query(ctx context.Context, question string) <-chan ai.StreamEvent {
	out := make(chan ai.StreamEvent, 16)
	go func() {
		defer close(out)
		e.run(ctx, question, out)
	}()
	return out
}

func (e *Engine) run(ctx context.Context, question string, out chan<- ai.StreamEvent) {
	emitStep(ctx, out, StepClassify)

	var intent intentResult
	err := e.generator.GenerateCompletionWithFormat(
		ctx,
		"question_intent",
		"Whether the question requires a knowledge-graph query",
		fmt.Sprintf(ai.IntentPrompt, question),
		&intent,
		e.generateOpts()...,
	)
	if err != nil {
		logger.Error("[Query] Intent classification failed", "error", err)
		e.fail(ctx, out, "The question could not be classified. Please try again.")
		return
	}

	if !intent.RequiresGraphQuery {
		emitStep(ctx, out, StepCasual)
		messages := []ai.ChatMessage{{Role: "user", Message: question}}
		opts := append(e.generateOpts(), ai.WithSystemPrompts(ai.CasualPrompt))
		if err := e.streamDeltas(ctx, out, messages, opts...); err != nil {
			logger.Error("[Query] Casual generation failed", "error", err)
			e.fail(ctx, out, "The answer could not be generated. Please try again.")
		}
		return
	}

	emitStep(ctx, out, StepSchemaFetch)
	schemaText, err := schema.Serialize(ctx, e.storage)
	if err != nil {
		logger.Error("[Query] Schema serialization failed", "error", err)
		e.fail(ctx, out, "The graph schema could not be read.")
		return
	}
	if schema.Parse(schemaText).IsEmpty() {
		e.fail(ctx, out, "no schema found")
		return
	}

	emitStep(ctx, out, StepGenerateQuery)
	var generated generatedQuery
	err = e.generator.GenerateCompletionWithFormat(
		ctx,
		"catalog_query",
		"A single read-only SQL query answering the question",
		fmt.Sprintf(ai.QueryGenPrompt, schemaText, question),
		&generated,
		e.generateOpts()...,
	)
	if err != nil || strings.TrimSpace(generated.Query) == "" {
		logger.Error("[Query] Query generation failed", "error", err)
		e.fail(ctx, out, "No query could be generated for this question.")
		return
	}

	emitStep(ctx, out, StepExecute)
	rows, err := e.storage.ExecuteQuery(ctx, generated.Query)
	if err != nil {
		logger.Error("[Query] Query execution failed", "query", generated.Query, "error", err)
		e.fail(ctx, out, "The generated query could not be executed.")
		return
	}
	resultText := formatRows(rows)

	emitStep(ctx, out, StepAnalyze)
	prompt := fmt.Sprintf(ai.AnalyzePrompt, question, generated.Query, resultText)
	messages := []ai.ChatMessage{{Role: "user", Message: prompt}}
	if err := e.streamDeltas(ctx, out, messages, e.generateOpts()...); err != nil {
		logger.Error("[Query] Answer generation failed", "error", err)
		e.fail(ctx, out, "The answer could not be generated. Please try again.")
	}
}

// streamDeltas consumes cumulative partials and emits only the appended
// suffix of each. Non-prefix partials re-emit their full value. A stream
// that faults mid-answer returns the fault so the caller can emit the
// terminal diagnostic.
func (e *Engine) streamDeltas(
	ctx context.Context,
	out chan<- ai.StreamEvent,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) error {
	partials, err := e.streamer.StreamPartials(ctx, messages, opts...)
	if err != nil {
		return err
	}

	prev := ""
	for partial := range partials {
		if partial.Err != nil {
			return partial.Err
		}
		delta := suffixDelta(prev, partial.Text)
		prev = partial.Text
		if delta == "" {
			continue
		}
		select {
		case out <- ai.StreamEvent{Type: "content", Content: delta}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, out chan<- ai.StreamEvent, message string) {
	emitStep(ctx, out, StepError)
	select {
	case out <- ai.StreamEvent{Type: "content", Content: message}:
	case <-ctx.Done():
	}
}

func emitStep(ctx context.Context, out chan<- ai.StreamEvent, step string) {
	select {
	case out <- ai.StreamEvent{Type: "step", Step: step}:
	case <-ctx.Done():
	}
}

// formatRows renders query results as one line per row with columns in
// name order, or the no-results fallback text.
func formatRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return noResultsText
	}

	var sb strings.Builder
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, row[key]))
		}
		sb.WriteString(strings.Join(parts, ", ") + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
