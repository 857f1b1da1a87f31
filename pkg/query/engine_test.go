package query

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/topograph/topograph/pkg/ai"
	"github.com/topograph/topograph/pkg/common"
)

type fakeGenerator struct {
	intent    intentResult
	intentErr error
	query     string
	queryErr  error
	calls     []string
}

func (f *fakeGenerator) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	f.calls = append(f.calls, name)
	switch name {
	case "question_intent":
		if f.intentErr != nil {
			return f.intentErr
		}
		data, _ := json.Marshal(f.intent)
		return json.Unmarshal(data, out)
	case "catalog_query":
		if f.queryErr != nil {
			return f.queryErr
		}
		data, _ := json.Marshal(generatedQuery{Query: f.query})
		return json.Unmarshal(data, out)
	}
	return errors.New("unexpected generation request")
}

type fakeStreamer struct {
	partials  []string
	err       error
	streamErr error
	messages  []ai.ChatMessage
}

func (f *fakeStreamer) StreamPartials(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan Partial, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan Partial, len(f.partials)+1)
	for _, p := range f.partials {
		out <- Partial{Text: p}
	}
	if f.streamErr != nil {
		out <- Partial{Err: f.streamErr}
	}
	close(out)
	return out, nil
}

type fakeCatalog struct {
	entries          []common.CatalogEntry
	rows             []map[string]any
	execErr          error
	introspectCalled bool
	executedQuery    string
}

func (f *fakeCatalog) IntrospectCatalog(ctx context.Context) ([]common.CatalogEntry, error) {
	f.introspectCalled = true
	return f.entries, nil
}

func (f *fakeCatalog) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	f.executedQuery = query
	return f.rows, f.execErr
}

func (f *fakeCatalog) CreateTopic(ctx context.Context, topic common.Topic) error { return nil }
func (f *fakeCatalog) CreateAndLinkSubtopic(ctx context.Context, topicID string, sub common.Subtopic, position int) error {
	return nil
}
func (f *fakeCatalog) CreateNestedSubtopic(ctx context.Context, parentID string, sub common.Subtopic, position int, parentKind common.ParentKind) error {
	return nil
}
func (f *fakeCatalog) GetTopic(ctx context.Context, id string) (*common.Topic, error) {
	return nil, nil
}
func (f *fakeCatalog) GetSubtopics(ctx context.Context, topicID string) ([]common.Subtopic, error) {
	return nil, nil
}
func (f *fakeCatalog) ListTopics(ctx context.Context) ([]common.Topic, error) { return nil, nil }

func topicCatalog() []common.CatalogEntry {
	return []common.CatalogEntry{
		{Name: "Topic", Kind: common.EntryNode, Columns: []common.ColumnInfo{{Name: "id", Type: "text", IsPrimaryKey: true}}},
	}
}

func collect(events <-chan ai.StreamEvent) (steps []string, content string) {
	for event := range events {
		switch event.Type {
		case "step":
			steps = append(steps, event.Step)
		case "content":
			content += event.Content
		}
	}
	return steps, content
}

func TestSuffixDelta(t *testing.T) {
	tests := []struct {
		prev string
		next string
		want string
	}{
		{"", "Th", "Th"},
		{"Th", "The", "e"},
		{"The", "The cat", " cat"},
		{"The cat", "The cat", ""},
		{"The cat", "Something else", "Something else"},
	}
	for _, tt := range tests {
		if got := suffixDelta(tt.prev, tt.next); got != tt.want {
			t.Errorf("suffixDelta(%q, %q) = %q, want %q", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestQueryStreamsSuffixDeltas(t *testing.T) {
	streamer := &fakeStreamer{partials: []string{"Th", "The", "The cat"}}
	generator := &fakeGenerator{
		intent: intentResult{RequiresGraphQuery: true},
		query:  `SELECT name FROM kg."Topic"`,
	}
	catalog := &fakeCatalog{
		entries: topicCatalog(),
		rows:    []map[string]any{{"name": "Graph Theory"}},
	}

	engine := NewEngineWithCapabilities(generator, streamer, catalog, Options{})
	events := engine.Query(context.Background(), "What topics exist?")

	var deltas []string
	var steps []string
	for event := range events {
		if event.Type == "content" {
			deltas = append(deltas, event.Content)
		}
		if event.Type == "step" {
			steps = append(steps, event.Step)
		}
	}

	if !reflect.DeepEqual(deltas, []string{"Th", "e", " cat"}) {
		t.Errorf("deltas = %v, want [Th e  cat]", deltas)
	}
	wantSteps := []string{StepClassify, StepSchemaFetch, StepGenerateQuery, StepExecute, StepAnalyze}
	if !reflect.DeepEqual(steps, wantSteps) {
		t.Errorf("steps = %v, want %v", steps, wantSteps)
	}
}

func TestQueryNonPrefixPartialReemits(t *testing.T) {
	streamer := &fakeStreamer{partials: []string{"First answer", "Different answer"}}
	generator := &fakeGenerator{
		intent: intentResult{RequiresGraphQuery: true},
		query:  `SELECT 1`,
	}
	catalog := &fakeCatalog{entries: topicCatalog(), rows: []map[string]any{{"n": 1}}}

	engine := NewEngineWithCapabilities(generator, streamer, catalog, Options{})
	_, content := collect(engine.Query(context.Background(), "count?"))

	if content != "First answerDifferent answer" {
		t.Errorf("content = %q", content)
	}
}

func TestQueryEmptySchema(t *testing.T) {
	generator := &fakeGenerator{intent: intentResult{RequiresGraphQuery: true}}
	catalog := &fakeCatalog{}

	engine := NewEngineWithCapabilities(generator, &fakeStreamer{}, catalog, Options{})
	steps, content := collect(engine.Query(context.Background(), "What subtopics exist?"))

	if content != "no schema found" {
		t.Errorf("content = %q, want %q", content, "no schema found")
	}
	for _, call := range generator.calls {
		if call == "catalog_query" {
			t.Error("query generation must not run against an empty schema")
		}
	}
	if steps[len(steps)-1] != StepError {
		t.Errorf("final step = %q, want %q", steps[len(steps)-1], StepError)
	}
}

func TestQueryCasualSkipsSchema(t *testing.T) {
	streamer := &fakeStreamer{partials: []string{"Hi", "Hi there!"}}
	generator := &fakeGenerator{intent: intentResult{RequiresGraphQuery: false}}
	catalog := &fakeCatalog{entries: topicCatalog()}

	engine := NewEngineWithCapabilities(generator, streamer, catalog, Options{})
	steps, content := collect(engine.Query(context.Background(), "hello"))

	if catalog.introspectCalled {
		t.Error("casual path must not fetch the schema")
	}
	if content != "Hi there!" {
		t.Errorf("content = %q, want %q", content, "Hi there!")
	}
	if !reflect.DeepEqual(steps, []string{StepClassify, StepCasual}) {
		t.Errorf("steps = %v", steps)
	}
}

func TestQueryEmptyGeneratedQuery(t *testing.T) {
	generator := &fakeGenerator{
		intent: intentResult{RequiresGraphQuery: true},
		query:  "   ",
	}
	catalog := &fakeCatalog{entries: topicCatalog()}

	engine := NewEngineWithCapabilities(generator, &fakeStreamer{}, catalog, Options{})
	_, content := collect(engine.Query(context.Background(), "anything"))

	if !strings.Contains(content, "No query could be generated") {
		t.Errorf("content = %q, want query generation failure message", content)
	}
	if catalog.executedQuery != "" {
		t.Error("an empty query must not be executed")
	}
}

func TestQueryNoResults(t *testing.T) {
	streamer := &fakeStreamer{partials: []string{"There are no topics yet."}}
	generator := &fakeGenerator{
		intent: intentResult{RequiresGraphQuery: true},
		query:  `SELECT name FROM kg."Topic"`,
	}
	catalog := &fakeCatalog{entries: topicCatalog()}

	engine := NewEngineWithCapabilities(generator, streamer, catalog, Options{})
	collect(engine.Query(context.Background(), "What topics exist?"))

	if len(streamer.messages) != 1 {
		t.Fatalf("expected 1 analysis message, got %d", len(streamer.messages))
	}
	if !strings.Contains(streamer.messages[0].Message, noResultsText) {
		t.Errorf("analysis prompt should carry %q, got %q", noResultsText, streamer.messages[0].Message)
	}
}

func TestQueryStreamDiesMidAnswer(t *testing.T) {
	streamer := &fakeStreamer{
		partials:  []string{"The answer is"},
		streamErr: errors.New("connection reset"),
	}
	generator := &fakeGenerator{intent: intentResult{RequiresGraphQuery: false}}

	engine := NewEngineWithCapabilities(generator, streamer, &fakeCatalog{}, Options{})
	steps, content := collect(engine.Query(context.Background(), "hello"))

	if !strings.HasPrefix(content, "The answer is") {
		t.Errorf("content = %q, want the partial answer preserved", content)
	}
	if !strings.Contains(content, "could not be generated") {
		t.Errorf("content = %q, want a terminal diagnostic appended", content)
	}
	if steps[len(steps)-1] != StepError {
		t.Errorf("final step = %q, want %q", steps[len(steps)-1], StepError)
	}
}

func TestQueryAnalysisStreamFault(t *testing.T) {
	streamer := &fakeStreamer{streamErr: errors.New("upstream closed")}
	generator := &fakeGenerator{
		intent: intentResult{RequiresGraphQuery: true},
		query:  `SELECT name FROM kg."Topic"`,
	}
	catalog := &fakeCatalog{
		entries: topicCatalog(),
		rows:    []map[string]any{{"name": "Graph Theory"}},
	}

	engine := NewEngineWithCapabilities(generator, streamer, catalog, Options{})
	steps, content := collect(engine.Query(context.Background(), "What topics exist?"))

	if !strings.Contains(content, "could not be generated") {
		t.Errorf("content = %q, want a terminal diagnostic", content)
	}
	if steps[len(steps)-1] != StepError {
		t.Errorf("final step = %q, want %q", steps[len(steps)-1], StepError)
	}
}

func TestQueryCapabilityFault(t *testing.T) {
	generator := &fakeGenerator{intentErr: errors.New("model offline")}

	engine := NewEngineWithCapabilities(generator, &fakeStreamer{}, &fakeCatalog{}, Options{})
	steps, content := collect(engine.Query(context.Background(), "hello"))

	if content == "" {
		t.Error("expected a terminal diagnostic message")
	}
	if steps[len(steps)-1] != StepError {
		t.Errorf("final step = %q, want %q", steps[len(steps)-1], StepError)
	}
}

func TestFormatRows(t *testing.T) {
	rows := []map[string]any{
		{"name": "Graphs", "id": "t1"},
		{"name": "Trees", "id": "t2"},
	}
	got := formatRows(rows)
	want := "id: t1, name: Graphs\nid: t2, name: Trees"
	if got != want {
		t.Errorf("formatRows() = %q, want %q", got, want)
	}

	if formatRows(nil) != noResultsText {
		t.Errorf("formatRows(nil) = %q, want %q", formatRows(nil), noResultsText)
	}
}

func TestStreamAdapterAccumulates(t *testing.T) {
	events := make(chan ai.StreamEvent, 4)
	events <- ai.StreamEvent{Type: "step", Step: "thinking"}
	events <- ai.StreamEvent{Type: "content", Content: "Th"}
	events <- ai.StreamEvent{Type: "content", Content: "e cat"}
	close(events)

	adapter := &streamAdapter{client: &staticStreamClient{events: events}}
	partials, err := adapter.StreamPartials(context.Background(), nil)
	if err != nil {
		t.Fatalf("StreamPartials() error = %v", err)
	}

	var got []string
	for p := range partials {
		if p.Err != nil {
			t.Fatalf("unexpected partial error: %v", p.Err)
		}
		got = append(got, p.Text)
	}
	if !reflect.DeepEqual(got, []string{"Th", "The cat"}) {
		t.Errorf("partials = %v", got)
	}
}

func TestStreamAdapterSurfacesMidStreamFault(t *testing.T) {
	events := make(chan ai.StreamEvent, 4)
	events <- ai.StreamEvent{Type: "content", Content: "The answer is"}
	events <- ai.StreamEvent{Type: "error", Content: "connection reset"}
	close(events)

	adapter := &streamAdapter{client: &staticStreamClient{events: events}}
	partials, err := adapter.StreamPartials(context.Background(), nil)
	if err != nil {
		t.Fatalf("StreamPartials() error = %v", err)
	}

	var texts []string
	var streamErr error
	for p := range partials {
		if p.Err != nil {
			streamErr = p.Err
			continue
		}
		texts = append(texts, p.Text)
	}
	if !reflect.DeepEqual(texts, []string{"The answer is"}) {
		t.Errorf("partials = %v", texts)
	}
	if streamErr == nil || !strings.Contains(streamErr.Error(), "connection reset") {
		t.Errorf("stream error = %v, want connection reset", streamErr)
	}
}

type staticStreamClient struct {
	events chan ai.StreamEvent
}

func (s *staticStreamClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	return s.events, nil
}

func (s *staticStreamClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (s *staticStreamClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (s *staticStreamClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (s *staticStreamClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error {
	return nil
}
func (s *staticStreamClient) ResetMetrics()               {}
func (s *staticStreamClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
