package enrich

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/topograph/topograph/pkg/ai"
	"github.com/topograph/topograph/pkg/common"
)

// fakeAIClient implements ai.GraphAIClient with programmable behavior.
type fakeAIClient struct {
	mu         sync.Mutex
	inFlight   int
	maxSeen    int
	calls      int
	completion string
	failOn     func(prompt string) bool
	bullets    func(prompt string) []string
}

func (f *fakeAIClient) track() func() {
	f.mu.Lock()
	f.inFlight++
	f.calls++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	defer f.track()()
	if f.failOn != nil && f.failOn(prompt) {
		return "", errors.New("model failure")
	}
	return f.completion, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	defer f.track()()
	time.Sleep(5 * time.Millisecond)
	if f.failOn != nil && f.failOn(prompt) {
		return errors.New("model failure")
	}
	if target, ok := out.(*bulletPointsResult); ok {
		if f.bullets != nil {
			target.BulletPoints = f.bullets(prompt)
		} else {
			target.BulletPoints = []string{"a point"}
		}
	}
	if target, ok := out.(*relevanceResult); ok {
		target.Score = 0.8
	}
	return nil
}

func (f *fakeAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return f.completion, nil
}

func (f *fakeAIClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	ch := make(chan ai.StreamEvent)
	close(ch)
	return ch, nil
}

func (f *fakeAIClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (f *fakeAIClient) ResetMetrics()                                                 {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics                                   { return ai.ModelMetrics{} }

func TestGenerateTitleTrimsQuotes(t *testing.T) {
	client := &fakeAIClient{completion: ` "Graph Theory Primer" `}
	s := NewSynthesizer(NewSynthesizerParams{Client: client})

	title, err := s.GenerateTitle(context.Background(), []string{"fragment one", "fragment two"})
	if err != nil {
		t.Fatalf("GenerateTitle() error = %v", err)
	}
	if title != "Graph Theory Primer" {
		t.Errorf("title = %q, want %q", title, "Graph Theory Primer")
	}
}

func TestGenerateNameError(t *testing.T) {
	client := &fakeAIClient{failOn: func(string) bool { return true }}
	s := NewSynthesizer(NewSynthesizerParams{Client: client})

	_, err := s.GenerateName(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected error from failing client")
	}
}

func TestCheckRelevance(t *testing.T) {
	s := NewSynthesizer(NewSynthesizerParams{Client: &fakeAIClient{}})

	score, err := s.CheckRelevance(context.Background(), "Graphs", "Edges connect nodes.")
	if err != nil {
		t.Fatalf("CheckRelevance() error = %v", err)
	}
	if score != 0.8 {
		t.Errorf("score = %v, want 0.8", score)
	}
}

func TestEnrichSegmentsPreservesOrder(t *testing.T) {
	segments := make([]common.Segment, 8)
	for i := range segments {
		segments[i] = common.Segment{
			Title:    fmt.Sprintf("Section %d", i),
			BodyText: fmt.Sprintf("body %d", i),
		}
	}

	client := &fakeAIClient{
		bullets: func(prompt string) []string {
			for i := range segments {
				if strings.Contains(prompt, fmt.Sprintf("body %d", i)) {
					return []string{fmt.Sprintf("bullet for %d", i)}
				}
			}
			return []string{"unknown"}
		},
	}
	s := NewSynthesizer(NewSynthesizerParams{Client: client, MaxConcurrent: 3})

	got := s.EnrichSegments(context.Background(), segments)

	for i, seg := range got {
		want := []string{fmt.Sprintf("bullet for %d", i)}
		if !reflect.DeepEqual(seg.BulletPoints, want) {
			t.Errorf("segment %d bullets = %v, want %v", i, seg.BulletPoints, want)
		}
		if seg.Title != segments[i].Title {
			t.Errorf("segment %d title = %q, want %q", i, seg.Title, segments[i].Title)
		}
	}
}

func TestEnrichSegmentsConcurrencyBound(t *testing.T) {
	segments := make([]common.Segment, 10)
	for i := range segments {
		segments[i] = common.Segment{BodyText: fmt.Sprintf("body %d", i)}
	}

	client := &fakeAIClient{}
	s := NewSynthesizer(NewSynthesizerParams{Client: client, MaxConcurrent: 2})

	s.EnrichSegments(context.Background(), segments)

	if client.maxSeen > 2 {
		t.Errorf("observed %d concurrent calls, bound is 2", client.maxSeen)
	}
	if client.calls != len(segments) {
		t.Errorf("calls = %d, want %d", client.calls, len(segments))
	}
}

func TestEnrichSegmentsFailureIsolation(t *testing.T) {
	segments := []common.Segment{
		{Title: "Fails", BodyText: "broken body"},
		{Title: "Works", BodyText: "healthy body"},
	}

	client := &fakeAIClient{
		failOn: func(prompt string) bool {
			return strings.Contains(prompt, "broken body")
		},
		bullets: func(string) []string { return []string{"good bullet"} },
	}
	s := NewSynthesizer(NewSynthesizerParams{Client: client})

	got := s.EnrichSegments(context.Background(), segments)

	if !reflect.DeepEqual(got[0].BulletPoints, []string{placeholderBullet}) {
		t.Errorf("failed segment bullets = %v, want placeholder", got[0].BulletPoints)
	}
	if !reflect.DeepEqual(got[1].BulletPoints, []string{"good bullet"}) {
		t.Errorf("healthy segment bullets = %v", got[1].BulletPoints)
	}
}
