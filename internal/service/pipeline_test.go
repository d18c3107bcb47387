package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shardforge/worker/internal/dto/generate"
	"github.com/shardforge/worker/internal/pkg/artifact"
	"github.com/shardforge/worker/internal/pkg/github"
	"github.com/shardforge/worker/internal/pkg/llm"
)

type mockCollector struct {
	rc    *github.RepoContext
	err   error
	calls int
}

func (m *mockCollector) Collect(ctx context.Context, repoURL, token string) (*github.RepoContext, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rc, nil
}

type mockInvoker struct {
	completion *llm.Completion
	err        error
	calls      int
	lastMax    int
	lastSystem string
	lastUser   string
}

func (m *mockInvoker) Complete(ctx context.Context, system, user string, maxTokens int) (*llm.Completion, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	m.lastMax = maxTokens
	if m.err != nil {
		return nil, m.err
	}
	return m.completion, nil
}

func sampleRepoContext() *github.RepoContext {
	return &github.RepoContext{
		Owner:       "acme",
		Name:        "widget",
		Description: "A sample widget service",
		Language:    "Go",
		Stars:       42,
		CloneURL:    "https://github.com/acme/widget.git",
		Files:       []string{"main.go", "go.mod"},
		Snippets:    map[string]string{"main.go": "package main"},
	}
}

func readmeRequest(credits int) *generate.ReadmeRequest {
	return &generate.ReadmeRequest{
		GithubRepo: "https://github.com/acme/widget",
		UserInput:  generate.UserInput{Description: "a widget", Features: "fast"},
		ShardID:    "shard-1",
		Metadata:   generate.Metadata{UserID: "u1", ProjectName: "widget"},
		Credits:    credits,
	}
}

const validReadmeJSON = `{"type":"doc","content":[` +
	`{"type":"paragraph","attrs":{"textAlign":"left"},"content":[` +
	`{"type":"text","text":"test successful","marks":[{"type":"highlight"}]}]},` +
	`{"type":"heading","attrs":{"level":1,"textAlign":"left"},"content":[` +
	`{"type":"text","text":"Widget"}]},` +
	`{"type":"paragraph","attrs":{"textAlign":"left"},"content":[` +
	`{"type":"text","text":"A sample widget service."}]}]}`

func TestGenerateReadmeSuccess(t *testing.T) {
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: validReadmeJSON, TotalTokens: 120}}
	svc := NewGenerateService(collector, invoker)

	outcome := svc.GenerateReadme(context.Background(), readmeRequest(500))

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s: %s)", outcome.Status, outcome.Category, outcome.Message)
	}
	if outcome.UsedCredits != 120 {
		t.Fatalf("expected 120 used credits, got %d", outcome.UsedCredits)
	}
	doc, ok := outcome.Payload.(*artifact.Node)
	if !ok {
		t.Fatalf("expected payload to be a document node, got %T", outcome.Payload)
	}
	if doc.Type != artifact.NodeDoc {
		t.Fatalf("expected doc root, got %q", doc.Type)
	}
	// the declared quota doubles as the model's token ceiling
	if invoker.lastMax != 500 {
		t.Fatalf("expected max tokens 500, got %d", invoker.lastMax)
	}
}

func TestGenerateReadmeZeroQuotaSkipsAllWork(t *testing.T) {
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: validReadmeJSON, TotalTokens: 10}}
	svc := NewGenerateService(collector, invoker)

	for _, credits := range []int{0, -5} {
		outcome := svc.GenerateReadme(context.Background(), readmeRequest(credits))
		if outcome.Status != StatusInsufficientCredits {
			t.Fatalf("credits=%d: expected insufficient_credits, got %s", credits, outcome.Status)
		}
		if outcome.UsedCredits != 0 {
			t.Fatalf("credits=%d: expected 0 used credits, got %d", credits, outcome.UsedCredits)
		}
	}
	if collector.calls != 0 || invoker.calls != 0 {
		t.Fatalf("quota gate must fire before any work: collector=%d invoker=%d", collector.calls, invoker.calls)
	}
}

func TestGenerateReadmeTruncatedCompletion(t *testing.T) {
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: validReadmeJSON, TotalTokens: 480, Truncated: true}}
	svc := NewGenerateService(collector, invoker)

	outcome := svc.GenerateReadme(context.Background(), readmeRequest(500))

	if outcome.Status != StatusInsufficientCredits {
		t.Fatalf("expected insufficient_credits for truncated output, got %s", outcome.Status)
	}
	if outcome.UsedCredits != 480 {
		t.Fatalf("spent tokens must still be reported, got %d", outcome.UsedCredits)
	}
}

func TestGenerateReadmeTruncatedBeforeAnyContent(t *testing.T) {
	// the model can hit its length cap before emitting anything; the meter
	// must fire before validation ever sees the empty content
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: "", TotalTokens: 5, Truncated: true}}
	svc := NewGenerateService(collector, invoker)

	outcome := svc.GenerateReadme(context.Background(), readmeRequest(5))

	if outcome.Status != StatusInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %s (%s)", outcome.Status, outcome.Category)
	}
	if outcome.UsedCredits != 5 {
		t.Fatalf("expected 5 used credits, got %d", outcome.UsedCredits)
	}
}

func TestGenerateReadmeOverQuotaUsage(t *testing.T) {
	// a syntactically perfect artifact that cost more than the quota is still
	// an insufficient-credits outcome, not a success
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: validReadmeJSON, TotalTokens: 600}}
	svc := NewGenerateService(collector, invoker)

	outcome := svc.GenerateReadme(context.Background(), readmeRequest(500))

	if outcome.Status != StatusInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %s", outcome.Status)
	}
	if outcome.UsedCredits != 600 {
		t.Fatalf("expected 600 used credits, got %d", outcome.UsedCredits)
	}
}

func TestGenerateReadmeFailureCategories(t *testing.T) {
	cases := []struct {
		name         string
		collectorErr error
		invokerErr   error
		content      string
		category     string
	}{
		{
			name:         "invalid identifier",
			collectorErr: fmt.Errorf("%w: %q", github.ErrInvalidRepoURL, "nope"),
			category:     CategoryInvalidIdentifier,
		},
		{
			name:         "access denied",
			collectorErr: &github.AccessError{Status: 404},
			category:     CategoryAccessDenied,
		},
		{
			name:         "collector upstream",
			collectorErr: &github.UpstreamError{Status: 502},
			category:     CategoryUpstreamError,
		},
		{
			name:       "model error",
			invokerErr: errors.New("llm request failed: connection reset"),
			category:   CategoryUpstreamError,
		},
		{
			name:     "not JSON",
			content:  "Sure, here is your README!",
			category: CategoryParseError,
		},
		{
			name:     "wrong shape",
			content:  `{"type":"paragraph","content":[]}`,
			category: CategorySchemaError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			collector := &mockCollector{rc: sampleRepoContext(), err: tc.collectorErr}
			invoker := &mockInvoker{
				completion: &llm.Completion{Content: tc.content, TotalTokens: 50},
				err:        tc.invokerErr,
			}
			svc := NewGenerateService(collector, invoker)

			outcome := svc.GenerateReadme(context.Background(), readmeRequest(500))

			if outcome.Status != StatusFailed {
				t.Fatalf("expected failed, got %s", outcome.Status)
			}
			if outcome.Category != tc.category {
				t.Fatalf("expected category %s, got %s (%s)", tc.category, outcome.Category, outcome.Message)
			}
			if outcome.Message == "" {
				t.Fatalf("failure outcome must carry a message")
			}
		})
	}
}

func TestGenerateReadmeWithoutOpeningMarkerStillSucceeds(t *testing.T) {
	noMarker := `{"type":"doc","content":[{"type":"paragraph","attrs":{"textAlign":"left"},` +
		`"content":[{"type":"text","text":"plain opener"}]}]}`
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{Content: noMarker, TotalTokens: 40}}
	svc := NewGenerateService(collector, invoker)

	outcome := svc.GenerateReadme(context.Background(), readmeRequest(500))

	if outcome.Status != StatusSuccess {
		t.Fatalf("missing marker is advisory, expected success, got %s", outcome.Status)
	}
}

func TestGenerateIdeas(t *testing.T) {
	invoker := &mockInvoker{completion: &llm.Completion{
		Content:     `{"ideas":[{"title":"a","description":"b","estimatedTime":"1-2 weeks"}]}`,
		TotalTokens: 80,
	}}
	svc := NewGenerateService(&mockCollector{}, invoker)

	req := &generate.IdeaRequest{Topic: "devtools", Skills: "Go", Complexity: "beginner", Credits: 200}
	outcome := svc.GenerateIdeas(context.Background(), req)

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", outcome.Status, outcome.Message)
	}
	list, ok := outcome.Payload.(*artifact.IdeaList)
	if !ok {
		t.Fatalf("expected an idea list payload, got %T", outcome.Payload)
	}
	if list.Ideas[0].ID != 1 {
		t.Fatalf("expected assigned id 1, got %d", list.Ideas[0].ID)
	}
	if invoker.lastMax != 200 {
		t.Fatalf("expected quota forwarded as max tokens, got %d", invoker.lastMax)
	}
}

func TestGenerateIdeasSchemaFailure(t *testing.T) {
	invoker := &mockInvoker{completion: &llm.Completion{Content: `{"ideas":[]}`, TotalTokens: 30}}
	svc := NewGenerateService(&mockCollector{}, invoker)

	req := &generate.IdeaRequest{Topic: "devtools", Skills: "Go", Complexity: "any", Credits: 200}
	outcome := svc.GenerateIdeas(context.Background(), req)

	if outcome.Status != StatusFailed || outcome.Category != CategorySchemaError {
		t.Fatalf("expected schema_error failure, got %s/%s", outcome.Status, outcome.Category)
	}
	// tokens spent on the broken attempt are still reported
	if outcome.UsedCredits != 30 {
		t.Fatalf("expected 30 used credits, got %d", outcome.UsedCredits)
	}
}

func TestGenerateStack(t *testing.T) {
	invoker := &mockInvoker{completion: &llm.Completion{
		Content: `{"title":"t","frontend":"Next.js","backend":"Go","database":"PostgreSQL",` +
			`"authentication":"Clerk","deployment":"Fly.io","reasoning":"r"}`,
		TotalTokens: 90,
	}}
	svc := NewGenerateService(&mockCollector{}, invoker)

	req := &generate.StackRequest{ProjectType: "web app", Requirements: "realtime", Preferences: "Go", Credits: 300}
	outcome := svc.GenerateStack(context.Background(), req)

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", outcome.Status, outcome.Message)
	}
	plan, ok := outcome.Payload.(*artifact.StackPlan)
	if !ok || plan.Backend != "Go" {
		t.Fatalf("unexpected payload %#v", outcome.Payload)
	}
}

func TestGenerateCompetitiveZeroQuota(t *testing.T) {
	invoker := &mockInvoker{}
	svc := NewGenerateService(&mockCollector{}, invoker)

	req := &generate.CompetitiveRequest{ProjectDescription: "an offline notes app"}
	outcome := svc.GenerateCompetitive(context.Background(), req)

	if outcome.Status != StatusInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %s", outcome.Status)
	}
	if invoker.calls != 0 {
		t.Fatalf("invoker must not be called with zero quota")
	}
}

func TestGenerateInsights(t *testing.T) {
	collector := &mockCollector{rc: sampleRepoContext()}
	invoker := &mockInvoker{completion: &llm.Completion{
		Content: `{"overall_assessment":"solid","strengths":["tests"],` +
			`"improvement_areas":["docs"],"technical_complexity":"medium"}`,
		TotalTokens: 110,
	}}
	svc := NewGenerateService(collector, invoker)

	req := &generate.InsightsRequest{GithubRepo: "acme/widget", Credits: 400}
	outcome := svc.GenerateInsights(context.Background(), req)

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", outcome.Status, outcome.Message)
	}
	insights, ok := outcome.Payload.(*artifact.RepoInsights)
	if !ok || insights.TechnicalComplexity != "medium" {
		t.Fatalf("unexpected payload %#v", outcome.Payload)
	}
	if collector.calls != 1 {
		t.Fatalf("expected one context collection, got %d", collector.calls)
	}
}

func TestMeterUsage(t *testing.T) {
	if err := meterUsage(&llm.Completion{TotalTokens: 100}, 100); err != nil {
		t.Fatalf("usage equal to quota must pass, got %v", err)
	}
	if err := meterUsage(&llm.Completion{TotalTokens: 101}, 100); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if err := meterUsage(&llm.Completion{TotalTokens: 10, Truncated: true}, 100); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("truncation must trip the meter, got %v", err)
	}
}
