package service

import (
	"context"

	"github.com/shardforge/worker/internal/dto/generate"
	"github.com/shardforge/worker/internal/pkg/artifact"
	"github.com/shardforge/worker/internal/pkg/github"
	"github.com/shardforge/worker/internal/pkg/llm"
	"k8s.io/klog/v2"
)

// Collector gathers repository context for the pipelines that need it.
type Collector interface {
	Collect(ctx context.Context, repoURL, token string) (*github.RepoContext, error)
}

// Invoker sends an assembled prompt to the model in forced-JSON mode.
type Invoker interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (*llm.Completion, error)
}

// GenerateService runs one generation pipeline per request. All per-request
// state lives on the stack of the method call; nothing is shared across
// invocations.
type GenerateService struct {
	collector Collector
	invoker   Invoker
}

func NewGenerateService(collector Collector, invoker Invoker) *GenerateService {
	return &GenerateService{
		collector: collector,
		invoker:   invoker,
	}
}

// GenerateReadme runs the README pipeline: collect → prompt → invoke →
// meter → validate document tree.
func (s *GenerateService) GenerateReadme(ctx context.Context, req *generate.ReadmeRequest) *Outcome {
	if err := checkQuota(req.Credits); err != nil {
		return insufficientCreditsOutcome(0)
	}

	rc, err := s.collector.Collect(ctx, req.GithubRepo, req.GithubToken)
	if err != nil {
		return failureOutcome(err, 0)
	}

	system, user := buildReadmePrompt(req, rc)
	completion, err := s.invoker.Complete(ctx, system, user, req.Credits)
	if err != nil {
		return failureOutcome(err, 0)
	}
	if err := meterUsage(completion, req.Credits); err != nil {
		return insufficientCreditsOutcome(completion.TotalTokens)
	}

	doc, err := artifact.ValidateDocument([]byte(completion.Content))
	if err != nil {
		return failureOutcome(err, completion.TotalTokens)
	}
	if !artifact.HasOpeningMarker(doc) {
		klog.Warningf("readme for shard %s is missing the opening marker", req.ShardID)
	}

	klog.V(6).Infof("readme generated: shard=%s project=%s tokens=%d",
		req.ShardID, req.Metadata.ProjectName, completion.TotalTokens)
	return successOutcome(doc, completion.TotalTokens)
}

// GenerateIdeas runs the project-idea pipeline. No repository context is
// involved.
func (s *GenerateService) GenerateIdeas(ctx context.Context, req *generate.IdeaRequest) *Outcome {
	system, user := buildIdeaPrompt(req)
	return s.runContextFree(ctx, req.Credits, system, user, func(raw []byte) (any, error) {
		return artifact.DecodeIdeaList(raw)
	})
}

// GenerateStack runs the stack-recommendation pipeline.
func (s *GenerateService) GenerateStack(ctx context.Context, req *generate.StackRequest) *Outcome {
	system, user := buildStackPrompt(req)
	return s.runContextFree(ctx, req.Credits, system, user, func(raw []byte) (any, error) {
		return artifact.DecodeStackPlan(raw)
	})
}

// GenerateCompetitive runs the competitive-analysis pipeline.
func (s *GenerateService) GenerateCompetitive(ctx context.Context, req *generate.CompetitiveRequest) *Outcome {
	system, user := buildCompetitivePrompt(req)
	return s.runContextFree(ctx, req.Credits, system, user, func(raw []byte) (any, error) {
		return artifact.DecodeCompetitiveAnalysis(raw)
	})
}

// GenerateInsights runs the repository-review pipeline: same shape as the
// README pipeline, key-presence validation instead of a document tree.
func (s *GenerateService) GenerateInsights(ctx context.Context, req *generate.InsightsRequest) *Outcome {
	if err := checkQuota(req.Credits); err != nil {
		return insufficientCreditsOutcome(0)
	}

	rc, err := s.collector.Collect(ctx, req.GithubRepo, req.GithubToken)
	if err != nil {
		return failureOutcome(err, 0)
	}

	system, user := buildInsightsPrompt(rc)
	completion, err := s.invoker.Complete(ctx, system, user, req.Credits)
	if err != nil {
		return failureOutcome(err, 0)
	}
	if err := meterUsage(completion, req.Credits); err != nil {
		return insufficientCreditsOutcome(completion.TotalTokens)
	}

	insights, err := artifact.DecodeRepoInsights([]byte(completion.Content))
	if err != nil {
		return failureOutcome(err, completion.TotalTokens)
	}
	return successOutcome(insights, completion.TotalTokens)
}

// runContextFree is the shared state machine for pipelines without a context
// collection stage: quota gate → invoke → meter → validate.
func (s *GenerateService) runContextFree(ctx context.Context, quota int, system, user string,
	decode func(raw []byte) (any, error)) *Outcome {

	if err := checkQuota(quota); err != nil {
		return insufficientCreditsOutcome(0)
	}

	completion, err := s.invoker.Complete(ctx, system, user, quota)
	if err != nil {
		return failureOutcome(err, 0)
	}
	if err := meterUsage(completion, quota); err != nil {
		return insufficientCreditsOutcome(completion.TotalTokens)
	}

	payload, err := decode([]byte(completion.Content))
	if err != nil {
		return failureOutcome(err, completion.TotalTokens)
	}
	return successOutcome(payload, completion.TotalTokens)
}
