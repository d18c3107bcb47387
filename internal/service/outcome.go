package service

import (
	"errors"

	"github.com/shardforge/worker/internal/pkg/artifact"
	"github.com/shardforge/worker/internal/pkg/github"
)

// Status is the three-way terminal state of a pipeline run.
type Status string

const (
	StatusSuccess             Status = "success"
	StatusInsufficientCredits Status = "insufficient_credits"
	StatusFailed              Status = "failed"
)

// Failure categories preserved for the caller. Insufficient credits is not a
// category: it is its own status, because it is caller-actionable while a
// failure is operator-actionable.
const (
	CategoryInvalidIdentifier = "invalid_identifier"
	CategoryAccessDenied      = "access_denied"
	CategoryUpstreamError     = "upstream_error"
	CategoryParseError        = "parse_error"
	CategorySchemaError       = "schema_error"
)

// Outcome is the terminal result of one pipeline run. Produced once, never
// mutated.
type Outcome struct {
	Status      Status `json:"status"`
	Payload     any    `json:"payload,omitempty"`
	UsedCredits int    `json:"used_credits"`
	Category    string `json:"category,omitempty"`
	Message     string `json:"message,omitempty"`
}

func successOutcome(payload any, usedCredits int) *Outcome {
	return &Outcome{
		Status:      StatusSuccess,
		Payload:     payload,
		UsedCredits: usedCredits,
	}
}

func insufficientCreditsOutcome(usedCredits int) *Outcome {
	return &Outcome{
		Status:      StatusInsufficientCredits,
		UsedCredits: usedCredits,
		Message:     "not enough credits to complete the generation",
	}
}

// failureOutcome maps an error from any pipeline stage to its externally
// observable category.
func failureOutcome(err error, usedCredits int) *Outcome {
	out := &Outcome{
		Status:      StatusFailed,
		UsedCredits: usedCredits,
		Message:     err.Error(),
	}

	var accessErr *github.AccessError
	var parseErr *artifact.ParseError
	var schemaErr *artifact.SchemaError

	switch {
	case errors.Is(err, github.ErrInvalidRepoURL):
		out.Category = CategoryInvalidIdentifier
	case errors.As(err, &accessErr):
		out.Category = CategoryAccessDenied
	case errors.As(err, &parseErr):
		out.Category = CategoryParseError
	case errors.As(err, &schemaErr):
		out.Category = CategorySchemaError
	default:
		// transport, provider and model errors all land here
		out.Category = CategoryUpstreamError
	}
	return out
}
