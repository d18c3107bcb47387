package service

import (
	"errors"

	"github.com/shardforge/worker/internal/pkg/llm"
	"k8s.io/klog/v2"
)

// ErrInsufficientCredits is returned by both credit checkpoints so callers
// have a single code path for "not enough credits" regardless of whether it
// was detected before or after the model call.
var ErrInsufficientCredits = errors.New("insufficient credits")

// checkQuota is the pre-invocation gate: a non-positive quota short-circuits
// the pipeline before any model cost is incurred.
func checkQuota(quota int) error {
	if quota <= 0 {
		klog.V(6).Infof("quota gate: declared quota %d, skipping model call", quota)
		return ErrInsufficientCredits
	}
	return nil
}

// meterUsage is the post-invocation gate. Tokens already spent cannot be
// un-spent; flagging over-quota here is a reporting decision, not a rollback.
// A truncated completion means the quota was too small for the model to
// finish, so it lands on the same outcome.
func meterUsage(completion *llm.Completion, quota int) error {
	if completion.Truncated {
		klog.V(6).Infof("credit meter: completion truncated at %d tokens", completion.TotalTokens)
		return ErrInsufficientCredits
	}
	if completion.TotalTokens > quota {
		klog.V(6).Infof("credit meter: used %d tokens over quota %d", completion.TotalTokens, quota)
		return ErrInsufficientCredits
	}
	return nil
}
