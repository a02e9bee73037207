package moderation

import (
	"context"
	"fmt"
)

// DefaultThreshold rejects text when any category scores at least this much.
// Earlier deployments ran with 0.01 and 0.1.
const DefaultThreshold = 0.25

// Moderator is the remote classification service.
type Moderator interface {
	Moderate(ctx context.Context, text string) (flagged bool, scores map[string]float64, err error)
}

type Filter struct {
	moderator Moderator
	threshold float64
}

func NewFilter(moderator Moderator, threshold float64) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Filter{moderator: moderator, threshold: threshold}
}

func (f *Filter) Threshold() float64 {
	return f.threshold
}

// Classify reports whether text may be sent on. The per-category check is
// stricter than the service verdict: text the service does not flag is still
// rejected when a single score reaches the threshold.
func (f *Filter) Classify(ctx context.Context, text string) (bool, error) {
	flagged, scores, err := f.moderator.Moderate(ctx, text)
	if err != nil {
		return false, fmt.Errorf("moderation request failed: %w", err)
	}
	for _, score := range scores {
		if score >= f.threshold {
			return false, nil
		}
	}
	return !flagged, nil
}
