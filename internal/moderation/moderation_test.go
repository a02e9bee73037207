package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModerator struct {
	flagged bool
	scores  map[string]float64
	err     error
	calls   int
}

func (f *fakeModerator) Moderate(ctx context.Context, text string) (bool, map[string]float64, error) {
	f.calls++
	return f.flagged, f.scores, f.err
}

func TestClassifyThreshold(t *testing.T) {
	m := &fakeModerator{scores: map[string]float64{"violence": 0.26, "hate": 0.01}}

	allowed, err := NewFilter(m, 0.25).Classify(context.Background(), "a knight")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = NewFilter(m, 0.3).Classify(context.Background(), "a knight")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestClassifyScoreEqualToThresholdRejects(t *testing.T) {
	m := &fakeModerator{scores: map[string]float64{"sexual": 0.1}}
	allowed, err := NewFilter(m, 0.1).Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestClassifyFlaggedWithLowScores(t *testing.T) {
	m := &fakeModerator{flagged: true, scores: map[string]float64{"hate": 0.001}}
	allowed, err := NewFilter(m, 0.25).Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestClassifyClean(t *testing.T) {
	m := &fakeModerator{scores: map[string]float64{"hate": 0.001, "violence": 0.02}}
	allowed, err := NewFilter(m, 0.25).Classify(context.Background(), "a cat on a mat")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, m.calls)
}

func TestClassifyPropagatesError(t *testing.T) {
	boom := errors.New("service unavailable")
	m := &fakeModerator{err: boom}
	allowed, err := NewFilter(m, 0.25).Classify(context.Background(), "x")
	assert.False(t, allowed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.calls)
}

func TestNewFilterDefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, NewFilter(&fakeModerator{}, 0).Threshold())
}
