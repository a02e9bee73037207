package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	req, err := NewResolver(SizeModeSymbolic, 0).Resolve("draw a cat")
	require.NoError(t, err)
	assert.Equal(t, GenerationRequest{
		Prompt:  "draw a cat",
		Model:   ModelDallE3,
		Quality: QualityHD,
		Size:    "1024x1024",
		Count:   1,
	}, req)
}

func TestResolveQualityFlag(t *testing.T) {
	req, err := NewResolver(SizeModeSymbolic, 0).Resolve("draw a cat --q hd")
	require.NoError(t, err)
	assert.Equal(t, "draw a cat", req.Prompt)
	assert.Equal(t, QualityHD, req.Quality)
}

func TestResolveAllFields(t *testing.T) {
	req, err := NewResolver(SizeModeSymbolic, 0).Resolve("a lighthouse --quality standard --size landscape --model dall-e-2 --count 4 --style natural")
	require.NoError(t, err)
	assert.Equal(t, GenerationRequest{
		Prompt:  "a lighthouse",
		Model:   ModelDallE2,
		Quality: QualityStandard,
		Size:    "1792x1024",
		Count:   4,
		Style:   StyleNatural,
	}, req)
}

func TestResolveRawMode(t *testing.T) {
	r := NewResolver(SizeModeRaw, 0)

	req, err := r.Resolve("a lighthouse --s 512x512")
	require.NoError(t, err)
	assert.Equal(t, "512x512", req.Size)

	_, err = r.Resolve("a lighthouse --s portrait")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldSize, verr.Field)
	assert.Equal(t, RawSizes, verr.Valid)
}

func TestResolveSymbolicModeRejectsRaw(t *testing.T) {
	_, err := NewResolver(SizeModeSymbolic, 0).Resolve("a lighthouse --s 1024x1024")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldSize, verr.Field)
	assert.Equal(t, SymbolicSizes, verr.Valid)
}

func TestResolveRejectsEachField(t *testing.T) {
	tests := []struct {
		field string
		text  string
	}{
		{FieldQuality, "a cat --quality ultra"},
		{FieldSize, "a cat --size huge"},
		{FieldModel, "a cat --model dall-e-4"},
		{FieldCount, "a cat --count 5"},
		{FieldStyle, "a cat --style gritty"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := NewResolver(SizeModeSymbolic, 0).Resolve(tt.text)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Valid)
			assert.Contains(t, verr.Error(), tt.field)
		})
	}
}

func TestResolveCountBounds(t *testing.T) {
	r := NewResolver(SizeModeSymbolic, 0)
	for _, bad := range []string{"0", "-1", "five", "4.5"} {
		_, err := r.Resolve("a cat --n " + bad)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), bad)
		assert.Equal(t, FieldCount, verr.Field)
	}

	req, err := NewResolver(SizeModeSymbolic, 2).Resolve("a cat --n 2")
	require.NoError(t, err)
	assert.Equal(t, 2, req.Count)

	_, err = NewResolver(SizeModeSymbolic, 2).Resolve("a cat --n 3")
	assert.Error(t, err)
}

func TestResolveEmptyPrompt(t *testing.T) {
	_, err := NewResolver(SizeModeSymbolic, 0).Resolve("--q hd")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldPrompt, verr.Field)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(SizeModeSymbolic, 0)
	text := "a red fox --quality standard --size portrait --model dall-e-3 --count 1 --style vivid"

	first, err := r.Resolve(text)
	require.NoError(t, err)
	second, err := r.Resolve(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a request resolved in raw mode resolves to itself
	raw := NewResolver(SizeModeRaw, 0)
	req, err := raw.Resolve("a red fox --s 1792x1024 --st natural --n 2")
	require.NoError(t, err)
	again, err := raw.ResolveFlags(req.Prompt, Flags{
		Quality: &req.Quality,
		Size:    &req.Size,
		Model:   &req.Model,
		Count:   strPtr("2"),
		Style:   &req.Style,
	})
	require.NoError(t, err)
	assert.Equal(t, req, again)
}

func TestResolveFlagsKeepsFirstTokenOnly(t *testing.T) {
	r := NewResolver(SizeModeSymbolic, 0)
	req, err := r.ResolveFlags("a cat", Flags{Quality: strPtr("hd trailing garbage"), Style: strPtr(" Natural  ")})
	require.NoError(t, err)
	assert.Equal(t, QualityHD, req.Quality)
	assert.Equal(t, StyleNatural, req.Style)
}

func strPtr(s string) *string {
	return &s
}
