package options

import (
	"strconv"
	"strings"
)

type Resolver struct {
	mode     SizeMode
	maxCount int
}

// NewResolver builds a resolver for one size mode. maxCount <= 0 uses MaxCount.
func NewResolver(mode SizeMode, maxCount int) *Resolver {
	if mode != SizeModeRaw {
		mode = SizeModeSymbolic
	}
	if maxCount <= 0 {
		maxCount = MaxCount
	}
	return &Resolver{mode: mode, maxCount: maxCount}
}

// Resolve parses text and validates every option, see ResolveFlags.
func (r *Resolver) Resolve(text string) (GenerationRequest, error) {
	prompt, flags, err := Parse(text)
	if err != nil {
		return GenerationRequest{}, err
	}
	return r.ResolveFlags(prompt, flags)
}

// ResolveFlags applies defaults to absent flags and checks each value against
// its option set. Out of set values are errors, never replaced by defaults.
func (r *Resolver) ResolveFlags(prompt string, flags Flags) (GenerationRequest, error) {
	req := GenerationRequest{
		Prompt: strings.Join(strings.Fields(prompt), " "),
	}
	if req.Prompt == "" {
		return GenerationRequest{}, &ValidationError{Field: FieldPrompt, Reason: "prompt is empty"}
	}

	var err error
	if req.Quality, err = oneOf(FieldQuality, flags.Quality, QualityHD, Qualities); err != nil {
		return GenerationRequest{}, err
	}
	if req.Model, err = oneOf(FieldModel, flags.Model, ModelDallE3, Models); err != nil {
		return GenerationRequest{}, err
	}
	if req.Size, err = r.size(flags.Size); err != nil {
		return GenerationRequest{}, err
	}
	if req.Count, err = r.count(flags.Count); err != nil {
		return GenerationRequest{}, err
	}
	if flags.Style != nil {
		if req.Style, err = oneOf(FieldStyle, flags.Style, "", Styles); err != nil {
			return GenerationRequest{}, err
		}
	}
	return req, nil
}

// first whitespace token only, lower cased
func firstToken(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func oneOf(field string, raw *string, def string, valid []string) (string, error) {
	if raw == nil {
		return def, nil
	}
	value := firstToken(*raw)
	if !contains(valid, value) {
		return "", &ValidationError{Field: field, Value: value, Valid: valid}
	}
	return value, nil
}

func (r *Resolver) size(raw *string) (string, error) {
	if r.mode == SizeModeRaw {
		return oneOf(FieldSize, raw, "1024x1024", RawSizes)
	}
	name, err := oneOf(FieldSize, raw, "square", SymbolicSizes)
	if err != nil {
		return "", err
	}
	return symbolicToRaw[name], nil
}

func (r *Resolver) count(raw *string) (int, error) {
	if raw == nil {
		return MinCount, nil
	}
	value := firstToken(*raw)
	n, err := strconv.Atoi(value)
	if err != nil || n < MinCount || n > r.maxCount {
		return 0, &ValidationError{
			Field: FieldCount,
			Value: value,
			Valid: []string{strconv.Itoa(MinCount) + "-" + strconv.Itoa(r.maxCount)},
		}
	}
	return n, nil
}
