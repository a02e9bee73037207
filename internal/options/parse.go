package options

import (
	"strings"
)

const FlagPrefix = "--"

const (
	FieldQuality = "quality"
	FieldSize    = "size"
	FieldModel   = "model"
	FieldCount   = "count"
	FieldStyle   = "style"
	FieldPrompt  = "prompt"
)

// flag name or alias -> field
var flagNames = map[string]string{
	"quality": FieldQuality,
	"q":       FieldQuality,
	"size":    FieldSize,
	"s":       FieldSize,
	"model":   FieldModel,
	"m":       FieldModel,
	"count":   FieldCount,
	"n":       FieldCount,
	"style":   FieldStyle,
	"st":      FieldStyle,
}

// Flags is the raw, unvalidated value of each recognised flag. nil means the
// flag was not given.
type Flags struct {
	Quality *string
	Size    *string
	Model   *string
	Count   *string
	Style   *string
}

func (f *Flags) slot(field string) **string {
	switch field {
	case FieldQuality:
		return &f.Quality
	case FieldSize:
		return &f.Size
	case FieldModel:
		return &f.Model
	case FieldCount:
		return &f.Count
	case FieldStyle:
		return &f.Style
	}
	return nil
}

func flagField(token string) (string, bool) {
	if !strings.HasPrefix(token, FlagPrefix) {
		return "", false
	}
	field, ok := flagNames[strings.TrimPrefix(token, FlagPrefix)]
	return field, ok
}

// Parse splits text into the prompt and the recognised flags. A flag value is
// the first token after the flag; anything after it stays in the prompt.
// Unknown --words are left in the prompt untouched.
func Parse(text string) (string, Flags, error) {
	var flags Flags
	tokens := strings.Fields(text)
	promptTokens := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		field, ok := flagField(tokens[i])
		if !ok {
			promptTokens = append(promptTokens, tokens[i])
			continue
		}
		if i+1 >= len(tokens) {
			return "", Flags{}, &ValidationError{Field: field, Reason: "missing value after " + tokens[i]}
		}
		if _, isFlag := flagField(tokens[i+1]); isFlag {
			return "", Flags{}, &ValidationError{Field: field, Reason: "missing value after " + tokens[i]}
		}
		slot := flags.slot(field)
		if *slot != nil {
			return "", Flags{}, &ValidationError{Field: field, Reason: "given more than once"}
		}
		value := tokens[i+1]
		*slot = &value
		i++
	}
	return strings.Join(promptTokens, " "), flags, nil
}
