// Package options turns the free text of a generate command into a validated
// GenerationRequest.
package options

import (
	"fmt"
	"strings"
)

type SizeMode string

const (
	// SizeModeSymbolic accepts square, portrait and landscape.
	SizeModeSymbolic SizeMode = "symbolic"
	// SizeModeRaw accepts the WxH strings the image API understands.
	SizeModeRaw SizeMode = "raw"
)

const (
	QualityStandard = "standard"
	QualityHD       = "hd"

	ModelDallE2 = "dall-e-2"
	ModelDallE3 = "dall-e-3"

	StyleVivid   = "vivid"
	StyleNatural = "natural"

	MinCount = 1
	MaxCount = 4
)

var (
	Qualities = []string{QualityStandard, QualityHD}
	Models    = []string{ModelDallE2, ModelDallE3}
	Styles    = []string{StyleVivid, StyleNatural}

	SymbolicSizes = []string{"square", "portrait", "landscape"}
	RawSizes      = []string{"256x256", "512x512", "1024x1024", "1792x1024", "1024x1792"}

	symbolicToRaw = map[string]string{
		"square":    "1024x1024",
		"portrait":  "1024x1792",
		"landscape": "1792x1024",
	}
)

// GenerationRequest holds resolved values only. Size is always a WxH string.
type GenerationRequest struct {
	Prompt  string
	Model   string
	Quality string
	Size    string
	Count   int
	Style   string // empty: let the service choose
}

// ValidationError names the offending field and what it accepts.
type ValidationError struct {
	Field  string
	Value  string
	Valid  []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid value %q for %s, valid values: %s", e.Value, e.Field, strings.Join(e.Valid, ", "))
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
