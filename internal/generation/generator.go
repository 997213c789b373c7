package generation

import (
	"context"
	"math"
)

// Result is the output of a single model call.
type Result struct {
	Subject          string `json:"subject"`
	BodyHTML         string `json:"body_html"`
	BodyText         string `json:"body_text"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Generator produces email content from a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// Cost returns the USD cost of a model call given per-1K-token rates,
// rounded to 6 decimal places.
func Cost(promptTokens, completionTokens int, inputRate, outputRate float64) float64 {
	cost := float64(promptTokens)/1000*inputRate + float64(completionTokens)/1000*outputRate
	return math.Round(cost*1e6) / 1e6
}
