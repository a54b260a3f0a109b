// Package tiers implements the three response generators the router can
// select: knowledge-base lookup, fine-tuned model, and retrieval-augmented
// generation with human escalation.
package tiers

import (
	"context"

	"github.com/quanterra/finassist/intent"
)

// Request carries everything a generator needs for one query.
type Request struct {
	Query           string
	Intent          string
	Confidence      float64
	Matches         []intent.Match
	ForceEscalation bool
}

// Response is a generated answer. An empty Text signals the generator
// could not answer and the caller should try the fallback tier.
type Response struct {
	Text       string
	Confidence float64
	Tier       int
	Metadata   map[string]string
}

// Generator produces a response for one request. Every tier implements
// this single contract; the orchestrator never inspects tier internals.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
