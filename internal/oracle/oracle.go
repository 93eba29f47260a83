package oracle

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"mediasort/internal/media"
	"mediasort/internal/services/llm"
)

// Usage is the cost unit of oracle calls. Add is associative and commutative.
type Usage struct {
	Requests         int `json:"requests"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Add returns the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		Requests:         u.Requests + other.Requests,
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
	}
}

// Tokens is the total token count.
func (u Usage) Tokens() int { return u.PromptTokens + u.CompletionTokens }

// IsZero reports whether no cost was incurred.
func (u Usage) IsZero() bool { return u == Usage{} }

func fromLLM(u llm.Usage) Usage {
	return Usage{Requests: u.Requests, PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens}
}

// Year accepts numbers, numeric strings, and null.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*y = 0
		return nil
	}
	*y = Year(n)
	return nil
}

// Attributes are the category-specific fields an oracle may return alongside
// its verdict. Which fields are populated depends on the category asked about.
type Attributes struct {
	Animated       media.Verdict  `json:"animated,omitempty"`
	Title          string         `json:"title,omitempty"`
	LocalizedTitle string         `json:"localized_title,omitempty"`
	Year           Year           `json:"year,omitempty"`
	Language       media.Language `json:"language,omitempty"`
	VR             media.Verdict  `json:"vr,omitempty"`
	AltStudio      media.Verdict  `json:"alt_studio,omitempty"`
	FC2            media.Verdict  `json:"fc2,omitempty"`
	OnlyFans       media.Verdict  `json:"onlyfans,omitempty"`
	Code           string         `json:"code,omitempty"`
	Performers     []string       `json:"performers,omitempty"`
	ExternalID     string         `json:"external_id,omitempty"`
	Name           string         `json:"name,omitempty"`
}

// Result is one classification answer. An empty Verdict with Error set means
// the call failed and the category carries no evidence.
type Result struct {
	Verdict media.Verdict `json:"verdict"`
	Attributes
	Reason string `json:"reason,omitempty"`
	Usage  Usage  `json:"usage"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the result records an oracle failure.
func (r Result) Failed() bool { return r.Verdict == media.VerdictNone }

// Decision is the decision oracle's answer.
type Decision struct {
	Category media.Category `json:"category"`
	Reason   string         `json:"reason"`
	Usage    Usage          `json:"usage"`
}

// Classifier answers "is this request of category C?".
type Classifier interface {
	Classify(ctx context.Context, category media.Category, req media.Request) (Result, error)
}

// Decider picks a category from the accumulated evidence of a dispatch that
// produced no yes verdict.
type Decider interface {
	Decide(ctx context.Context, evidence json.RawMessage) (Decision, error)
}

// AliasVerifier filters raw alias search hits down to names that belong to
// the same performer as the first entry.
type AliasVerifier interface {
	VerifyAliases(ctx context.Context, aliases []string) ([]string, Usage, error)
}
