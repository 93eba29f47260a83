package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/services"
	"mediasort/internal/services/llm"
	"mediasort/internal/textutil"
)

// Completer is the slice of the LLM client the oracle needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, llm.Usage, error)
}

// LLM implements Classifier, Decider, and AliasVerifier on top of a chat model.
type LLM struct {
	client Completer
	logger *slog.Logger
}

// NewLLM wraps a chat completion client.
func NewLLM(client Completer, logger *slog.Logger) *LLM {
	return &LLM{client: client, logger: logging.NewComponentLogger(logger, "oracle")}
}

type classifyResponse struct {
	Verdict        media.Verdict  `json:"verdict"`
	IsAnim         media.Verdict  `json:"is_anim"`
	Title          string         `json:"title"`
	TitleInChinese string         `json:"title_in_chinese"`
	ReleaseYear    Year           `json:"release_year"`
	Language       media.Language `json:"language"`
	IsVR           media.Verdict  `json:"is_vr"`
	FromMadou      media.Verdict  `json:"from_madou"`
	FromFC2        media.Verdict  `json:"from_fc2"`
	FromOnlyFans   media.Verdict  `json:"from_onlyfans"`
	Bango          string         `json:"bango"`
	Actors         []string       `json:"actors"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Reason         string         `json:"reason"`
}

func (r classifyResponse) result() Result {
	return Result{
		Verdict: r.Verdict,
		Attributes: Attributes{
			Animated:       r.IsAnim,
			Title:          strings.TrimSpace(r.Title),
			LocalizedTitle: strings.TrimSpace(r.TitleInChinese),
			Year:           r.ReleaseYear,
			Language:       r.Language,
			VR:             r.IsVR,
			AltStudio:      r.FromMadou,
			FC2:            r.FromFC2,
			OnlyFans:       r.FromOnlyFans,
			Code:           strings.ToUpper(strings.TrimSpace(r.Bango)),
			Performers:     textutil.Dedupe(r.Actors),
			ExternalID:     strings.TrimSpace(r.ID),
			Name:           strings.TrimSpace(r.Name),
		},
		Reason: strings.TrimSpace(r.Reason),
	}
}

// Classify asks the model whether req belongs to category.
func (o *LLM) Classify(ctx context.Context, category media.Category, req media.Request) (Result, error) {
	system, err := classifyPrompt(category)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "oracle", "classify", category.String(), err)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	content, usage, err := o.client.CompleteJSON(ctx, system, string(payload))
	if err != nil {
		return Result{Usage: fromLLM(usage)}, services.Wrap(services.ErrOracleUnavailable, "oracle", "classify", category.String(), err)
	}

	var parsed classifyResponse
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return Result{Usage: fromLLM(usage)}, services.Wrap(services.ErrOracleUnavailable, "oracle", "classify", "parse "+category.String()+" answer", err)
	}
	result := parsed.result()
	result.Usage = fromLLM(usage)
	if result.Verdict == media.VerdictNone {
		return result, services.Wrap(services.ErrOracleUnavailable, "oracle", "classify", category.String()+" answer carried no verdict", nil)
	}

	logging.WithContext(ctx, o.logger).Debug(
		"classification answered",
		logging.String(logging.FieldCategory, category.String()),
		logging.String("verdict", string(result.Verdict)),
		logging.String("reason", result.Reason),
		logging.Int("tokens", result.Usage.Tokens()),
	)
	return result, nil
}

type decisionResponse struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Decide asks the model to pick a category from the dispatch evidence.
func (o *LLM) Decide(ctx context.Context, evidence json.RawMessage) (Decision, error) {
	if len(evidence) == 0 {
		return Decision{}, services.Wrap(services.ErrValidation, "oracle", "decide", "empty evidence", nil)
	}
	content, usage, err := o.client.CompleteJSON(ctx, decisionPrompt(), string(evidence))
	if err != nil {
		return Decision{Usage: fromLLM(usage)}, services.Wrap(services.ErrOracleUnavailable, "oracle", "decide", "", err)
	}
	var parsed decisionResponse
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return Decision{Usage: fromLLM(usage)}, services.Wrap(services.ErrOracleUnavailable, "oracle", "decide", "parse answer", err)
	}
	category, err := media.ParseCategory(parsed.Category)
	if err != nil {
		return Decision{Usage: fromLLM(usage)}, services.Wrap(services.ErrOracleUnavailable, "oracle", "decide", "answer outside category set", err)
	}
	return Decision{Category: category, Reason: strings.TrimSpace(parsed.Reason), Usage: fromLLM(usage)}, nil
}

type aliasResponse struct {
	Aliases []string `json:"aliases"`
}

// VerifyAliases asks the model which search hits name the seed performer.
func (o *LLM) VerifyAliases(ctx context.Context, aliases []string) ([]string, Usage, error) {
	aliases = textutil.Dedupe(aliases)
	if len(aliases) == 0 {
		return nil, Usage{}, errors.New("verify aliases: empty alias list")
	}
	payload, err := json.Marshal(aliases)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("encode aliases: %w", err)
	}
	content, usage, err := o.client.CompleteJSON(ctx, aliasPrompt, string(payload))
	if err != nil {
		return nil, fromLLM(usage), services.Wrap(services.ErrOracleUnavailable, "oracle", "verify aliases", aliases[0], err)
	}
	var parsed aliasResponse
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return nil, fromLLM(usage), services.Wrap(services.ErrOracleUnavailable, "oracle", "verify aliases", "parse answer", err)
	}
	return textutil.Dedupe(parsed.Aliases), fromLLM(usage), nil
}
