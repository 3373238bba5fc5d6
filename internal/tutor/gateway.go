package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verso-cli/verso/internal/llm"
)

// Gateway is the domain-level model gateway. It owns prompts, schemas,
// and output shaping; the provider underneath owns transport and retry.
type Gateway struct {
	provider llm.Provider
	cfg      Config
}

// NewGateway creates a gateway over the given provider.
func NewGateway(provider llm.Provider, cfg Config) *Gateway {
	return &Gateway{provider: provider, cfg: cfg}
}

// ValidateKey sends a minimal probe request and classifies the outcome.
// A nil error means the stored credential works.
func (g *Gateway) ValidateKey(ctx context.Context) ProbeResult {
	ctx = llm.WithPurpose(ctx, "probe")

	req := llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: probePrompt}},
		MaxTokens: 8,
	}

	_, err := g.provider.Generate(ctx, req)
	if err == nil {
		return ProbeValid
	}

	var authErr *llm.ErrAuth
	if errors.As(err, &authErr) {
		return ProbeKeyInvalid
	}
	var rateErr *llm.ErrRateLimit
	if errors.As(err, &rateErr) {
		return ProbeQuotaExceeded
	}
	var unavailErr *llm.ErrProviderUnavailable
	if errors.As(err, &unavailErr) {
		return ProbeNetworkError
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ProbeNetworkError
	}
	return ProbeUnknown
}

// passageOutput is the raw passage JSON from the model.
type passageOutput struct {
	Passage   string   `json:"passage"`
	Sentences []string `json:"sentences"`
}

// GeneratePassage produces a graded passage in the study language,
// split into sentences. When the model's sentence list is unusable,
// the prose output is split with the punkt tokenizer instead.
func (g *Gateway) GeneratePassage(ctx context.Context, spec PassageSpec) ([]Sentence, error) {
	if spec.Theme != "" {
		if n := utf8.RuneCountInString(spec.Theme); n < minThemeLen || n > maxThemeLen {
			return nil, &ValidationError{
				Field:  "theme",
				Reason: fmt.Sprintf("must be %d-%d characters, got %d", minThemeLen, maxThemeLen, n),
			}
		}
	}

	ctx = llm.WithPurpose(ctx, "passage-gen")

	req := llm.Request{
		System: passageSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPassageUserMessage(spec, g.cfg.PassageSentences)},
		},
		Schema:      PassageSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		var invErr *llm.ErrInvalidResponse
		if errors.As(err, &invErr) {
			// The model ignored the JSON instruction. Salvage by
			// splitting whatever prose it produced.
			if sents := splitSentences(stripCodeFences(string(invErr.Content))); len(sents) > 0 {
				return toSentences(sents), nil
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil, fmt.Errorf("passage generation: %w", err)
	}

	var out passageOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		if sents := splitSentences(stripCodeFences(string(resp.Content))); len(sents) > 0 {
			return toSentences(sents), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	sents := make([]string, 0, len(out.Sentences))
	for _, s := range out.Sentences {
		if t := strings.TrimSpace(s); t != "" {
			sents = append(sents, t)
		}
	}

	// A single element carrying the whole passage gets re-split.
	if len(sents) == 1 {
		if split := splitSentences(sents[0]); len(split) > 1 {
			sents = split
		}
	}
	if len(sents) == 0 {
		sents = splitSentences(out.Passage)
	}
	if len(sents) == 0 {
		return nil, ErrMalformedResponse
	}

	return toSentences(sents), nil
}

func toSentences(texts []string) []Sentence {
	out := make([]Sentence, len(texts))
	for i, t := range texts {
		out[i] = Sentence{Index: i, Text: t}
	}
	return out
}

// Translate translates text between the given languages.
func (g *Gateway) Translate(ctx context.Context, text, from, to string) (string, error) {
	ctx = llm.WithPurpose(ctx, "translate")

	req := llm.Request{
		System: translateSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildTranslateUserMessage(text, from, to)},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.3,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}

	out := strings.TrimSpace(string(resp.Content))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// RateTranslation returns qualitative markdown feedback on a whole-passage
// translation. No numeric score is produced.
func (g *Gateway) RateTranslation(ctx context.Context, original, userText, reference, from, to string) (string, error) {
	ctx = llm.WithPurpose(ctx, "feedback")

	req := llm.Request{
		System: feedbackSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFeedbackUserMessage(original, userText, reference, from, to)},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("rate translation: %w", err)
	}

	out := strings.TrimSpace(string(resp.Content))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// batchFeedbackOutput is the raw batch rating JSON from the model.
type batchFeedbackOutput struct {
	Items []struct {
		Index     int    `json:"index"`
		Feedback  string `json:"feedback"`
		Grade     string `json:"grade"`
		Reference string `json:"reference"`
	} `json:"items"`
}

// RateSentenceBatch grades per-sentence translations in a single call.
// Blank attempts are excluded from PerSentence but counted in TotalCount;
// PerSentence carries exactly one entry, in passage order, for every
// non-blank attempt. A grade or item the model omits defaults to C.
func (g *Gateway) RateSentenceBatch(ctx context.Context, originals, userTexts []string, from, to string) (*FeedbackResult, error) {
	result := &FeedbackResult{TotalCount: len(originals)}

	attempts := make(map[int]string)
	for i := range originals {
		if i < len(userTexts) {
			if t := strings.TrimSpace(userTexts[i]); t != "" {
				attempts[i] = t
			}
		}
	}
	result.TranslatedCount = len(attempts)
	if len(attempts) == 0 {
		return result, nil
	}

	ctx = llm.WithPurpose(ctx, "feedback")

	req := llm.Request{
		System: batchFeedbackSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildBatchFeedbackUserMessage(originals, attempts, from, to)},
		},
		Schema:      BatchFeedbackSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rate sentence batch: %w", err)
	}

	var out batchFeedbackOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	seen := make(map[int]bool)
	for _, item := range out.Items {
		// Only accept entries for sentences that were actually attempted.
		if _, ok := attempts[item.Index]; !ok || seen[item.Index] {
			continue
		}
		seen[item.Index] = true

		grade := strings.TrimSpace(item.Grade)
		if grade == "" {
			grade = "C"
		}
		result.PerSentence = append(result.PerSentence, SentenceFeedback{
			Index:     item.Index,
			Feedback:  item.Feedback,
			Grade:     grade,
			Reference: strings.TrimSpace(item.Reference),
		})
	}

	// Every attempted sentence gets an entry. Items the model skipped take
	// the default grade, like an omitted grade on a returned item.
	for i := range originals {
		if _, ok := attempts[i]; !ok || seen[i] {
			continue
		}
		result.PerSentence = append(result.PerSentence, SentenceFeedback{Index: i, Grade: "C"})
	}
	sort.Slice(result.PerSentence, func(a, b int) bool {
		return result.PerSentence[a].Index < result.PerSentence[b].Index
	})

	return result, nil
}

// GenerateLesson builds a mini-lesson from the user's translation attempts.
// Unusable lesson JSON degrades to a fallback lesson carrying the raw text;
// it is never an error.
func (g *Gateway) GenerateLesson(ctx context.Context, attempts []TranslationAttempt, from, to string) (*MiniLesson, error) {
	ctx = llm.WithPurpose(ctx, "lesson")

	// No native structured output here: a malformed lesson should degrade,
	// not fail the request with a validation error.
	req := llm.Request{
		System: lessonSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLessonUserMessage(attempts, from, to)},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate lesson: %w", err)
	}

	raw := strings.TrimSpace(string(resp.Content))
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	if lesson, ok := parseLesson(raw); ok {
		return lesson, nil
	}
	return &MiniLesson{Kind: LessonFallback, Fallback: raw}, nil
}

// Chat answers a free-form question, optionally grounded in a serialized
// session context block placed ahead of the user's message.
func (g *Gateway) Chat(ctx context.Context, history []ChatTurn, contextBlock, message string) (string, error) {
	ctx = llm.WithPurpose(ctx, "chat")

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		role := llm.RoleUser
		if turn.Role == "assistant" {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: buildChatMessage(contextBlock, message)})

	req := llm.Request{
		System:      chatSystemPrompt,
		Messages:    msgs,
		MaxTokens:   g.cfg.ChatMaxTokens,
		Temperature: g.cfg.ChatTemperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	out := strings.TrimSpace(string(resp.Content))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
