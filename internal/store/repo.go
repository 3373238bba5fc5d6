package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // filter by purpose label ("" = all)
}

// LLMRequestEventData captures the data for a single model request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored model request event as returned by queries.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageRow aggregates token usage for one group (a purpose or a model).
type UsageRow struct {
	Group        string
	Requests     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to model request events.
type EventRepo interface {
	// AppendLLMRequest records a model API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events matching opts, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event by sequence number,
	// or nil if no such event exists.
	GetLLMEvent(ctx context.Context, sequence int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage grouped by purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error)

	// LLMUsageByModel aggregates token usage grouped by model ID.
	LLMUsageByModel(ctx context.Context) ([]UsageRow, error)
}

// Prefs holds the user's saved settings. Zero values mean "not set";
// Load fills in defaults for the fields that have them.
type Prefs struct {
	SourceLang string // language the user translates from
	TargetLang string // language the user translates into
	Level      string // CEFR difficulty: A1, A2, B1, B2, C1
	Theme      string // last passage theme
	Provider   string // stored credential's provider name
	APIKey     string // stored credential
	Model      string // preferred model ID ("" = provider default)
}

// DefaultPrefs returns the settings used before the user saves any.
func DefaultPrefs() Prefs {
	return Prefs{
		SourceLang: "English",
		TargetLang: "Spanish",
		Level:      "B1",
	}
}

// PrefsRepo manages persisted user settings.
type PrefsRepo interface {
	// Load returns the saved settings, with defaults for anything unset.
	// A missing or empty preferences table is not an error.
	Load(ctx context.Context) (Prefs, error)

	// Save upserts all settings.
	Save(ctx context.Context, p Prefs) error
}

