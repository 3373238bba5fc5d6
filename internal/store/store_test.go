package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "passage-gen", InputTokens: 100, OutputTokens: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "translate", InputTokens: 50, OutputTokens: 80, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "feedback", Success: false, ErrorMessage: "rate limited"},
	}
	for i, ev := range events {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	// Newest first.
	if got[0].Purpose != "feedback" {
		t.Errorf("first event purpose = %q, want feedback", got[0].Purpose)
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Errorf("expected descending sequence, got %d then %d", got[0].Sequence, got[1].Sequence)
	}
}

func TestQueryLLMEventsFiltered(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"translate", "translate", "chat"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "openai", Model: "gpt-4o-mini", Purpose: purpose, Success: true,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "translate"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 translate events, got %d", len(got))
	}

	got, err = repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query with limit: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event with limit, got %d", len(got))
	}
}

func TestGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "lesson",
		Success: true, RequestBody: "[user]\nExplain the subjunctive.", ResponseBody: `{"title":"Subjunctive"}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil || len(all) != 1 {
		t.Fatalf("query: %v (%d events)", err, len(all))
	}

	ev, err := repo.GetLLMEvent(ctx, all[0].Sequence)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev == nil {
		t.Fatal("expected event, got nil")
	}
	if ev.RequestBody == "" || ev.ResponseBody == "" {
		t.Error("expected request and response bodies to round-trip")
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing sequence")
	}
}

func TestLLMUsageByPurpose(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "translate", InputTokens: 10, OutputTokens: 20, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "translate", InputTokens: 30, OutputTokens: 40, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "chat", InputTokens: 5, OutputTokens: 5, Success: true},
	}
	for _, ev := range data {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	rows, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	byGroup := map[string]UsageRow{}
	for _, r := range rows {
		byGroup[r.Group] = r
	}

	tr, ok := byGroup["translate"]
	if !ok {
		t.Fatal("missing translate group")
	}
	if tr.Requests != 2 || tr.InputTokens != 40 || tr.OutputTokens != 60 {
		t.Errorf("translate usage = %+v, want 2 requests, 40 in, 60 out", tr)
	}
}

func TestPrefsDefaultsWhenEmpty(t *testing.T) {
	s := openTestStore(t)
	repo := s.PrefsRepo()

	p, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.SourceLang != "English" || p.TargetLang != "Spanish" || p.Level != "B1" {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if p.APIKey != "" {
		t.Error("expected empty API key by default")
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.PrefsRepo()
	ctx := context.Background()

	want := Prefs{
		SourceLang: "German",
		TargetLang: "French",
		Level:      "C1",
		Theme:      "a rainy day in Lyon",
		Provider:   "gemini",
		APIKey:     "test-key-123",
		Model:      "gemini-2.5-flash",
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	// Saving again updates rather than duplicating.
	want.Level = "A2"
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got.Level != "A2" {
		t.Errorf("level = %q, want A2", got.Level)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "translate", Success: true,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.PrefsRepo().Save(ctx, DefaultPrefs()); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query after reset: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events after reset, got %d", len(events))
	}

	seq, err := s.seq.Next(ctx)
	if err != nil {
		t.Fatalf("next after reset: %v", err)
	}
	if seq != 1 {
		t.Errorf("sequence after reset = %d, want 1", seq)
	}
}
