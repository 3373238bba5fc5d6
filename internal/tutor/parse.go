package tutor

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// stripCodeFences removes a surrounding markdown code fence, if present.
// Models frequently wrap JSON in ```json ... ``` despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

// punktTokenizer lazily loads the embedded punkt training data.
// Returns nil when the data cannot be loaded; callers fall back to
// punctuation scanning.
func punktTokenizer() *sentences.DefaultSentenceTokenizer {
	tokenizerOnce.Do(func() {
		data, err := sentencesdata.Asset("english.json")
		if err != nil {
			return
		}
		storage, err := sentences.LoadTraining(data)
		if err != nil {
			return
		}
		tokenizer = sentences.NewSentenceTokenizer(storage)
	})
	return tokenizer
}

// splitSentences breaks prose into sentences using the punkt tokenizer,
// falling back to a terminal-punctuation scan. Blank results are dropped.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if tok := punktTokenizer(); tok != nil {
		var out []string
		for _, s := range tok.Tokenize(text) {
			t := strings.TrimSpace(s.Text)
			if t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return scanSentences(text)
}

// scanSentences is the punctuation-based fallback splitter. It keeps
// terminal punctuation attached to each sentence.
func scanSentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if isTerminal(r) {
			// Absorb a run of terminals (e.g. "?!", "...").
			if i+1 < len(runes) && isTerminal(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

var (
	lessonSchemaOnce sync.Once
	lessonSchema     *jsonschema.Schema
	lessonSchemaErr  error
)

// compiledLessonSchema compiles the lesson shape check once.
func compiledLessonSchema() (*jsonschema.Schema, error) {
	lessonSchemaOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal([]byte(lessonSchemaJSON), &parsed); err != nil {
			lessonSchemaErr = fmt.Errorf("parse lesson schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://mini-lesson.json", parsed); err != nil {
			lessonSchemaErr = fmt.Errorf("add lesson schema resource: %w", err)
			return
		}
		lessonSchema, lessonSchemaErr = c.Compile("schema://mini-lesson.json")
	})
	return lessonSchema, lessonSchemaErr
}

// lessonOutput is the raw lesson JSON before shape checking.
type lessonOutput struct {
	Title        string `json:"title"`
	GrammarFocus string `json:"grammarFocus"`
	Vocabulary   []struct {
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
		Example string `json:"example"`
	} `json:"vocabulary"`
	CommonMistakes []struct {
		Mistake    string `json:"mistake"`
		Correction string `json:"correction"`
		Example    string `json:"example"`
	} `json:"commonMistakes"`
	Exercises []struct {
		Type        string `json:"type"`
		Instruction string `json:"instruction"`
		Question    string `json:"question"`
		Answer      string `json:"answer"`
		Explanation string `json:"explanation"`
	} `json:"exercises"`
}

// parseLesson attempts to shape raw model output into a structured lesson.
// Returns (nil, false) when the output fails parsing or the shape check;
// the caller degrades to a fallback lesson.
func parseLesson(raw string) (*MiniLesson, bool) {
	cleaned := stripCodeFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, false
	}

	schema, err := compiledLessonSchema()
	if err != nil {
		return nil, false
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, false
	}

	var out lessonOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, false
	}

	lesson := &MiniLesson{
		Kind:         LessonStructured,
		Title:        out.Title,
		GrammarFocus: out.GrammarFocus,
	}
	for _, v := range out.Vocabulary {
		lesson.Vocabulary = append(lesson.Vocabulary, VocabItem{
			Word: v.Word, Meaning: v.Meaning, Example: v.Example,
		})
	}
	for _, m := range out.CommonMistakes {
		lesson.CommonMistakes = append(lesson.CommonMistakes, MistakeItem{
			Mistake: m.Mistake, Correction: m.Correction, Example: m.Example,
		})
	}
	for _, e := range out.Exercises {
		lesson.Exercises = append(lesson.Exercises, ExerciseItem{
			Type:        e.Type,
			Instruction: e.Instruction,
			Question:    e.Question,
			Answer:      e.Answer,
			Explanation: e.Explanation,
		})
	}
	return lesson, true
}
