package tutor

// Sentence is one unit of a practice passage, in passage order.
type Sentence struct {
	Index int
	Text  string
}

// PassageSpec describes the passage to generate.
type PassageSpec struct {
	Language string // study language the passage is written in
	Level    string // CEFR code: A1, A2, B1, B2, C1
	Theme    string // topic, or "" for the model's choice
	Variant  int    // bumped on regeneration to steer away from the previous passage
}

// ProbeResult classifies the outcome of a credential probe.
type ProbeResult int

const (
	ProbeValid ProbeResult = iota
	ProbeKeyInvalid
	ProbeQuotaExceeded
	ProbeNetworkError
	ProbeUnknown
)

func (r ProbeResult) String() string {
	switch r {
	case ProbeValid:
		return "valid"
	case ProbeKeyInvalid:
		return "key invalid"
	case ProbeQuotaExceeded:
		return "quota exceeded"
	case ProbeNetworkError:
		return "network error"
	default:
		return "unknown"
	}
}

// SentenceFeedback is the graded feedback for one translated sentence.
type SentenceFeedback struct {
	Index     int    // position in the passage
	Feedback  string // qualitative assessment
	Grade     string // A, B, C, D, or F
	Reference string // the model's own translation of the sentence
}

// FeedbackResult is the outcome of a batched sentence rating call.
// Blank attempts are excluded from PerSentence but counted in TotalCount.
type FeedbackResult struct {
	PerSentence     []SentenceFeedback
	TotalCount      int
	TranslatedCount int
}

// TranslationAttempt pairs an original sentence with the user's translation
// and the feedback it received. Lesson generation consumes these.
type TranslationAttempt struct {
	Original string
	Attempt  string
	Feedback string
}

// LessonKind tags how a MiniLesson was obtained.
type LessonKind int

const (
	// LessonStructured means the model returned well-formed lesson JSON.
	LessonStructured LessonKind = iota
	// LessonFallback means the JSON was unusable and Fallback holds raw text.
	LessonFallback
)

// VocabItem is one vocabulary entry in a structured lesson.
type VocabItem struct {
	Word    string
	Meaning string
	Example string
}

// MistakeItem is one recurring error pattern with its correction.
type MistakeItem struct {
	Mistake    string
	Correction string
	Example    string
}

// ExerciseItem is one practice exercise in a structured lesson.
type ExerciseItem struct {
	Type        string // e.g. "translate", "fill-in", "rewrite"
	Instruction string
	Question    string
	Answer      string
	Explanation string
}

// MiniLesson is a short grammar lesson derived from the user's mistakes.
// When Kind is LessonFallback only the Fallback field is meaningful.
type MiniLesson struct {
	Kind           LessonKind
	Title          string
	GrammarFocus   string
	Vocabulary     []VocabItem
	CommonMistakes []MistakeItem
	Exercises      []ExerciseItem
	Fallback       string
}

// ChatTurn is one exchange in the assistant conversation.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}
