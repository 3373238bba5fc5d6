package study

import "github.com/verso-cli/verso/internal/tutor"

// passageReadyMsg is sent when passage generation finishes.
type passageReadyMsg struct {
	Sentences []tutor.Sentence
	Err       error
}

// passageGradedMsg is sent when a whole-passage attempt has been rated.
type passageGradedMsg struct {
	Feedback string
	Err      error
}

// sentencesGradedMsg is sent when a per-sentence batch has been rated.
type sentencesGradedMsg struct {
	Result *tutor.FeedbackResult
	Err    error
}

// lessonReadyMsg is sent when mini-lesson generation finishes.
type lessonReadyMsg struct {
	Lesson *tutor.MiniLesson
	Err    error
}
