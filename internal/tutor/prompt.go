package tutor

import (
	"fmt"
	"strings"
)

const passageSystemPrompt = `You are a language teacher writing short reading passages for translation practice.

Rules:
- Write entirely in the requested study language.
- Stay strictly within the vocabulary, grammar, and sentence-length limits for the requested level. Err toward simpler, not harder.
- The passage must be natural, coherent prose, not a word list or dialogue transcript.
- Do not include titles, numbering, translations, or commentary. Only the passage itself.`

func buildPassageUserMessage(spec PassageSpec, sentenceCount int) string {
	p := profileFor(spec.Level)

	var b strings.Builder
	fmt.Fprintf(&b, "Study language: %s\n", spec.Language)
	fmt.Fprintf(&b, "Level: %s\n", p.Code)
	fmt.Fprintf(&b, "Vocabulary: %s\n", p.Vocabulary)
	fmt.Fprintf(&b, "Grammar: %s\n", p.Grammar)
	fmt.Fprintf(&b, "Sentence length: %s\n", p.SentenceLength)
	fmt.Fprintf(&b, "Sentences: %d\n", sentenceCount)

	if spec.Theme != "" {
		fmt.Fprintf(&b, "Theme: %s\n", spec.Theme)
	} else {
		b.WriteString("Theme: your choice, something concrete and everyday\n")
	}

	if spec.Variant > 0 {
		fmt.Fprintf(&b, "\nThis is regeneration #%d for this session. Write a passage clearly different from your previous ones: new setting, new subject matter.\n", spec.Variant)
	}

	b.WriteString("\nReturn the passage split into its sentences, in order.")
	return b.String()
}

const translateSystemPrompt = `You are a professional translator. Translate the given text accurately and naturally. Output only the translation, with no commentary, notes, or quotation marks.`

func buildTranslateUserMessage(text, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate from %s to %s:\n\n", from, to)
	b.WriteString(text)
	return b.String()
}

const feedbackSystemPrompt = `You are a language teacher reviewing a student's translation. Be specific and encouraging. Point out what works, then the most important issues: mistranslations, grammar errors, unnatural phrasing. Do not assign a numeric score.`

func buildFeedbackUserMessage(original, userText, reference, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student translated from %s to %s.\n\n", from, to)
	fmt.Fprintf(&b, "Original (%s):\n%s\n\n", from, original)
	fmt.Fprintf(&b, "Student's translation (%s):\n%s\n", to, userText)
	if reference != "" {
		fmt.Fprintf(&b, "\nReference translation for comparison:\n%s\n", reference)
	}
	b.WriteString("\nGive feedback in short markdown. Open with one line on overall quality, then a few bullet points on specific issues. If the translation is excellent, say so briefly.")
	return b.String()
}

const batchFeedbackSystemPrompt = `You are a language teacher grading sentence-by-sentence translations. For each sentence: give one or two sentences of specific feedback, a letter grade (A, B, C, D, or F), and your own reference translation of the original. Grade on meaning first, then grammar, then naturalness.`

func buildBatchFeedbackUserMessage(originals []string, attempts map[int]string, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student translated these sentences from %s to %s.\n\n", from, to)
	for i, original := range originals {
		attempt, ok := attempts[i]
		if !ok {
			continue // blank attempts are not graded
		}
		fmt.Fprintf(&b, "Sentence %d (%s): %s\n", i, from, original)
		fmt.Fprintf(&b, "Translation %d (%s): %s\n\n", i, to, attempt)
	}
	b.WriteString("Grade each translated sentence. Use the sentence numbers shown above as the index values.")
	return b.String()
}

const lessonSystemPrompt = `You are a language teacher creating a short targeted lesson from a student's translation mistakes. Focus on the one or two grammar points causing the most errors. Keep everything concise and practical.`

func buildLessonUserMessage(attempts []TranslationAttempt, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student is translating from %s to %s. Their attempts and the feedback they received:\n\n", from, to)
	for i, a := range attempts {
		fmt.Fprintf(&b, "%d. Original: %s\n", i+1, a.Original)
		fmt.Fprintf(&b, "   Attempt: %s\n", a.Attempt)
		if a.Feedback != "" {
			fmt.Fprintf(&b, "   Feedback: %s\n", a.Feedback)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Create a mini-lesson as a single JSON object with exactly these fields:
{
  "title": "short lesson title",
  "grammarFocus": "2-4 sentence explanation of the main grammar point to work on",
  "vocabulary": [{"word": "word or phrase from the passage", "meaning": "brief meaning", "example": "short usage example"}, ...],
  "commonMistakes": [{"mistake": "pattern seen in the attempts", "correction": "how to fix it", "example": "a corrected sentence"}, ...],
  "exercises": [{"type": "translate, fill-in, or rewrite", "instruction": "what to do", "question": "the exercise itself", "answer": "expected answer", "explanation": "one-line why"}, ...]
}

Return only the JSON object. No markdown, no commentary.`)
	return b.String()
}

const chatSystemPrompt = `You are a friendly language-study assistant inside a translation practice app. Answer questions about vocabulary, grammar, and the user's current practice passage. Keep answers short and concrete. When session context is provided, ground your answers in it.`

func buildChatMessage(contextBlock, message string) string {
	if contextBlock == "" {
		return message
	}
	var b strings.Builder
	b.WriteString("[current session]\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n")
	b.WriteString(message)
	return b.String()
}

const probePrompt = `Reply with the single word OK.`
