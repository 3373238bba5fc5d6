package study

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.busy {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render(s.busyLabel)
	}

	var b strings.Builder

	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
		b.WriteString("\n\n")
	}

	switch s.mode {
	case modeTheme:
		b.WriteString(s.renderThemePrompt(width))
	case modeTranslate:
		b.WriteString(s.renderTranslate(width))
	case modeFeedback:
		b.WriteString(s.renderFeedback(width))
	case modeLesson:
		b.WriteString(s.renderLesson(width))
	}

	return b.String()
}

func (s *StudyScreen) renderThemePrompt(width int) string {
	studyLang, _ := s.session.Languages()

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("New %s passage — what should it be about?", studyLang)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.themeInput.View()))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Level %s · press Enter to generate", s.session.Level())))
	return b.String()
}

func (s *StudyScreen) renderTranslate(width int) string {
	_, userLang := s.session.Languages()
	inner := contentWidth(width)

	var b strings.Builder

	if s.inputStyle == wholePassage {
		b.WriteString(s.renderPassageBlock(width))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
				Render(fmt.Sprintf("Your %s translation:", userLang))))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.passageInput.View()))
		return b.String()
	}

	b.WriteString("\n")
	for i, sent := range s.sentences {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.focus {
			marker = "> "
			style = style.Bold(true)
		}
		line := lipgloss.NewStyle().Width(inner).Render(fmt.Sprintf("%s%d. %s", marker, i+1, sent.Text))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Render("   "+s.sentInputs[i].View())))
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderPassageBlock shows the passage as continuous prose in a card.
func (s *StudyScreen) renderPassageBlock(width int) string {
	inner := contentWidth(width)
	card := theme.Card.Width(inner).Render(s.session.PassageText())
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}

func (s *StudyScreen) renderFeedback(width int) string {
	inner := contentWidth(width)

	// Whole-passage feedback is free-form markdown from the model.
	if s.feedback == nil {
		var b strings.Builder
		b.WriteString("\n")
		body := s.passageFeedback
		if ref := s.session.Reference(); ref != "" {
			body += "\n\nReference translation:\n" + ref
		}
		card := theme.Card.Width(inner).Render(body)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		return b.String()
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Graded %d of %d sentences", s.feedback.TranslatedCount, s.feedback.TotalCount)))
	b.WriteString("\n\n")

	byIndex := make(map[int]int, len(s.feedback.PerSentence))
	for i, fb := range s.feedback.PerSentence {
		byIndex[fb.Index] = i
	}

	for i, sent := range s.sentences {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Bold(true).
				Render(fmt.Sprintf("%d. %s", i+1, sent.Text))))
		b.WriteString("\n")

		fi, ok := byIndex[i]
		if !ok {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).Foreground(theme.TextDim).Italic(true).
					Render("   (not attempted)")))
			b.WriteString("\n\n")
			continue
		}
		fb := s.feedback.PerSentence[fi]

		grade := lipgloss.NewStyle().Foreground(gradeColor(fb.Grade)).Bold(true).
			Render("[" + fb.Grade + "]")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Render("   "+grade+" "+fb.Feedback)))
		b.WriteString("\n")
		if fb.Reference != "" {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).Foreground(theme.TextDim).
					Render("   Reference: "+fb.Reference)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *StudyScreen) renderLesson(width int) string {
	inner := contentWidth(width)
	lesson := s.lesson
	if lesson == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	if lesson.Fallback != "" {
		card := theme.Card.Width(inner).Render(lesson.Fallback)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(lesson.Title))
	b.WriteString("\n\n")

	section := func(heading string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Foreground(theme.Secondary).Bold(true).Render(heading)))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Render("  • "+line)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if lesson.GrammarFocus != "" {
		section("Grammar focus", []string{lesson.GrammarFocus})
	}

	var vocab []string
	for _, v := range lesson.Vocabulary {
		line := v.Word
		if v.Meaning != "" {
			line += ": " + v.Meaning
		}
		if v.Example != "" {
			line += "  (" + v.Example + ")"
		}
		vocab = append(vocab, line)
	}
	section("Vocabulary", vocab)

	var mistakes []string
	for _, m := range lesson.CommonMistakes {
		line := m.Mistake
		if m.Correction != "" {
			line += " → " + m.Correction
		}
		if m.Example != "" {
			line += "  (" + m.Example + ")"
		}
		mistakes = append(mistakes, line)
	}
	section("Common mistakes", mistakes)

	if len(lesson.Exercises) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Foreground(theme.Secondary).Bold(true).Render("Exercises")))
		b.WriteString("\n")
		for _, e := range lesson.Exercises {
			line := e.Question
			if e.Instruction != "" {
				line = e.Instruction + " " + line
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Render("  • "+line)))
			b.WriteString("\n")
			if e.Answer != "" {
				answer := "    Answer: " + e.Answer
				if e.Explanation != "" {
					answer += "  (" + e.Explanation + ")"
				}
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Width(inner).Foreground(theme.TextDim).Render(answer)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// contentWidth bounds text blocks so long lines stay readable.
func contentWidth(width int) int {
	w := width - 8
	if w > 88 {
		w = 88
	}
	if w < 20 {
		w = 20
	}
	return w
}

func gradeColor(grade string) color.Color {
	switch grade {
	case "A", "B":
		return theme.Success
	case "C":
		return theme.Accent
	default:
		return theme.Error
	}
}
