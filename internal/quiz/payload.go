package quiz

import (
	"strings"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// BuildSubmissionPayload normalizes a draft for persistence. The draft itself is
// not modified, so a failed submission loses nothing.
//
// Multiple choice questions with no correct choice default to the first one.
// True/false questions without an explicit false resolve to true.
func BuildSubmissionPayload(draft *model.Quiz) model.QuizPayload {
	p := draft.Payload()
	p.Title = strings.TrimSpace(p.Title)
	for lang, t := range p.TitleI18n {
		if t = strings.TrimSpace(t); t == "" {
			delete(p.TitleI18n, lang)
		} else {
			p.TitleI18n[lang] = t
		}
	}

	for i := range p.Questions {
		q := &p.Questions[i]
		q.Order = i + 1
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.Explanation = strings.TrimSpace(q.Explanation)

		switch b := q.Body.(type) {
		case *model.MultipleChoice:
			normalizeChoices(b)
		case *model.Matching:
			for j := range b.Pairs {
				b.Pairs[j].Left = strings.TrimSpace(b.Pairs[j].Left)
				b.Pairs[j].Right = strings.TrimSpace(b.Pairs[j].Right)
			}
		case *model.TrueFalse:
			v := b.Resolved()
			b.CorrectAnswer = &v
		}
	}
	return p
}

func normalizeChoices(b *model.MultipleChoice) {
	for len(b.Choices) < MinChoices {
		b.Choices = append(b.Choices, model.Choice{ID: NewID()})
	}

	correct := -1
	for i := range b.Choices {
		b.Choices[i].Text = strings.TrimSpace(b.Choices[i].Text)
		if b.Choices[i].IsCorrect && correct < 0 {
			correct = i
		}
	}
	if correct < 0 {
		correct = 0
	}
	for i := range b.Choices {
		b.Choices[i].IsCorrect = i == correct
	}
}

// AssignMissingIDs fills empty question, choice and pair ids in place.
func AssignMissingIDs(p *model.QuizPayload, newID func() string) {
	for i := range p.Questions {
		q := &p.Questions[i]
		if q.ID == "" {
			q.ID = newID()
		}
		switch b := q.Body.(type) {
		case *model.MultipleChoice:
			for j := range b.Choices {
				if b.Choices[j].ID == "" {
					b.Choices[j].ID = newID()
				}
			}
		case *model.Matching:
			for j := range b.Pairs {
				if b.Pairs[j].ID == "" {
					b.Pairs[j].ID = newID()
				}
			}
		}
	}
}
