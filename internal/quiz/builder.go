// Package quiz holds the quiz builder and the evaluation engine. Everything here
// is synchronous and in-memory; persistence lives in the service layer.
package quiz

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-quiz/internal/model"
)

const (
	MinChoices = 2
	MaxChoices = 6
	MinPairs   = 1
)

// NewID returns a fresh client-side identifier for questions, choices and pairs.
func NewID() string {
	return uuid.NewString()
}

// Builder edits a quiz draft through explicit mutation methods.
type Builder struct {
	draft *model.Quiz
	newID func() string
}

// NewDraft starts an empty draft holding one default multiple choice question.
func NewDraft() *Builder {
	b := &Builder{draft: &model.Quiz{}, newID: NewID}
	b.AddQuestion()
	return b
}

// NewBuilder edits a copy of q. A quiz without questions gets one default question.
func NewBuilder(q *model.Quiz) *Builder {
	b := &Builder{draft: q.Clone(), newID: NewID}
	if len(b.draft.Questions) == 0 {
		b.AddQuestion()
	}
	return b
}

// WithIDGenerator replaces the identifier source. Used by tests.
func (b *Builder) WithIDGenerator(fn func() string) *Builder {
	b.newID = fn
	return b
}

// Draft returns a copy of the current draft.
func (b *Builder) Draft() *model.Quiz {
	return b.draft.Clone()
}

// CreateQuestion builds a question of type t with its default payload.
func (b *Builder) CreateQuestion(t model.QuestionType) model.Question {
	return model.Question{
		ID:   b.newID(),
		Body: model.NewBody(t, b.newID),
	}
}

// CreateQuestion builds a question of type t using the default id generator.
func CreateQuestion(t model.QuestionType) model.Question {
	return model.Question{ID: NewID(), Body: model.NewBody(t, NewID)}
}

// AddQuestion appends a default multiple choice question and returns its id.
func (b *Builder) AddQuestion() string {
	q := b.CreateQuestion(model.QuestionTypeMultipleChoice)
	q.Order = len(b.draft.Questions) + 1
	b.draft.Questions = append(b.draft.Questions, q)
	return q.ID
}

// RemoveQuestion deletes a question unless it is the last one left.
func (b *Builder) RemoveQuestion(questionID string) {
	if len(b.draft.Questions) <= 1 {
		return
	}
	i := b.indexOf(questionID)
	if i < 0 {
		return
	}
	b.draft.Questions = append(b.draft.Questions[:i], b.draft.Questions[i+1:]...)
	b.renumber()
}

// MoveQuestion shifts a question by delta positions, clamped to the list bounds.
func (b *Builder) MoveQuestion(questionID string, delta int) {
	i := b.indexOf(questionID)
	if i < 0 || delta == 0 {
		return
	}
	j := i + delta
	if j < 0 {
		j = 0
	}
	if j >= len(b.draft.Questions) {
		j = len(b.draft.Questions) - 1
	}
	q := b.draft.Questions[i]
	qs := append(b.draft.Questions[:i:i], b.draft.Questions[i+1:]...)
	qs = append(qs[:j], append([]model.Question{q}, qs[j:]...)...)
	b.draft.Questions = qs
	b.renumber()
}

// ChangeQuestionType resets the variant payload and keeps id, order, prompt and explanation.
func (b *Builder) ChangeQuestionType(questionID string, t model.QuestionType) {
	q := b.question(questionID)
	if q == nil {
		return
	}
	q.Body = model.NewBody(t, b.newID)
}

// SetTitle sets the default title.
func (b *Builder) SetTitle(title string) {
	b.draft.Title = title
}

// SetTitleTranslation sets or clears the title for one language.
func (b *Builder) SetTitleTranslation(lang, title string) {
	if strings.TrimSpace(title) == "" {
		delete(b.draft.TitleI18n, lang)
		return
	}
	if b.draft.TitleI18n == nil {
		b.draft.TitleI18n = make(map[string]string)
	}
	b.draft.TitleI18n[lang] = title
}

func (b *Builder) SetTrainingOnly(v bool) { b.draft.TrainingOnly = v }

func (b *Builder) SetActive(v bool) { b.draft.IsActive = v }

func (b *Builder) SetPrompt(questionID, prompt string) {
	if q := b.question(questionID); q != nil {
		q.Prompt = prompt
	}
}

func (b *Builder) SetExplanation(questionID, explanation string) {
	if q := b.question(questionID); q != nil {
		q.Explanation = explanation
	}
}

// AddChoice appends a blank choice, up to MaxChoices.
func (b *Builder) AddChoice(questionID string) {
	mc := b.multipleChoice(questionID)
	if mc == nil || len(mc.Choices) >= MaxChoices {
		return
	}
	mc.Choices = append(mc.Choices, model.Choice{ID: b.newID()})
}

// RemoveChoice deletes a choice while keeping at least MinChoices. When the
// removed choice was the correct one the new first choice becomes correct.
func (b *Builder) RemoveChoice(questionID, choiceID string) {
	mc := b.multipleChoice(questionID)
	if mc == nil || len(mc.Choices) <= MinChoices {
		return
	}
	for i, c := range mc.Choices {
		if c.ID != choiceID {
			continue
		}
		mc.Choices = append(mc.Choices[:i], mc.Choices[i+1:]...)
		if c.IsCorrect {
			mc.Choices[0].IsCorrect = true
		}
		return
	}
}

// SetCorrectChoice marks exactly choiceID correct.
func (b *Builder) SetCorrectChoice(questionID, choiceID string) {
	mc := b.multipleChoice(questionID)
	if mc == nil || !hasChoice(mc, choiceID) {
		return
	}
	for i := range mc.Choices {
		mc.Choices[i].IsCorrect = mc.Choices[i].ID == choiceID
	}
}

func (b *Builder) SetChoiceText(questionID, choiceID, text string) {
	mc := b.multipleChoice(questionID)
	if mc == nil {
		return
	}
	for i := range mc.Choices {
		if mc.Choices[i].ID == choiceID {
			mc.Choices[i].Text = text
			return
		}
	}
}

// SetCorrectAnswer sets the expected value of a true/false question.
func (b *Builder) SetCorrectAnswer(questionID string, v bool) {
	q := b.question(questionID)
	if q == nil {
		return
	}
	if tf, ok := q.Body.(*model.TrueFalse); ok {
		tf.CorrectAnswer = &v
	}
}

// AddPair appends a blank pair to a matching question.
func (b *Builder) AddPair(questionID string) {
	m := b.matching(questionID)
	if m == nil {
		return
	}
	m.Pairs = append(m.Pairs, model.Pair{ID: b.newID()})
}

// RemovePair deletes a pair unless it is the last one.
func (b *Builder) RemovePair(questionID, pairID string) {
	m := b.matching(questionID)
	if m == nil || len(m.Pairs) <= MinPairs {
		return
	}
	for i, p := range m.Pairs {
		if p.ID == pairID {
			m.Pairs = append(m.Pairs[:i], m.Pairs[i+1:]...)
			return
		}
	}
}

func (b *Builder) SetPair(questionID, pairID, left, right string) {
	m := b.matching(questionID)
	if m == nil {
		return
	}
	for i := range m.Pairs {
		if m.Pairs[i].ID == pairID {
			m.Pairs[i].Left = left
			m.Pairs[i].Right = right
			return
		}
	}
}

func (b *Builder) indexOf(questionID string) int {
	for i := range b.draft.Questions {
		if b.draft.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

func (b *Builder) question(questionID string) *model.Question {
	if i := b.indexOf(questionID); i >= 0 {
		return &b.draft.Questions[i]
	}
	return nil
}

func (b *Builder) multipleChoice(questionID string) *model.MultipleChoice {
	q := b.question(questionID)
	if q == nil {
		return nil
	}
	mc, _ := q.Body.(*model.MultipleChoice)
	return mc
}

func (b *Builder) matching(questionID string) *model.Matching {
	q := b.question(questionID)
	if q == nil {
		return nil
	}
	m, _ := q.Body.(*model.Matching)
	return m
}

func (b *Builder) renumber() {
	for i := range b.draft.Questions {
		b.draft.Questions[i].Order = i + 1
	}
}

func hasChoice(mc *model.MultipleChoice, choiceID string) bool {
	for _, c := range mc.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}
