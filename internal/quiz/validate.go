package quiz

import (
	"strconv"
	"strings"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// Validation message keys. Translations live in internal/i18n.
const (
	KeyTitleRequired        = "quiz.title_required"
	KeyNoQuestions          = "quiz.no_questions"
	KeyTypeRequired         = "question.type_required"
	KeyPromptRequired       = "question.prompt_required"
	KeyChoicesTooFew        = "choice.too_few"
	KeyChoicesTooMany       = "choice.too_many"
	KeyChoiceTextRequired   = "choice.text_required"
	KeyCorrectChoice        = "choice.correct_required"
	KeyPairsTooFew          = "pair.too_few"
	KeyPairSideRequired     = "pair.side_required"
	KeyTrueFalseUnspecified = "truefalse.answer_required"
)

// ValidationError is the first rule a draft violates. It is a user-correctable
// state, not a failure of the program.
type ValidationError struct {
	Key string
	// Question is the 1-based position of the offending question, 0 for quiz-level rules.
	Question int
	Message  string
}

func (e *ValidationError) Error() string { return e.Message }

// Params returns the translation parameters for Key.
func (e *ValidationError) Params() []string {
	if e.Question == 0 {
		return nil
	}
	return []string{strconv.Itoa(e.Question)}
}

var fallbackMessages = map[string]string{
	KeyTitleRequired:        "Quiz title is required",
	KeyNoQuestions:          "Add at least one question",
	KeyTypeRequired:         "Question {0}: question type is required",
	KeyPromptRequired:       "Question {0}: question text is required",
	KeyChoicesTooFew:        "Question {0}: add at least 2 choices",
	KeyChoicesTooMany:       "Question {0}: no more than 6 choices are allowed",
	KeyChoiceTextRequired:   "Question {0}: every choice needs text",
	KeyCorrectChoice:        "Question {0}: mark exactly one correct choice",
	KeyPairsTooFew:          "Question {0}: add at least one pair",
	KeyPairSideRequired:     "Question {0}: every pair needs both a left and a right value",
	KeyTrueFalseUnspecified: "Question {0}: choose whether the statement is true or false",
}

// FallbackMessage returns the untranslated template for key.
func FallbackMessage(key string) string {
	return fallbackMessages[key]
}

func invalid(key string, question int) *ValidationError {
	msg := fallbackMessages[key]
	if question > 0 {
		msg = strings.ReplaceAll(msg, "{0}", strconv.Itoa(question))
	}
	return &ValidationError{Key: key, Question: question, Message: msg}
}

// Validate checks draft rule by rule and returns the first violation, or nil.
func Validate(draft *model.Quiz) *ValidationError {
	if draft == nil || strings.TrimSpace(draft.Title) == "" {
		return invalid(KeyTitleRequired, 0)
	}
	if len(draft.Questions) == 0 {
		return invalid(KeyNoQuestions, 0)
	}

	for i, q := range draft.Questions {
		n := i + 1
		if q.Body == nil || !q.Type().Known() {
			return invalid(KeyTypeRequired, n)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return invalid(KeyPromptRequired, n)
		}
		if err := validateBody(q.Body, n); err != nil {
			return err
		}
	}
	return nil
}

func validateBody(body model.QuestionBody, n int) *ValidationError {
	switch b := body.(type) {
	case *model.MultipleChoice:
		if len(b.Choices) < MinChoices {
			return invalid(KeyChoicesTooFew, n)
		}
		if len(b.Choices) > MaxChoices {
			return invalid(KeyChoicesTooMany, n)
		}
		correct := 0
		for _, c := range b.Choices {
			if strings.TrimSpace(c.Text) == "" {
				return invalid(KeyChoiceTextRequired, n)
			}
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return invalid(KeyCorrectChoice, n)
		}
	case *model.Matching:
		if len(b.Pairs) < MinPairs {
			return invalid(KeyPairsTooFew, n)
		}
		for _, p := range b.Pairs {
			if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
				return invalid(KeyPairSideRequired, n)
			}
		}
	case *model.TrueFalse:
		if b.CorrectAnswer == nil {
			return invalid(KeyTrueFalseUnspecified, n)
		}
	}
	return nil
}
