package quiz

import (
	"errors"
	"math/rand"
	"time"

	"github.com/stemsi/exstem-quiz/internal/model"
)

var (
	ErrAttemptSubmitted  = errors.New("attempt already submitted")
	ErrQuestionIndex     = errors.New("question index out of range")
	ErrSelectionMismatch = errors.New("selection does not fit the question type")
	ErrNoQuestions       = errors.New("quiz has no questions")
)

// Selection is a learner's input for one question.
type Selection interface {
	isSelection()
}

// ChoiceSelection picks a multiple choice option by id.
type ChoiceSelection string

// BoolSelection answers a true/false question.
type BoolSelection bool

// PairSelection assigns a right-hand value to one matching pair.
type PairSelection struct {
	Key   string
	Value string
}

func (ChoiceSelection) isSelection() {}
func (BoolSelection) isSelection()   {}
func (PairSelection) isSelection()   {}

// Attempt is one learner's pass over a quiz. It is not safe for concurrent use;
// each attempt is owned by a single learner.
type Attempt struct {
	questions []model.Question
	rng       *rand.Rand

	answers     map[int]model.Answer
	options     map[int][]string
	submitted   bool
	submittedAt *time.Time
	result      *model.Result
	startedAt   time.Time
}

// NewRand returns a time-seeded source for option shuffles.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewAttempt starts a fresh attempt and shuffles the matching options.
func NewAttempt(questions []model.Question, rng *rand.Rand) *Attempt {
	a := &Attempt{
		questions: questions,
		rng:       rng,
	}
	a.Reset()
	return a
}

// Restore rebuilds an attempt from its persisted state, keeping its shuffle.
func Restore(questions []model.Question, st *model.AttemptState, rng *rand.Rand) *Attempt {
	a := &Attempt{
		questions:   questions,
		rng:         rng,
		answers:     make(map[int]model.Answer, len(st.Answers)),
		options:     st.Options,
		submitted:   st.Submitted,
		submittedAt: st.SubmittedAt,
		result:      st.Result,
		startedAt:   st.StartedAt,
	}
	for i, ans := range st.Answers {
		a.answers[i] = ans
	}
	if a.options == nil {
		a.options = GenerateMatchingOptions(questions, rng)
	}
	return a
}

// State returns a snapshot suitable for persistence.
func (a *Attempt) State() *model.AttemptState {
	answers := make(map[int]model.Answer, len(a.answers))
	for i, ans := range a.answers {
		answers[i] = ans
	}
	return &model.AttemptState{
		Answers:     answers,
		Options:     a.options,
		Submitted:   a.submitted,
		Result:      a.result,
		StartedAt:   a.startedAt,
		SubmittedAt: a.submittedAt,
	}
}

func (a *Attempt) Answers() map[int]model.Answer { return a.answers }

func (a *Attempt) Options() map[int][]string { return a.options }

func (a *Attempt) Submitted() bool { return a.submitted }

func (a *Attempt) Result() *model.Result { return a.result }

// RecordAnswer stores sel for the question at index. Matching selections merge
// into the question's existing pair answers.
func (a *Attempt) RecordAnswer(index int, sel Selection) error {
	if a.submitted {
		return ErrAttemptSubmitted
	}
	if index < 0 || index >= len(a.questions) {
		return ErrQuestionIndex
	}

	q := a.questions[index]
	ans := a.answers[index]

	switch s := sel.(type) {
	case ChoiceSelection:
		if q.Type() != model.QuestionTypeMultipleChoice {
			return ErrSelectionMismatch
		}
		ans.ChoiceID = string(s)
	case BoolSelection:
		if q.Type() != model.QuestionTypeTrueFalse {
			return ErrSelectionMismatch
		}
		v := bool(s)
		ans.Value = &v
	case PairSelection:
		if q.Type() != model.QuestionTypeMatching || s.Key == "" {
			return ErrSelectionMismatch
		}
		merged := make(map[string]string, len(ans.Matches)+1)
		for k, v := range ans.Matches {
			merged[k] = v
		}
		merged[s.Key] = s.Value
		ans.Matches = merged
	default:
		return ErrSelectionMismatch
	}

	a.answers[index] = ans
	return nil
}

// Submit evaluates the attempt and freezes its answers.
func (a *Attempt) Submit() (*model.Result, error) {
	if a.submitted {
		return a.result, ErrAttemptSubmitted
	}
	res := Evaluate(a.questions, a.answers)
	if res == nil {
		return nil, ErrNoQuestions
	}
	now := time.Now().UTC()
	a.submitted = true
	a.submittedAt = &now
	a.result = res
	return res, nil
}

// Reset clears answers, submission and result, and reshuffles matching options.
func (a *Attempt) Reset() {
	a.answers = make(map[int]model.Answer)
	a.submitted = false
	a.submittedAt = nil
	a.result = nil
	a.startedAt = time.Now().UTC()
	a.options = GenerateMatchingOptions(a.questions, a.rng)
}
