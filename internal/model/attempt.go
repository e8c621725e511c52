package model

import "time"

// Answer is a learner's recorded answer for one question. Only the field that
// fits the question type is set.
type Answer struct {
	ChoiceID string            `json:"choiceId,omitempty"`
	Value    *bool             `json:"value,omitempty"`
	Matches  map[string]string `json:"matches,omitempty"`
}

// AttemptState is the persisted snapshot of one learner's attempt. Answers and
// Options are keyed by question index, not question id.
type AttemptState struct {
	QuizID       string           `json:"quizId"`
	UserID       int              `json:"userId"`
	QuizVersion  time.Time        `json:"quizVersion"`
	Answers      map[int]Answer   `json:"answers"`
	Options      map[int][]string `json:"options"`
	Submitted    bool             `json:"submitted"`
	Result       *Result          `json:"result,omitempty"`
	StartedAt    time.Time        `json:"startedAt"`
	SubmittedAt  *time.Time       `json:"submittedAt,omitempty"`
	TrainingOnly bool             `json:"trainingOnly"`
}

// Result is the computed outcome of an attempt.
type Result struct {
	Total        int               `json:"total"`
	Correct      int               `json:"correct"`
	Percent      int               `json:"percent"`
	TrainingOnly bool              `json:"trainingOnly"`
	Breakdown    []QuestionOutcome `json:"breakdown"`
}

// QuestionOutcome is one breakdown entry.
type QuestionOutcome struct {
	Index       int          `json:"index"`
	QuestionID  string       `json:"questionId"`
	Type        QuestionType `json:"type"`
	Correct     bool         `json:"correct"`
	Explanation string       `json:"explanation,omitempty"`

	// multiple_choice
	SelectedChoiceID string `json:"selectedChoiceId,omitempty"`
	CorrectChoiceID  string `json:"correctChoiceId,omitempty"`

	// true_false
	SelectedValue *bool `json:"selectedValue,omitempty"`
	CorrectValue  *bool `json:"correctValue,omitempty"`

	// matching
	Pairs []PairOutcome `json:"pairs,omitempty"`
}

// PairOutcome reports the correctness of one matching pair.
type PairOutcome struct {
	Key      string `json:"key"`
	Left     string `json:"left"`
	Expected string `json:"expected"`
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
}

// RecordAnswerRequest is the student payload for recording an answer. Exactly
// one of ChoiceID, Value or PairKey must be set.
type RecordAnswerRequest struct {
	QuestionIndex *int   `json:"questionIndex" binding:"required,min=0"`
	ChoiceID      string `json:"choiceId" binding:"omitempty,max=64"`
	Value         *bool  `json:"value"`
	PairKey       string `json:"pairKey" binding:"omitempty,max=64"`
	Match         string `json:"match" binding:"max=1000"`
}

// AttemptView is what the student sees for an attempt in progress or completed.
type AttemptView struct {
	QuizID       string               `json:"quizId"`
	Title        string               `json:"title"`
	TrainingOnly bool                 `json:"trainingOnly"`
	Questions    []QuestionForStudent `json:"questions"`
	Options      map[int][]string     `json:"options"`
	Answers      map[int]Answer       `json:"answers"`
	Submitted    bool                 `json:"submitted"`
	Result       *Result              `json:"result,omitempty"`
}

// QuizResult is a persisted attempt result.
type QuizResult struct {
	ID           int64             `json:"id"`
	QuizID       string            `json:"quizId"`
	UserID       int               `json:"userId"`
	Total        int               `json:"total"`
	Correct      int               `json:"correct"`
	Percent      int               `json:"percent"`
	TrainingOnly bool              `json:"trainingOnly"`
	Breakdown    []QuestionOutcome `json:"breakdown"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}
