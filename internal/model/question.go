package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuestionType enumerates the supported question variants.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeMatching       QuestionType = "matching"
)

// Known reports whether t is one of the supported variants.
func (t QuestionType) Known() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeMatching:
		return true
	}
	return false
}

// Question is a single quiz question. Body carries the variant-specific payload
// and is nil when the question has no type yet.
type Question struct {
	ID          string
	Order       int
	Prompt      string
	Explanation string
	Body        QuestionBody
}

// QuestionBody is implemented by the question variants only.
type QuestionBody interface {
	Type() QuestionType
	cloneBody() QuestionBody
}

// Choice is one option of a multiple choice question.
type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Pair links a left-hand prompt to the expected right-hand value.
type Pair struct {
	ID    string `json:"id,omitempty"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MultipleChoice expects exactly one correct choice.
type MultipleChoice struct {
	Choices []Choice
}

func (*MultipleChoice) Type() QuestionType { return QuestionTypeMultipleChoice }

func (b *MultipleChoice) cloneBody() QuestionBody {
	return &MultipleChoice{Choices: append([]Choice(nil), b.Choices...)}
}

// CorrectChoice returns the first choice marked correct.
func (b *MultipleChoice) CorrectChoice() (Choice, bool) {
	for _, c := range b.Choices {
		if c.IsCorrect {
			return c, true
		}
	}
	return Choice{}, false
}

// TrueFalse stores the expected boolean. A nil CorrectAnswer means the value was
// never set or was not a boolean; it resolves to true.
type TrueFalse struct {
	CorrectAnswer *bool
}

func (*TrueFalse) Type() QuestionType { return QuestionTypeTrueFalse }

func (b *TrueFalse) cloneBody() QuestionBody {
	if b.CorrectAnswer == nil {
		return &TrueFalse{}
	}
	v := *b.CorrectAnswer
	return &TrueFalse{CorrectAnswer: &v}
}

// Resolved returns the effective correct answer: anything but an explicit false is true.
func (b *TrueFalse) Resolved() bool {
	return b.CorrectAnswer == nil || *b.CorrectAnswer
}

// Matching asks the learner to pick the right-hand value for every pair.
type Matching struct {
	Pairs []Pair
}

func (*Matching) Type() QuestionType { return QuestionTypeMatching }

func (b *Matching) cloneBody() QuestionBody {
	return &Matching{Pairs: append([]Pair(nil), b.Pairs...)}
}

// UnknownBody keeps questions whose type this build does not understand.
type UnknownBody struct {
	Kind string
}

func (b *UnknownBody) Type() QuestionType { return QuestionType(b.Kind) }

func (b *UnknownBody) cloneBody() QuestionBody { return &UnknownBody{Kind: b.Kind} }

// Type returns the question variant, or "" when the body is missing.
func (q Question) Type() QuestionType {
	if q.Body == nil {
		return ""
	}
	return q.Body.Type()
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	if q.Body != nil {
		q.Body = q.Body.cloneBody()
	}
	return q
}

// PairKey returns the answer key of the pair at index: its id or pair_<index>.
func PairKey(p Pair, index int) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("pair_%d", index)
}

// questionJSON is the flat wire form shared by the API and the JSONB column.
type questionJSON struct {
	ID            string          `json:"id,omitempty"`
	Order         int             `json:"order"`
	Type          QuestionType    `json:"type,omitempty"`
	Prompt        string          `json:"prompt"`
	Explanation   string          `json:"explanation,omitempty"`
	Choices       []Choice        `json:"choices,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Pairs         []Pair          `json:"pairs,omitempty"`
}

// MarshalJSON flattens the variant payload next to the common fields.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:          q.ID,
		Order:       q.Order,
		Type:        q.Type(),
		Prompt:      q.Prompt,
		Explanation: q.Explanation,
	}

	switch b := q.Body.(type) {
	case *MultipleChoice:
		out.Choices = b.Choices
		if out.Choices == nil {
			out.Choices = []Choice{}
		}
	case *TrueFalse:
		if b.CorrectAnswer != nil {
			out.CorrectAnswer = json.RawMessage(fmt.Sprintf("%t", *b.CorrectAnswer))
		}
	case *Matching:
		out.Pairs = b.Pairs
		if out.Pairs == nil {
			out.Pairs = []Pair{}
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wire form. It never fails on an unknown type or
// a non-boolean correctAnswer; those degrade to UnknownBody and nil respectively.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode question: %w", err)
	}

	*q = Question{
		ID:          in.ID,
		Order:       in.Order,
		Prompt:      in.Prompt,
		Explanation: in.Explanation,
	}

	switch in.Type {
	case "":
		q.Body = nil
	case QuestionTypeMultipleChoice:
		q.Body = &MultipleChoice{Choices: in.Choices}
	case QuestionTypeTrueFalse:
		q.Body = &TrueFalse{CorrectAnswer: decodeStrictBool(in.CorrectAnswer)}
	case QuestionTypeMatching:
		q.Body = &Matching{Pairs: in.Pairs}
	default:
		q.Body = &UnknownBody{Kind: string(in.Type)}
	}
	return nil
}

func decodeStrictBool(raw json.RawMessage) *bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// NewBody returns the default payload for a question type.
func NewBody(t QuestionType, newID func() string) QuestionBody {
	switch t {
	case QuestionTypeTrueFalse:
		v := true
		return &TrueFalse{CorrectAnswer: &v}
	case QuestionTypeMatching:
		return &Matching{Pairs: []Pair{{ID: newID()}}}
	case QuestionTypeMultipleChoice:
		return &MultipleChoice{Choices: []Choice{
			{ID: newID(), IsCorrect: true},
			{ID: newID()},
		}}
	default:
		return &UnknownBody{Kind: string(t)}
	}
}

// QuestionForStudent is a question without its answer key.
type QuestionForStudent struct {
	Index       int          `json:"index"`
	ID          string       `json:"id"`
	Order       int          `json:"order"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Choices     []ChoiceView `json:"choices,omitempty"`
	Pairs       []PairView   `json:"pairs,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// ChoiceView is a choice stripped of its correctness flag.
type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PairView exposes only the left-hand side and the answer key of a pair.
type PairView struct {
	Key  string `json:"key"`
	Left string `json:"left"`
}

// ForStudent strips answers from q. The explanation is kept only when reveal is set.
func (q Question) ForStudent(index int, reveal bool) QuestionForStudent {
	v := QuestionForStudent{
		Index:  index,
		ID:     q.ID,
		Order:  q.Order,
		Type:   q.Type(),
		Prompt: q.Prompt,
	}
	if reveal {
		v.Explanation = q.Explanation
	}

	switch b := q.Body.(type) {
	case *MultipleChoice:
		v.Choices = make([]ChoiceView, len(b.Choices))
		for i, c := range b.Choices {
			v.Choices[i] = ChoiceView{ID: c.ID, Text: c.Text}
		}
	case *Matching:
		v.Pairs = make([]PairView, len(b.Pairs))
		for i, p := range b.Pairs {
			v.Pairs[i] = PairView{Key: PairKey(p, i), Left: p.Left}
		}
	}
	return v
}
