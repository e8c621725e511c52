package quiz

import (
	"strings"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// Evaluate scores answers against questions. Answers are keyed by question
// index. It returns nil for a quiz without questions.
//
// Matching questions are all-or-nothing, but every pair's correctness is kept
// in the breakdown. Questions of an unknown type count towards the total and
// are never correct.
func Evaluate(questions []model.Question, answers map[int]model.Answer) *model.Result {
	if len(questions) == 0 {
		return nil
	}

	res := &model.Result{
		Total:     len(questions),
		Breakdown: make([]model.QuestionOutcome, len(questions)),
	}

	for i, q := range questions {
		out := model.QuestionOutcome{
			Index:       i,
			QuestionID:  q.ID,
			Type:        q.Type(),
			Explanation: q.Explanation,
		}
		ans := answers[i]

		switch b := q.Body.(type) {
		case *model.MultipleChoice:
			out.SelectedChoiceID = ans.ChoiceID
			if c, ok := b.CorrectChoice(); ok {
				out.CorrectChoiceID = c.ID
			}
			for _, c := range b.Choices {
				if c.ID == ans.ChoiceID && ans.ChoiceID != "" {
					out.Correct = c.IsCorrect
					break
				}
			}
		case *model.TrueFalse:
			expected := b.Resolved()
			out.CorrectValue = &expected
			if ans.Value != nil {
				selected := *ans.Value
				out.SelectedValue = &selected
				out.Correct = selected == expected
			}
		case *model.Matching:
			out.Pairs = make([]model.PairOutcome, len(b.Pairs))
			allCorrect := len(b.Pairs) > 0
			for j, p := range b.Pairs {
				key := model.PairKey(p, j)
				selected := ans.Matches[key]
				ok := normalize(selected) == normalize(p.Right)
				out.Pairs[j] = model.PairOutcome{
					Key:      key,
					Left:     p.Left,
					Expected: p.Right,
					Selected: selected,
					Correct:  ok,
				}
				if !ok {
					allCorrect = false
				}
			}
			out.Correct = allCorrect
		}

		if out.Correct {
			res.Correct++
		}
		res.Breakdown[i] = out
	}

	res.Percent = res.Correct * 100 / res.Total
	return res
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
