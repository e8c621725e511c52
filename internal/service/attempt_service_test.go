package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attemptFixture struct {
	svc      *AttemptService
	quizzes  *QuizService
	store    *fakeQuizStore
	attempts *fakeAttemptStore
	queue    *fakeResultQueue
	quiz     *model.Quiz
}

func newAttemptFixture(t *testing.T) *attemptFixture {
	t.Helper()
	qf := newQuizServiceFixture(t)
	f := &attemptFixture{
		quizzes:  qf.svc,
		store:    qf.store,
		attempts: newFakeAttemptStore(),
		queue:    &fakeResultQueue{},
	}
	f.svc = NewAttemptService(f.quizzes, f.attempts, f.queue, zerolog.Nop())
	seed := int64(0)
	f.svc.newRand = func() *rand.Rand {
		seed++
		return rand.New(rand.NewSource(seed))
	}

	p := samplePayload()
	p.TrainingOnly = true
	q, err := f.quizzes.Create(context.Background(), p, "en")
	require.NoError(t, err)
	f.quiz = q
	return f
}

func intPtr(v int) *int { return &v }

func (f *attemptFixture) pairKey(i int) string {
	return model.PairKey(f.quiz.Questions[2].Body.(*model.Matching).Pairs[i], i)
}

func (f *attemptFixture) correctChoice() string {
	c, _ := f.quiz.Questions[0].Body.(*model.MultipleChoice).CorrectChoice()
	return c.ID
}

func TestAttemptStartIsIdempotent(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	assert.Len(t, first.Questions, 3)
	assert.ElementsMatch(t, []string{"Bark", "Meow"}, first.Options[2])
	assert.False(t, first.Submitted)
	for _, q := range first.Questions {
		assert.Empty(t, q.Explanation)
	}

	second, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	assert.Equal(t, first.Options, second.Options, "shuffle is stable until reset")
}

func TestAttemptRecordSubmitAndFreeze(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)

	answers := []model.RecordAnswerRequest{
		{QuestionIndex: intPtr(0), ChoiceID: f.correctChoice()},
		{QuestionIndex: intPtr(1), Value: boolPtr(false)},
		{QuestionIndex: intPtr(2), PairKey: f.pairKey(0), Match: " bark"},
		{QuestionIndex: intPtr(2), PairKey: f.pairKey(1), Match: "MEOW"},
	}
	var v *model.AttemptView
	for _, a := range answers {
		v, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 7, a, "en")
		require.NoError(t, err)
	}
	assert.Len(t, v.Answers[2].Matches, 2)

	res, err := f.svc.Submit(ctx, f.quiz.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 66, res.Percent)
	assert.True(t, res.TrainingOnly)

	require.Len(t, f.queue.results, 1)
	queued := f.queue.results[0]
	assert.Equal(t, f.quiz.ID, queued.QuizID)
	assert.Equal(t, 7, queued.UserID)
	assert.Equal(t, 2, queued.Correct)
	assert.False(t, queued.SubmittedAt.IsZero())

	_, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 7, answers[0], "en")
	assert.ErrorIs(t, err, quiz.ErrAttemptSubmitted)
	_, err = f.svc.Submit(ctx, f.quiz.ID, 7)
	assert.ErrorIs(t, err, quiz.ErrAttemptSubmitted)

	v, err = f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	assert.True(t, v.Submitted)
	require.NotNil(t, v.Result)
	assert.Equal(t, 2, v.Result.Correct)
	assert.NotEmpty(t, v.Questions[0].Prompt)
}

func TestAttemptSubmitQueueFailureKeepsAttemptOpen(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)

	f.queue.err = errBoom
	_, err = f.svc.Submit(ctx, f.quiz.ID, 7)
	assert.ErrorIs(t, err, errBoom)

	f.queue.err = nil
	_, err = f.svc.Submit(ctx, f.quiz.ID, 7)
	require.NoError(t, err)
}

func TestAttemptRecordAnswerErrors(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordAnswer(ctx, f.quiz.ID, 7, model.RecordAnswerRequest{QuestionIndex: intPtr(0), ChoiceID: "x"}, "en")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  model.RecordAnswerRequest
		err  error
	}{
		{"nothing set", model.RecordAnswerRequest{QuestionIndex: intPtr(0)}, ErrInvalidAnswer},
		{"two fields", model.RecordAnswerRequest{QuestionIndex: intPtr(0), ChoiceID: "a", Value: boolPtr(true)}, ErrInvalidAnswer},
		{"index out of range", model.RecordAnswerRequest{QuestionIndex: intPtr(9), ChoiceID: "a"}, quiz.ErrQuestionIndex},
		{"wrong kind", model.RecordAnswerRequest{QuestionIndex: intPtr(0), Value: boolPtr(true)}, quiz.ErrSelectionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordAnswer(ctx, f.quiz.ID, 7, tt.req, "en")
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAttemptReset(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 7, model.RecordAnswerRequest{QuestionIndex: intPtr(0), ChoiceID: f.correctChoice()}, "en")
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.quiz.ID, 7)
	require.NoError(t, err)

	v, err := f.svc.Reset(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	assert.False(t, v.Submitted)
	assert.Nil(t, v.Result)
	assert.Empty(t, v.Answers)
	assert.ElementsMatch(t, []string{"Bark", "Meow"}, v.Options[2])

	_, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 7, model.RecordAnswerRequest{QuestionIndex: intPtr(1), Value: boolPtr(true)}, "en")
	assert.NoError(t, err)
}

func TestAttemptDiscardedWhenQuizChanges(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 7, model.RecordAnswerRequest{QuestionIndex: intPtr(1), Value: boolPtr(true)}, "en")
	require.NoError(t, err)

	p := f.quiz.Payload()
	p.Questions = p.Questions[:2]
	_, err = f.quizzes.Update(ctx, f.quiz.ID, p, "en")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.quiz.ID, 7)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	v, err := f.svc.Start(ctx, f.quiz.ID, 7, "en")
	require.NoError(t, err)
	assert.Len(t, v.Questions, 2)
	assert.Empty(t, v.Answers)
}

func TestAttemptInactiveQuiz(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.quizzes.UpdateStatus(ctx, f.quiz.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, f.quiz.ID, 7, "en")
	assert.ErrorIs(t, err, ErrQuizNotAvailable)
}

func TestAttemptsAreIsolatedPerStudent(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, f.quiz.ID, 1, "en")
	require.NoError(t, err)
	_, err = f.svc.Start(ctx, f.quiz.ID, 2, "en")
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(ctx, f.quiz.ID, 1, model.RecordAnswerRequest{QuestionIndex: intPtr(1), Value: boolPtr(true)}, "en")
	require.NoError(t, err)

	v, err := f.svc.Start(ctx, f.quiz.ID, 2, "en")
	require.NoError(t, err)
	assert.Empty(t, v.Answers)
	assert.WithinDuration(t, time.Now(), f.attempts.states[attemptKey{f.quiz.ID, 2}].StartedAt, time.Minute)
}
