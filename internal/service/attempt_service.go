package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
)

var (
	ErrAttemptNotFound = errors.New("attempt not started")
	ErrInvalidAnswer   = errors.New("exactly one of choiceId, value or pairKey is required")
)

// ActiveQuizSource resolves quizzes students may attempt.
type ActiveQuizSource interface {
	ActiveQuiz(ctx context.Context, id string) (*model.Quiz, error)
}

// AttemptStore persists attempt state between requests. Load returns nil, nil
// when there is no attempt.
type AttemptStore interface {
	Load(ctx context.Context, quizID string, userID int) (*model.AttemptState, error)
	Save(ctx context.Context, st *model.AttemptState) error
}

// ResultQueue hands submitted results to the persistence worker.
type ResultQueue interface {
	Enqueue(ctx context.Context, r *model.QuizResult) error
}

// AttemptService drives the evaluation engine for one student at a time.
type AttemptService struct {
	quizzes ActiveQuizSource
	store   AttemptStore
	queue   ResultQueue
	newRand func() *rand.Rand
	now     func() time.Time
	log     zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(quizzes ActiveQuizSource, store AttemptStore, queue ResultQueue, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		quizzes: quizzes,
		store:   store,
		queue:   queue,
		newRand: quiz.NewRand,
		now:     time.Now,
		log:     log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start returns the student's attempt on a quiz, creating one when none exists
// or when the quiz changed since the attempt began.
func (s *AttemptService) Start(ctx context.Context, quizID string, userID int, lang string) (*model.AttemptView, error) {
	q, err := s.quizzes.ActiveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	a, err := s.load(ctx, q, userID)
	if err != nil && !errors.Is(err, ErrAttemptNotFound) {
		return nil, err
	}
	if a == nil {
		a = quiz.NewAttempt(q.Questions, s.newRand())
		if err := s.save(ctx, q, userID, a); err != nil {
			return nil, err
		}
		s.log.Debug().Str("quiz_id", quizID).Int("user_id", userID).Msg("Attempt started")
	}

	return view(q, a, lang), nil
}

// RecordAnswer stores one answer. Exactly one of the request's answer fields must be set.
func (s *AttemptService) RecordAnswer(ctx context.Context, quizID string, userID int, req model.RecordAnswerRequest, lang string) (*model.AttemptView, error) {
	sel, err := selectionFrom(req)
	if err != nil {
		return nil, err
	}

	q, a, err := s.existing(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	if err := a.RecordAnswer(*req.QuestionIndex, sel); err != nil {
		return nil, err
	}
	if err := s.save(ctx, q, userID, a); err != nil {
		return nil, err
	}
	return view(q, a, lang), nil
}

// Submit evaluates the attempt, freezes it and queues the result for storage.
func (s *AttemptService) Submit(ctx context.Context, quizID string, userID int) (*model.Result, error) {
	q, a, err := s.existing(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	res, err := a.Submit()
	if err != nil {
		return nil, err
	}
	res.TrainingOnly = q.TrainingOnly

	st := a.State()
	submittedAt := s.now().UTC()
	if st.SubmittedAt != nil {
		submittedAt = *st.SubmittedAt
	}

	// Queue first: a failed enqueue leaves the attempt open so the student can retry.
	if err := s.queue.Enqueue(ctx, &model.QuizResult{
		QuizID:       q.ID,
		UserID:       userID,
		Total:        res.Total,
		Correct:      res.Correct,
		Percent:      res.Percent,
		TrainingOnly: res.TrainingOnly,
		Breakdown:    res.Breakdown,
		SubmittedAt:  submittedAt,
	}); err != nil {
		return nil, fmt.Errorf("queue result: %w", err)
	}
	if err := s.save(ctx, q, userID, a); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quiz_id", quizID).
		Int("user_id", userID).
		Int("correct", res.Correct).
		Int("total", res.Total).
		Msg("Attempt submitted")
	return res, nil
}

// Reset clears the attempt's answers and result and reshuffles matching options.
func (s *AttemptService) Reset(ctx context.Context, quizID string, userID int, lang string) (*model.AttemptView, error) {
	q, a, err := s.existing(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	a.Reset()
	if err := s.save(ctx, q, userID, a); err != nil {
		return nil, err
	}

	s.log.Debug().Str("quiz_id", quizID).Int("user_id", userID).Msg("Attempt reset")
	return view(q, a, lang), nil
}

func (s *AttemptService) existing(ctx context.Context, quizID string, userID int) (*model.Quiz, *quiz.Attempt, error) {
	q, err := s.quizzes.ActiveQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.load(ctx, q, userID)
	if err != nil {
		return nil, nil, err
	}
	return q, a, nil
}

// load restores the stored attempt. A state recorded against another version
// of the quiz is stale and reported as ErrAttemptNotFound.
func (s *AttemptService) load(ctx context.Context, q *model.Quiz, userID int) (*quiz.Attempt, error) {
	st, err := s.store.Load(ctx, q.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if st == nil {
		return nil, ErrAttemptNotFound
	}
	if !st.QuizVersion.Equal(q.UpdatedAt) {
		s.log.Info().
			Str("quiz_id", q.ID).
			Int("user_id", userID).
			Msg("Quiz changed since attempt started, discarding stale attempt")
		return nil, ErrAttemptNotFound
	}
	return quiz.Restore(q.Questions, st, s.newRand()), nil
}

func (s *AttemptService) save(ctx context.Context, q *model.Quiz, userID int, a *quiz.Attempt) error {
	st := a.State()
	st.QuizID = q.ID
	st.UserID = userID
	st.QuizVersion = q.UpdatedAt
	st.TrainingOnly = q.TrainingOnly
	if err := s.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func selectionFrom(req model.RecordAnswerRequest) (quiz.Selection, error) {
	var sels []quiz.Selection
	if req.ChoiceID != "" {
		sels = append(sels, quiz.ChoiceSelection(req.ChoiceID))
	}
	if req.Value != nil {
		sels = append(sels, quiz.BoolSelection(*req.Value))
	}
	if req.PairKey != "" {
		sels = append(sels, quiz.PairSelection{Key: req.PairKey, Value: req.Match})
	}
	if len(sels) != 1 || req.QuestionIndex == nil {
		return nil, ErrInvalidAnswer
	}
	return sels[0], nil
}

func view(q *model.Quiz, a *quiz.Attempt, lang string) *model.AttemptView {
	submitted := a.Submitted()
	questions := make([]model.QuestionForStudent, len(q.Questions))
	for i, qq := range q.Questions {
		questions[i] = qq.ForStudent(i, submitted)
	}
	return &model.AttemptView{
		QuizID:       q.ID,
		Title:        q.DisplayTitle(lang),
		TrainingOnly: q.TrainingOnly,
		Questions:    questions,
		Options:      a.Options(),
		Answers:      a.Answers(),
		Submitted:    submitted,
		Result:       a.Result(),
	}
}
