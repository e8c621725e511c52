package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/repository"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// Domain Errors
var (
	ErrQuizNotFound     = repository.ErrQuizNotFound
	ErrQuizNotAvailable = errors.New("quiz is not active")
)

// QuizStore persists quizzes.
type QuizStore interface {
	Create(ctx context.Context, q *model.Quiz) error
	Update(ctx context.Context, q *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context, f model.QuizFilter, limit, offset int) ([]model.Quiz, int, error)
	ListActiveSummaries(ctx context.Context) ([]model.QuizSummary, error)
	UpdateStatus(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// QuizResultStore reads persisted attempt results.
type QuizResultStore interface {
	ListByQuiz(ctx context.Context, quizID string, limit, offset int) ([]model.QuizResult, int, error)
}

// QuizCache holds active quizzes for the student lane. Get returns nil, nil on a miss.
type QuizCache interface {
	Get(ctx context.Context, id string) (*model.Quiz, error)
	Set(ctx context.Context, q *model.Quiz) error
	Delete(ctx context.Context, id string) error
}

// QuizService implements the quiz persistence API: it validates and normalizes
// drafts with the builder rules before storing them.
type QuizService struct {
	store   QuizStore
	results QuizResultStore
	cache   QuizCache
	tr      *i18n.Translator
	newID   func() string
	log     zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	store QuizStore,
	results QuizResultStore,
	cache QuizCache,
	tr *i18n.Translator,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		store:   store,
		results: results,
		cache:   cache,
		tr:      tr,
		newID:   quiz.NewID,
		log:     log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create validates the payload, normalizes it and stores it as a new quiz.
// A *quiz.ValidationError with a message in lang is returned for an invalid draft.
func (s *QuizService) Create(ctx context.Context, payload model.QuizPayload, lang string) (*model.Quiz, error) {
	q, err := s.prepare(payload, s.newID(), lang)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.syncCache(ctx, q)

	s.log.Info().Str("quiz_id", q.ID).Int("questions", len(q.Questions)).Msg("Quiz created")
	return q, nil
}

// Update replaces the stored quiz with the normalized payload.
func (s *QuizService) Update(ctx context.Context, id string, payload model.QuizPayload, lang string) (*model.Quiz, error) {
	q, err := s.prepare(payload, id, lang)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	s.syncCache(ctx, q)

	s.log.Info().Str("quiz_id", id).Int("questions", len(q.Questions)).Msg("Quiz updated")
	return q, nil
}

func (s *QuizService) prepare(payload model.QuizPayload, id, lang string) (*model.Quiz, error) {
	draft := payload.ToQuiz(id)
	if verr := quiz.Validate(draft); verr != nil {
		return nil, s.Localize(verr, lang)
	}

	normalized := quiz.BuildSubmissionPayload(draft)
	quiz.AssignMissingIDs(&normalized, s.newID)
	return normalized.ToQuiz(id), nil
}

// Localize returns a copy of verr with its message translated into lang.
func (s *QuizService) Localize(verr *quiz.ValidationError, lang string) *quiz.ValidationError {
	out := *verr
	if s.tr != nil {
		out.Message = s.tr.T(lang, verr.Key, quiz.FallbackMessage(verr.Key), verr.Params()...)
	}
	return &out
}

// GetByID returns a quiz including its answer key.
func (s *QuizService) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

// List retrieves quizzes matching the filter with pagination.
func (s *QuizService) List(ctx context.Context, f model.QuizFilter) ([]model.Quiz, *response.Pagination, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)

	quizzes, total, err := s.store.List(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list quizzes: %w", err)
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}

	return quizzes, response.NewPagination(page, perPage, total), nil
}

// UpdateStatus toggles quiz visibility for students.
func (s *QuizService) UpdateStatus(ctx context.Context, id string, active bool) (*model.Quiz, error) {
	if err := s.store.UpdateStatus(ctx, id, active); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	s.syncCache(ctx, q)

	s.log.Info().Str("quiz_id", id).Bool("is_active", active).Msg("Quiz status changed")
	return q, nil
}

// Delete removes a quiz and its cached copy.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id).Msg("Cache invalidation failed")
	}

	s.log.Info().Str("quiz_id", id).Msg("Quiz deleted")
	return nil
}

// ActiveQuiz returns an active quiz for students, cache first.
func (s *QuizService) ActiveQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id).Msg("Cache read failed, falling back to database")
	}
	if cached != nil {
		return cached, nil
	}

	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !q.IsActive {
		return nil, ErrQuizNotAvailable
	}
	if err := s.cache.Set(ctx, q); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id).Msg("Cache write failed")
	}
	return q, nil
}

// ListActive returns the active quizzes students can take, titled in lang.
func (s *QuizService) ListActive(ctx context.Context, lang string) ([]model.QuizSummary, error) {
	summaries, err := s.store.ListActiveSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active quizzes: %w", err)
	}

	for i := range summaries {
		q := model.Quiz{Title: summaries[i].Title, TitleI18n: summaries[i].TitleI18n}
		summaries[i].Title = q.DisplayTitle(lang)
		if summaries[i].Title == "" && s.tr != nil {
			summaries[i].Title = s.tr.T(lang, "quiz.untitled", "Untitled quiz")
		}
	}
	if summaries == nil {
		summaries = []model.QuizSummary{}
	}
	return summaries, nil
}

// ListResults returns persisted attempt results of a quiz, newest first.
func (s *QuizService) ListResults(ctx context.Context, quizID string, page, perPage int) ([]model.QuizResult, *response.Pagination, error) {
	if _, err := s.store.GetByID(ctx, quizID); err != nil {
		return nil, nil, fmt.Errorf("get quiz: %w", err)
	}

	page, perPage = normalizePage(page, perPage)
	results, total, err := s.results.ListByQuiz(ctx, quizID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.QuizResult{}
	}
	return results, response.NewPagination(page, perPage, total), nil
}

// PrewarmCache loads every active quiz into the cache before traffic is accepted.
func (s *QuizService) PrewarmCache(ctx context.Context) error {
	active := true
	quizzes, _, err := s.store.List(ctx, model.QuizFilter{IsActive: &active}, 1000, 0)
	if err != nil {
		return fmt.Errorf("list active quizzes: %w", err)
	}

	for i := range quizzes {
		if err := s.cache.Set(ctx, &quizzes[i]); err != nil {
			return fmt.Errorf("cache quiz %s: %w", quizzes[i].ID, err)
		}
	}

	s.log.Info().Int("count", len(quizzes)).Msg("Active quiz cache prewarmed")
	return nil
}

// syncCache keeps the student lane in step with a stored quiz.
func (s *QuizService) syncCache(ctx context.Context, q *model.Quiz) {
	var err error
	if q.IsActive {
		err = s.cache.Set(ctx, q)
	} else {
		err = s.cache.Delete(ctx, q.ID)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("quiz_id", q.ID).Msg("Cache sync failed")
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
