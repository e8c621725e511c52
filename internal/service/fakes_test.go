package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/exstem-quiz/internal/model"
)

type fakeQuizStore struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
	clock   time.Time
	failAll error
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{
		quizzes: map[string]*model.Quiz{},
		clock:   time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeQuizStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeQuizStore) Create(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	q.CreatedAt = f.tick()
	q.UpdatedAt = q.CreatedAt
	f.quizzes[q.ID] = q.Clone()
	return nil
}

func (f *fakeQuizStore) Update(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.quizzes[q.ID]
	if !ok {
		return ErrQuizNotFound
	}
	q.CreatedAt = old.CreatedAt
	q.UpdatedAt = f.tick()
	f.quizzes[q.ID] = q.Clone()
	return nil
}

func (f *fakeQuizStore) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q.Clone(), nil
}

func (f *fakeQuizStore) List(_ context.Context, filter model.QuizFilter, limit, offset int) ([]model.Quiz, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Quiz
	for _, q := range f.quizzes {
		if filter.IsActive != nil && q.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *q.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeQuizStore) ListActiveSummaries(_ context.Context) ([]model.QuizSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizSummary
	for _, q := range f.quizzes {
		if !q.IsActive {
			continue
		}
		out = append(out, model.QuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			TitleI18n:     q.TitleI18n,
			TrainingOnly:  q.TrainingOnly,
			QuestionCount: len(q.Questions),
		})
	}
	return out, nil
}

func (f *fakeQuizStore) UpdateStatus(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return ErrQuizNotFound
	}
	q.IsActive = active
	q.UpdatedAt = f.tick()
	return nil
}

func (f *fakeQuizStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeResultStore struct {
	results []model.QuizResult
}

func (f *fakeResultStore) ListByQuiz(_ context.Context, quizID string, limit, offset int) ([]model.QuizResult, int, error) {
	var out []model.QuizResult
	for _, r := range f.results {
		if r.QuizID == quizID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

type fakeQuizCache struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
	gets    int
}

func newFakeQuizCache() *fakeQuizCache {
	return &fakeQuizCache{quizzes: map[string]*model.Quiz{}}
}

func (f *fakeQuizCache) Get(_ context.Context, id string) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	q, ok := f.quizzes[id]
	if !ok {
		return nil, nil
	}
	return q.Clone(), nil
}

func (f *fakeQuizCache) Set(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[q.ID] = q.Clone()
	return nil
}

func (f *fakeQuizCache) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.quizzes, id)
	return nil
}

func (f *fakeQuizCache) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.quizzes[id]
	return ok
}

type attemptKey struct {
	quizID string
	userID int
}

type fakeAttemptStore struct {
	mu     sync.Mutex
	states map[attemptKey]*model.AttemptState
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{states: map[attemptKey]*model.AttemptState{}}
}

func (f *fakeAttemptStore) Load(_ context.Context, quizID string, userID int) (*model.AttemptState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[attemptKey{quizID, userID}]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeAttemptStore) Save(_ context.Context, st *model.AttemptState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *st
	f.states[attemptKey{st.QuizID, st.UserID}] = &cp
	return nil
}

type fakeResultQueue struct {
	mu      sync.Mutex
	results []*model.QuizResult
	err     error
}

func (f *fakeResultQueue) Enqueue(_ context.Context, r *model.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, r)
	return nil
}

var errBoom = errors.New("boom")
