package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQuizID = "0b8e6a3e-44b5-4f4e-9a86-0f1f5a7c3d21"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubQuizzes struct {
	err      error
	gotLang  string
	gotID    string
	gotPage  int
	filter   model.QuizFilter
	payload  model.QuizPayload
	active   *bool
	quiz     *model.Quiz
	deleted  bool
	listed   []model.QuizSummary
	results  []model.QuizResult
	pageInfo *response.Pagination
}

func (s *stubQuizzes) Create(_ context.Context, p model.QuizPayload, lang string) (*model.Quiz, error) {
	s.payload, s.gotLang = p, lang
	if s.err != nil {
		return nil, s.err
	}
	return &model.Quiz{ID: testQuizID, Title: p.Title}, nil
}

func (s *stubQuizzes) Update(_ context.Context, id string, p model.QuizPayload, lang string) (*model.Quiz, error) {
	s.gotID, s.payload, s.gotLang = id, p, lang
	if s.err != nil {
		return nil, s.err
	}
	return &model.Quiz{ID: id, Title: p.Title}, nil
}

func (s *stubQuizzes) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	s.gotID = id
	return s.quiz, s.err
}

func (s *stubQuizzes) List(_ context.Context, f model.QuizFilter) ([]model.Quiz, *response.Pagination, error) {
	s.filter = f
	return []model.Quiz{{ID: testQuizID}}, response.NewPagination(1, 10, 1), s.err
}

func (s *stubQuizzes) UpdateStatus(_ context.Context, id string, active bool) (*model.Quiz, error) {
	s.gotID, s.active = id, &active
	if s.err != nil {
		return nil, s.err
	}
	return &model.Quiz{ID: id, IsActive: active}, nil
}

func (s *stubQuizzes) Delete(_ context.Context, id string) error {
	s.gotID = id
	s.deleted = s.err == nil
	return s.err
}

func (s *stubQuizzes) ListResults(_ context.Context, id string, page, perPage int) ([]model.QuizResult, *response.Pagination, error) {
	s.gotID, s.gotPage = id, page
	return s.results, response.NewPagination(page, perPage, len(s.results)), s.err
}

func (s *stubQuizzes) ListActive(_ context.Context, lang string) ([]model.QuizSummary, error) {
	s.gotLang = lang
	return s.listed, s.err
}

type stubAttempts struct {
	err     error
	userID  int
	quizID  string
	req     model.RecordAnswerRequest
	started int
}

func (s *stubAttempts) Start(_ context.Context, quizID string, userID int, _ string) (*model.AttemptView, error) {
	s.quizID, s.userID = quizID, userID
	s.started++
	if s.err != nil {
		return nil, s.err
	}
	return &model.AttemptView{QuizID: quizID, Options: map[int][]string{2: {"Bark", "Meow"}}}, nil
}

func (s *stubAttempts) RecordAnswer(_ context.Context, quizID string, userID int, req model.RecordAnswerRequest, _ string) (*model.AttemptView, error) {
	s.quizID, s.userID, s.req = quizID, userID, req
	if s.err != nil {
		return nil, s.err
	}
	return &model.AttemptView{QuizID: quizID}, nil
}

func (s *stubAttempts) Submit(_ context.Context, quizID string, userID int) (*model.Result, error) {
	s.quizID, s.userID = quizID, userID
	if s.err != nil {
		return nil, s.err
	}
	return &model.Result{Total: 3, Correct: 2, Percent: 66}, nil
}

func (s *stubAttempts) Reset(_ context.Context, quizID string, userID int, _ string) (*model.AttemptView, error) {
	s.quizID, s.userID = quizID, userID
	if s.err != nil {
		return nil, s.err
	}
	return &model.AttemptView{QuizID: quizID}, nil
}

// withClaims stands in for the JWT middleware.
func withClaims(tokenType service.TokenType, userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{TokenType: tokenType, UserID: userID})
		c.Set(i18n.ContextKeyLocale, "fr")
		c.Next()
	}
}

func newRouter(quizzes *stubQuizzes, attempts *stubAttempts) *gin.Engine {
	r := gin.New()
	qh := NewQuizHandler(quizzes, zerolog.Nop())
	ah := NewAttemptHandler(quizzes, attempts, zerolog.Nop())

	t := r.Group("/teacher", withClaims(service.TokenTypeTeacher, 1))
	t.POST("/quizzes", qh.CreateQuiz)
	t.GET("/quizzes", qh.ListQuizzes)
	t.GET("/quizzes/:quiz_id", qh.GetQuiz)
	t.PUT("/quizzes/:quiz_id", qh.UpdateQuiz)
	t.PATCH("/quizzes/:quiz_id/status", qh.UpdateQuizStatus)
	t.DELETE("/quizzes/:quiz_id", qh.DeleteQuiz)
	t.GET("/quizzes/:quiz_id/results", qh.ListQuizResults)

	s := r.Group("/student", withClaims(service.TokenTypeStudent, 42))
	s.GET("/quizzes", ah.ListActiveQuizzes)
	s.POST("/quizzes/:quiz_id/attempt", ah.StartAttempt)
	s.PUT("/quizzes/:quiz_id/attempt/answers", ah.RecordAnswer)
	s.POST("/quizzes/:quiz_id/attempt/submit", ah.SubmitAttempt)
	s.POST("/quizzes/:quiz_id/attempt/reset", ah.ResetAttempt)
	return r
}

type envelope struct {
	Data       map[string]json.RawMessage `json:"data"`
	Error      *response.ErrorBody        `json:"error"`
	Pagination *response.Pagination       `json:"pagination"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestCreateQuiz(t *testing.T) {
	quizzes := &stubQuizzes{}
	r := newRouter(quizzes, &stubAttempts{})

	code, env := do(t, r, http.MethodPost, "/teacher/quizzes", `{
		"title": "Animals",
		"isActive": true,
		"questions": [{"type":"true_false","prompt":"Dogs bark","correctAnswer":true}]
	}`)

	assert.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data["quiz"]), `"title":"Animals"`)
	assert.Equal(t, "fr", quizzes.gotLang)
	require.Len(t, quizzes.payload.Questions, 1)
	assert.Equal(t, model.QuestionTypeTrueFalse, quizzes.payload.Questions[0].Type())
}

func TestCreateQuizInvalidDraft(t *testing.T) {
	quizzes := &stubQuizzes{err: &quiz.ValidationError{Key: "quiz.title_required", Message: "Le titre est obligatoire"}}
	r := newRouter(quizzes, &stubAttempts{})

	code, env := do(t, r, http.MethodPost, "/teacher/quizzes", `{"title":"","questions":[]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrQuizInvalid, env.Error.Code)
	assert.Equal(t, "Le titre est obligatoire", env.Error.Message)
}

func TestCreateQuizMalformedBody(t *testing.T) {
	r := newRouter(&stubQuizzes{}, &stubAttempts{})
	code, env := do(t, r, http.MethodPost, "/teacher/quizzes", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
}

func TestQuizIDMustBeUUID(t *testing.T) {
	r := newRouter(&stubQuizzes{}, &stubAttempts{})
	for _, path := range []string{"/teacher/quizzes/abc", "/teacher/quizzes/abc/results"} {
		code, env := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, response.ErrInvalidID, env.Error.Code)
	}
}

func TestGetQuizNotFound(t *testing.T) {
	r := newRouter(&stubQuizzes{err: fmt.Errorf("get quiz: %w", service.ErrQuizNotFound)}, &stubAttempts{})
	code, env := do(t, r, http.MethodGet, "/teacher/quizzes/"+testQuizID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

func TestListQuizzesBindsFilter(t *testing.T) {
	quizzes := &stubQuizzes{}
	r := newRouter(quizzes, &stubAttempts{})

	code, env := do(t, r, http.MethodGet, "/teacher/quizzes?search=cell&is_active=true&chapter_id=3&page=2", "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, "cell", quizzes.filter.Search)
	require.NotNil(t, quizzes.filter.IsActive)
	assert.True(t, *quizzes.filter.IsActive)
	require.NotNil(t, quizzes.filter.ChapterID)
	assert.Equal(t, int64(3), *quizzes.filter.ChapterID)
	assert.Equal(t, 2, quizzes.filter.Page)

	code, _ = do(t, r, http.MethodGet, "/teacher/quizzes?per_page=1000", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateQuizStatus(t *testing.T) {
	quizzes := &stubQuizzes{}
	r := newRouter(quizzes, &stubAttempts{})

	code, _ := do(t, r, http.MethodPatch, "/teacher/quizzes/"+testQuizID+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPatch, "/teacher/quizzes/"+testQuizID+"/status", `{"isActive":false}`)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, quizzes.active)
	assert.False(t, *quizzes.active)
}

func TestDeleteQuiz(t *testing.T) {
	quizzes := &stubQuizzes{}
	r := newRouter(quizzes, &stubAttempts{})
	code, _ := do(t, r, http.MethodDelete, "/teacher/quizzes/"+testQuizID, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, quizzes.deleted)
	assert.Equal(t, testQuizID, quizzes.gotID)
}

func TestListQuizResults(t *testing.T) {
	quizzes := &stubQuizzes{results: []model.QuizResult{{QuizID: testQuizID, UserID: 9, Correct: 1, Total: 2}}}
	r := newRouter(quizzes, &stubAttempts{})
	code, env := do(t, r, http.MethodGet, "/teacher/quizzes/"+testQuizID+"/results?page=3", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, quizzes.gotPage)
	assert.Contains(t, string(env.Data["results"]), `"userId":9`)
}

func TestStudentAttemptFlow(t *testing.T) {
	attempts := &stubAttempts{}
	quizzes := &stubQuizzes{listed: []model.QuizSummary{{ID: testQuizID, Title: "Animaux"}}}
	r := newRouter(quizzes, attempts)

	code, env := do(t, r, http.MethodGet, "/student/quizzes", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data["quizzes"]), "Animaux")
	assert.Equal(t, "fr", quizzes.gotLang)

	code, env = do(t, r, http.MethodPost, "/student/quizzes/"+testQuizID+"/attempt", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 42, attempts.userID)
	assert.Contains(t, string(env.Data["attempt"]), "Meow")

	code, _ = do(t, r, http.MethodPut, "/student/quizzes/"+testQuizID+"/attempt/answers", `{"questionIndex":2,"pairKey":"pair_0","match":"Bark"}`)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, attempts.req.QuestionIndex)
	assert.Equal(t, 2, *attempts.req.QuestionIndex)
	assert.Equal(t, "pair_0", attempts.req.PairKey)

	code, env = do(t, r, http.MethodPost, "/student/quizzes/"+testQuizID+"/attempt/submit", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data["result"]), `"percent":66`)

	code, _ = do(t, r, http.MethodPost, "/student/quizzes/"+testQuizID+"/attempt/reset", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRecordAnswerRequiresIndex(t *testing.T) {
	r := newRouter(&stubQuizzes{}, &stubAttempts{})
	code, env := do(t, r, http.MethodPut, "/student/quizzes/"+testQuizID+"/attempt/answers", `{"choiceId":"a"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
}

func TestAttemptErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrQuizNotAvailable, http.StatusNotFound, response.ErrQuizNotAvailable},
		{service.ErrAttemptNotFound, http.StatusConflict, response.ErrAttemptNotFound},
		{service.ErrInvalidAnswer, http.StatusBadRequest, response.ErrInvalidPayload},
		{quiz.ErrAttemptSubmitted, http.StatusConflict, response.ErrAttemptSubmitted},
		{quiz.ErrNoQuestions, http.StatusUnprocessableEntity, response.ErrNoQuestions},
		{quiz.ErrQuestionIndex, http.StatusBadRequest, response.ErrQuestionIndex},
		{quiz.ErrSelectionMismatch, http.StatusBadRequest, response.ErrSelectionMismatch},
		{errors.New("redis down"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			r := newRouter(&stubQuizzes{}, &stubAttempts{err: fmt.Errorf("wrapped: %w", tt.err)})
			code, env := do(t, r, http.MethodPost, "/student/quizzes/"+testQuizID+"/attempt/submit", "")
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	h := NewSystemHandler(map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("refused") }),
	}, zerolog.Nop())

	r := gin.New()
	r.GET("/health", h.Health)
	code, env := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `{"postgres":"up","redis":"down"}`, string(env.Data["checks"]))
}

func TestMe(t *testing.T) {
	r := gin.New()
	r.GET("/me", withClaims(service.TokenTypeStudent, 42), NewAuthHandler().Me)
	code, env := do(t, r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data["user"]), `"id":42`)
	assert.Contains(t, string(env.Data["user"]), `"permissions":[]`)
}

type stubReferences struct {
	err     error
	kind    model.ReferenceKind
	id      int64
	name    string
	deleted bool
}

func (s *stubReferences) GetAll(_ context.Context, kind model.ReferenceKind) ([]model.Reference, error) {
	s.kind = kind
	if s.err != nil {
		return nil, s.err
	}
	return []model.Reference{{ID: 1, Name: "Algebra"}}, nil
}

func (s *stubReferences) Create(_ context.Context, kind model.ReferenceKind, name string) (*model.Reference, error) {
	s.kind, s.name = kind, name
	if s.err != nil {
		return nil, s.err
	}
	return &model.Reference{ID: 2, Name: name}, nil
}

func (s *stubReferences) Rename(_ context.Context, kind model.ReferenceKind, id int64, name string) error {
	s.kind, s.id, s.name = kind, id, name
	return s.err
}

func (s *stubReferences) Delete(_ context.Context, kind model.ReferenceKind, id int64) error {
	s.kind, s.id = kind, id
	s.deleted = s.err == nil
	return s.err
}

func newReferenceRouter(refs *stubReferences) *gin.Engine {
	r := gin.New()
	h := NewReferenceHandler(refs, zerolog.Nop())
	g := r.Group("/teacher/references/:kind", withClaims(service.TokenTypeTeacher, 1))
	g.GET("", h.ListReferences)
	g.POST("", h.CreateReference)
	g.PUT("/:id", h.RenameReference)
	g.DELETE("/:id", h.DeleteReference)
	return r
}

func TestReferenceEndpoints(t *testing.T) {
	refs := &stubReferences{}
	r := newReferenceRouter(refs)

	status, env := do(t, r, http.MethodGet, "/teacher/references/subjects", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.ReferenceSubjects, refs.kind)
	assert.Contains(t, string(env.Data["references"]), "Algebra")

	status, _ = do(t, r, http.MethodPost, "/teacher/references/chapters", `{"name":"Fractions"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Fractions", refs.name)

	status, env = do(t, r, http.MethodPost, "/teacher/references/chapters", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrValidation, env.Error.Code)

	status, _ = do(t, r, http.MethodPut, "/teacher/references/seasons/7", `{"name":"Term 2"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(7), refs.id)

	status, env = do(t, r, http.MethodDelete, "/teacher/references/seasons/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)

	status, _ = do(t, r, http.MethodDelete, "/teacher/references/seasons/7", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, refs.deleted)
}

func TestReferenceErrorsMapToNotFound(t *testing.T) {
	for _, err := range []error{service.ErrUnknownReference, service.ErrReferenceNotFound} {
		r := newReferenceRouter(&stubReferences{err: err})
		status, env := do(t, r, http.MethodGet, "/teacher/references/grades", "")
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, response.ErrNotFound, env.Error.Code)
	}
}
