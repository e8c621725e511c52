package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// QuizManager is the teacher-side quiz persistence API.
type QuizManager interface {
	Create(ctx context.Context, payload model.QuizPayload, lang string) (*model.Quiz, error)
	Update(ctx context.Context, id string, payload model.QuizPayload, lang string) (*model.Quiz, error)
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context, f model.QuizFilter) ([]model.Quiz, *response.Pagination, error)
	UpdateStatus(ctx context.Context, id string, active bool) (*model.Quiz, error)
	Delete(ctx context.Context, id string) error
	ListResults(ctx context.Context, quizID string, page, perPage int) ([]model.QuizResult, *response.Pagination, error)
}

// QuizHandler handles teacher quiz management endpoints.
type QuizHandler struct {
	quizzes QuizManager
	log     zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes QuizManager, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes: quizzes,
		log:     log.With().Str("component", "quiz_handler").Logger(),
	}
}

// CreateQuiz godoc
// POST /api/v1/teacher/quizzes
// Validates the draft with the builder rules and stores the normalized quiz.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.QuizPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizzes.Create(c.Request.Context(), req, c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": q})
}

// UpdateQuiz godoc
// PUT /api/v1/teacher/quizzes/:quiz_id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.QuizPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizzes.Update(c.Request.Context(), quizID, req, c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// GetQuiz godoc
// GET /api/v1/teacher/quizzes/:quiz_id
// Returns the quiz including its answer key.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	q, err := h.quizzes.GetByID(c.Request.Context(), quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// ListQuizzes godoc
// GET /api/v1/teacher/quizzes?search=&chapter_id=&subject_id=&season_id=&is_active=&training_only=&page=&per_page=
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	var filter model.QuizFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quizzes, pagination, err := h.quizzes.List(c.Request.Context(), filter)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, pagination)
}

// UpdateQuizStatus godoc
// PATCH /api/v1/teacher/quizzes/:quiz_id/status
func (h *QuizHandler) UpdateQuizStatus(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateQuizStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizzes.UpdateStatus(c.Request.Context(), quizID, *req.IsActive)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// DeleteQuiz godoc
// DELETE /api/v1/teacher/quizzes/:quiz_id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if err := h.quizzes.Delete(c.Request.Context(), quizID); err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// ListQuizResults godoc
// GET /api/v1/teacher/quizzes/:quiz_id/results?page=&per_page=
func (h *QuizHandler) ListQuizResults(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.quizzes.ListResults(c.Request.Context(), quizID, page, perPage)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// quizIDParam reads :quiz_id and writes INVALID_ID when it is not a UUID.
func quizIDParam(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id.String(), true
}
