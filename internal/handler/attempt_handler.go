package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// ActiveQuizLister lists quizzes students may take.
type ActiveQuizLister interface {
	ListActive(ctx context.Context, lang string) ([]model.QuizSummary, error)
}

// AttemptRunner drives one student's attempt on a quiz.
type AttemptRunner interface {
	Start(ctx context.Context, quizID string, userID int, lang string) (*model.AttemptView, error)
	RecordAnswer(ctx context.Context, quizID string, userID int, req model.RecordAnswerRequest, lang string) (*model.AttemptView, error)
	Submit(ctx context.Context, quizID string, userID int) (*model.Result, error)
	Reset(ctx context.Context, quizID string, userID int, lang string) (*model.AttemptView, error)
}

// AttemptHandler handles the student quiz endpoints.
type AttemptHandler struct {
	quizzes  ActiveQuizLister
	attempts AttemptRunner
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(quizzes ActiveQuizLister, attempts AttemptRunner, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		quizzes:  quizzes,
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// ListActiveQuizzes godoc
// GET /api/v1/student/quizzes
func (h *AttemptHandler) ListActiveQuizzes(c *gin.Context) {
	quizzes, err := h.quizzes.ListActive(c.Request.Context(), c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// StartAttempt godoc
// POST /api/v1/student/quizzes/:quiz_id/attempt
// Starts or resumes the caller's attempt. Calling it again returns the same attempt.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	view, err := h.attempts.Start(c.Request.Context(), quizID, claims.UserID, c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// RecordAnswer godoc
// PUT /api/v1/student/quizzes/:quiz_id/attempt/answers
// Body carries questionIndex plus exactly one of choiceId, value or pairKey+match.
func (h *AttemptHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.attempts.RecordAnswer(c.Request.Context(), quizID, claims.UserID, req, c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// SubmitAttempt godoc
// POST /api/v1/student/quizzes/:quiz_id/attempt/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	res, err := h.attempts.Submit(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// ResetAttempt godoc
// POST /api/v1/student/quizzes/:quiz_id/attempt/reset
// Clears answers and reshuffles matching options.
func (h *AttemptHandler) ResetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	view, err := h.attempts.Reset(c.Request.Context(), quizID, claims.UserID, c.GetString(i18n.ContextKeyLocale))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}
