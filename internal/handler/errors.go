package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
)

// failWithError maps service and engine errors onto the response envelope.
// Unknown errors are logged and reported as INTERNAL_ERROR.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrQuizInvalid, verr.Message)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrReferenceNotFound), errors.Is(err, service.ErrUnknownReference):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuizNotAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotAvailable)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrInvalidAnswer):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, err.Error())
	case errors.Is(err, quiz.ErrAttemptSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptSubmitted)
	case errors.Is(err, quiz.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, quiz.ErrQuestionIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionIndex)
	case errors.Is(err, quiz.ErrSelectionMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrSelectionMismatch)
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
