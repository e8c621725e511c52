package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// ReferenceManager manages chapters, subjects and seasons.
type ReferenceManager interface {
	GetAll(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error)
	Create(ctx context.Context, kind model.ReferenceKind, name string) (*model.Reference, error)
	Rename(ctx context.Context, kind model.ReferenceKind, id int64, name string) error
	Delete(ctx context.Context, kind model.ReferenceKind, id int64) error
}

type ReferenceHandler struct {
	refs ReferenceManager
	log  zerolog.Logger
}

func NewReferenceHandler(refs ReferenceManager, log zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		refs: refs,
		log:  log.With().Str("component", "reference_handler").Logger(),
	}
}

// ListReferences godoc
// GET /api/v1/teacher/references/:kind
func (h *ReferenceHandler) ListReferences(c *gin.Context) {
	refs, err := h.refs.GetAll(c.Request.Context(), model.ReferenceKind(c.Param("kind")))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"references": refs})
}

// CreateReference godoc
// POST /api/v1/teacher/references/:kind
func (h *ReferenceHandler) CreateReference(c *gin.Context) {
	var req model.ReferenceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ref, err := h.refs.Create(c.Request.Context(), model.ReferenceKind(c.Param("kind")), req.Name)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reference": ref})
}

// RenameReference godoc
// PUT /api/v1/teacher/references/:kind/:id
func (h *ReferenceHandler) RenameReference(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReferenceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.refs.Rename(c.Request.Context(), model.ReferenceKind(c.Param("kind")), id, req.Name); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "reference updated successfully"})
}

// DeleteReference godoc
// DELETE /api/v1/teacher/references/:kind/:id
func (h *ReferenceHandler) DeleteReference(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.refs.Delete(c.Request.Context(), model.ReferenceKind(c.Param("kind")), id); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "reference deleted successfully"})
}
