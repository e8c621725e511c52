package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

var (
	ErrReferenceNotFound = repository.ErrReferenceNotFound
	ErrUnknownReference  = repository.ErrUnknownReference
)

// ReferenceStore persists chapters, subjects and seasons.
type ReferenceStore interface {
	Create(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error
	GetAll(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error)
	Update(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error
	Delete(ctx context.Context, kind model.ReferenceKind, id int64) error
}

// ReferenceService manages the lookup lists quizzes are filed under.
type ReferenceService struct {
	store ReferenceStore
	log   zerolog.Logger
}

func NewReferenceService(store ReferenceStore, log zerolog.Logger) *ReferenceService {
	return &ReferenceService{
		store: store,
		log:   log.With().Str("component", "reference_service").Logger(),
	}
}

func (s *ReferenceService) GetAll(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error) {
	if !kind.Valid() {
		return nil, ErrUnknownReference
	}
	refs, err := s.store.GetAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []model.Reference{}
	}
	return refs, nil
}

func (s *ReferenceService) Create(ctx context.Context, kind model.ReferenceKind, name string) (*model.Reference, error) {
	if !kind.Valid() {
		return nil, ErrUnknownReference
	}
	ref := &model.Reference{Name: strings.TrimSpace(name)}
	if err := s.store.Create(ctx, kind, ref); err != nil {
		return nil, err
	}
	s.log.Info().Str("kind", string(kind)).Int64("id", ref.ID).Msg("Reference created")
	return ref, nil
}

func (s *ReferenceService) Rename(ctx context.Context, kind model.ReferenceKind, id int64, name string) error {
	if !kind.Valid() {
		return ErrUnknownReference
	}
	return s.store.Update(ctx, kind, &model.Reference{ID: id, Name: strings.TrimSpace(name)})
}

// Delete removes a reference. The active quiz list resolves names on every
// read, so no cache needs dropping here.
func (s *ReferenceService) Delete(ctx context.Context, kind model.ReferenceKind, id int64) error {
	if !kind.Valid() {
		return ErrUnknownReference
	}
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.log.Info().Str("kind", string(kind)).Int64("id", id).Msg("Reference deleted")
	return nil
}
