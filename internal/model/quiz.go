package model

import (
	"strings"
	"time"
)

// Quiz is an ordered set of questions with its activity metadata.
type Quiz struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	TitleI18n    map[string]string `json:"titleI18n,omitempty"`
	ChapterID    *int64            `json:"chapterId,omitempty"`
	SubjectID    *int64            `json:"subjectId,omitempty"`
	SeasonID     *int64            `json:"seasonId,omitempty"`
	TrainingOnly bool              `json:"trainingOnly"`
	IsActive     bool              `json:"isActive"`
	Questions    []Question        `json:"questions"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// DisplayTitle returns the title for lang, falling back to the default title.
func (q *Quiz) DisplayTitle(lang string) string {
	if t := strings.TrimSpace(q.TitleI18n[lang]); t != "" {
		return t
	}
	if i := strings.IndexByte(lang, '-'); i > 0 {
		if t := strings.TrimSpace(q.TitleI18n[lang[:i]]); t != "" {
			return t
		}
	}
	return q.Title
}

// Clone returns a deep copy of q.
func (q *Quiz) Clone() *Quiz {
	out := *q
	if q.TitleI18n != nil {
		out.TitleI18n = make(map[string]string, len(q.TitleI18n))
		for k, v := range q.TitleI18n {
			out.TitleI18n[k] = v
		}
	}
	out.ChapterID = cloneInt64(q.ChapterID)
	out.SubjectID = cloneInt64(q.SubjectID)
	out.SeasonID = cloneInt64(q.SeasonID)
	out.Questions = make([]Question, len(q.Questions))
	for i, qq := range q.Questions {
		out.Questions[i] = qq.Clone()
	}
	return &out
}

// Payload returns the submission shape of q.
func (q *Quiz) Payload() QuizPayload {
	c := q.Clone()
	return QuizPayload{
		Title:        c.Title,
		TitleI18n:    c.TitleI18n,
		ChapterID:    c.ChapterID,
		SubjectID:    c.SubjectID,
		SeasonID:     c.SeasonID,
		TrainingOnly: c.TrainingOnly,
		IsActive:     c.IsActive,
		Questions:    c.Questions,
	}
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// QuizPayload is the normalized body sent to create and update.
type QuizPayload struct {
	Title        string            `json:"title" binding:"max=255"`
	TitleI18n    map[string]string `json:"titleI18n,omitempty"`
	ChapterID    *int64            `json:"chapterId,omitempty"`
	SubjectID    *int64            `json:"subjectId,omitempty"`
	SeasonID     *int64            `json:"seasonId,omitempty"`
	TrainingOnly bool              `json:"trainingOnly"`
	IsActive     bool              `json:"isActive"`
	Questions    []Question        `json:"questions"`
}

// ToQuiz converts the payload into a quiz with the given id.
func (p QuizPayload) ToQuiz(id string) *Quiz {
	q := &Quiz{
		ID:           id,
		Title:        p.Title,
		TitleI18n:    p.TitleI18n,
		ChapterID:    p.ChapterID,
		SubjectID:    p.SubjectID,
		SeasonID:     p.SeasonID,
		TrainingOnly: p.TrainingOnly,
		IsActive:     p.IsActive,
		Questions:    p.Questions,
	}
	return q.Clone()
}

// QuizFilter holds the getAll filter parameters.
type QuizFilter struct {
	Search       string `form:"search" binding:"omitempty,max=255"`
	ChapterID    *int64 `form:"chapter_id" binding:"omitempty,min=1"`
	SubjectID    *int64 `form:"subject_id" binding:"omitempty,min=1"`
	SeasonID     *int64 `form:"season_id" binding:"omitempty,min=1"`
	IsActive     *bool  `form:"is_active"`
	TrainingOnly *bool  `form:"training_only"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PerPage      int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// UpdateQuizStatusRequest toggles quiz visibility.
type UpdateQuizStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// QuizSummary is the student-facing list entry.
type QuizSummary struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	TitleI18n     map[string]string `json:"-"`
	TrainingOnly  bool              `json:"trainingOnly"`
	QuestionCount int               `json:"questionCount"`
	// Chapter, Subject and Season are empty when the reference is missing.
	Chapter string `json:"chapter"`
	Subject string `json:"subject"`
	Season  string `json:"season"`
}
