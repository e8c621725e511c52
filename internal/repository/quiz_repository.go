package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

var ErrQuizNotFound = errors.New("quiz not found")

const quizColumns = `q.id, q.title, q.title_i18n, q.chapter_id, q.subject_id, q.season_id,
	q.training_only, q.is_active, q.questions, q.created_at, q.updated_at`

// QuizRepository handles quiz data access. Questions live in a JSONB column.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// Create inserts a new quiz. q.ID must already be set.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	id, err := parseQuizID(q.ID)
	if err != nil {
		return err
	}
	titles, questions, err := encodeQuiz(q)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, title_i18n, chapter_id, subject_id, season_id,
		                      training_only, is_active, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		id, q.Title, titles, q.ChapterID, q.SubjectID, q.SeasonID,
		q.TrainingOnly, q.IsActive, questions,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

// Update replaces every editable field of a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	id, err := parseQuizID(q.ID)
	if err != nil {
		return err
	}
	titles, questions, err := encodeQuiz(q)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`UPDATE quizzes
		 SET title = $1, title_i18n = $2, chapter_id = $3, subject_id = $4, season_id = $5,
		     training_only = $6, is_active = $7, questions = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING created_at, updated_at`,
		q.Title, titles, q.ChapterID, q.SubjectID, q.SeasonID,
		q.TrainingOnly, q.IsActive, questions, id,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQuizNotFound
	}
	return err
}

// GetByID retrieves a quiz with its questions.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	uid, err := parseQuizID(id)
	if err != nil {
		return nil, err
	}

	q, err := scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes q WHERE q.id = $1`, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// List returns a filtered page of quizzes and the total match count.
func (r *QuizRepository) List(ctx context.Context, f model.QuizFilter, limit, offset int) ([]model.Quiz, int, error) {
	where, args := quizFilterClause(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes q`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argIdx := len(args) + 1
	query := `SELECT ` + quizColumns + ` FROM quizzes q` + where +
		` ORDER BY q.created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, total, rows.Err()
}

// ListActiveSummaries returns the student-facing list of active quizzes with
// reference names resolved. Missing references come back as empty strings.
func (r *QuizRepository) ListActiveSummaries(ctx context.Context) ([]model.QuizSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.title, q.title_i18n, q.training_only, jsonb_array_length(q.questions),
		        COALESCE(c.name, ''), COALESCE(s.name, ''), COALESCE(se.name, '')
		 FROM quizzes q
		 LEFT JOIN chapters c ON c.id = q.chapter_id
		 LEFT JOIN subjects s ON s.id = q.subject_id
		 LEFT JOIN seasons se ON se.id = q.season_id
		 WHERE q.is_active = TRUE
		 ORDER BY q.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QuizSummary
	for rows.Next() {
		var (
			s      model.QuizSummary
			id     uuid.UUID
			titles []byte
		)
		if err := rows.Scan(&id, &s.Title, &titles, &s.TrainingOnly, &s.QuestionCount,
			&s.Chapter, &s.Subject, &s.Season); err != nil {
			return nil, err
		}
		s.ID = id.String()
		if len(titles) > 0 {
			if err := json.Unmarshal(titles, &s.TitleI18n); err != nil {
				return nil, fmt.Errorf("decode quiz %s titles: %w", s.ID, err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus toggles a quiz's visibility to students.
func (r *QuizRepository) UpdateStatus(ctx context.Context, id string, active bool) error {
	uid, err := parseQuizID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuizNotFound
	}
	return nil
}

// Delete removes a quiz. Its results are removed by the foreign key cascade.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseQuizID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func quizFilterClause(f model.QuizFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		add(`q.title ILIKE ?`, "%"+s+"%")
	}
	if f.ChapterID != nil {
		add(`q.chapter_id = ?`, *f.ChapterID)
	}
	if f.SubjectID != nil {
		add(`q.subject_id = ?`, *f.SubjectID)
	}
	if f.SeasonID != nil {
		add(`q.season_id = ?`, *f.SeasonID)
	}
	if f.IsActive != nil {
		add(`q.is_active = ?`, *f.IsActive)
	}
	if f.TrainingOnly != nil {
		add(`q.training_only = ?`, *f.TrainingOnly)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func parseQuizID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrQuizNotFound
	}
	return uid, nil
}

func encodeQuiz(q *model.Quiz) (titles, questions []byte, err error) {
	if len(q.TitleI18n) > 0 {
		if titles, err = json.Marshal(q.TitleI18n); err != nil {
			return nil, nil, fmt.Errorf("encode titles: %w", err)
		}
	}
	qs := q.Questions
	if qs == nil {
		qs = []model.Question{}
	}
	if questions, err = json.Marshal(qs); err != nil {
		return nil, nil, fmt.Errorf("encode questions: %w", err)
	}
	return titles, questions, nil
}

func scanQuiz(row pgx.Row) (*model.Quiz, error) {
	var (
		q         model.Quiz
		id        uuid.UUID
		titles    []byte
		questions []byte
	)
	if err := row.Scan(&id, &q.Title, &titles, &q.ChapterID, &q.SubjectID, &q.SeasonID,
		&q.TrainingOnly, &q.IsActive, &questions, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.ID = id.String()
	if len(titles) > 0 {
		if err := json.Unmarshal(titles, &q.TitleI18n); err != nil {
			return nil, fmt.Errorf("decode quiz %s titles: %w", q.ID, err)
		}
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode quiz %s questions: %w", q.ID, err)
	}
	return &q, nil
}
