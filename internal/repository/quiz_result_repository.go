package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// QuizResultRepository handles submitted attempt results.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

// NewQuizResultRepository creates a new QuizResultRepository.
func NewQuizResultRepository(pool *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{pool: pool}
}

// Create inserts one result.
func (r *QuizResultRepository) Create(ctx context.Context, res *model.QuizResult) error {
	quizID, err := parseQuizID(res.QuizID)
	if err != nil {
		return err
	}
	breakdown, err := json.Marshal(res.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (quiz_id, user_id, total, correct, percent, training_only, breakdown, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		quizID, res.UserID, res.Total, res.Correct, res.Percent, res.TrainingOnly, breakdown, res.SubmittedAt,
	).Scan(&res.ID)
}

// CreateBatch inserts many results in one statement using UNNEST.
func (r *QuizResultRepository) CreateBatch(ctx context.Context, batch []*model.QuizResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	quizIDs := make([]uuid.UUID, 0, n)
	users := make([]int, 0, n)
	totals := make([]int, 0, n)
	corrects := make([]int, 0, n)
	percents := make([]int, 0, n)
	training := make([]bool, 0, n)
	breakdowns := make([]string, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		qID, err := parseQuizID(res.QuizID)
		if err != nil {
			return fmt.Errorf("result for quiz %q: %w", res.QuizID, err)
		}
		raw, err := json.Marshal(res.Breakdown)
		if err != nil {
			return fmt.Errorf("encode breakdown: %w", err)
		}
		quizIDs = append(quizIDs, qID)
		users = append(users, res.UserID)
		totals = append(totals, res.Total)
		corrects = append(corrects, res.Correct)
		percents = append(percents, res.Percent)
		training = append(training, res.TrainingOnly)
		breakdowns = append(breakdowns, string(raw))
		submittedAts = append(submittedAts, res.SubmittedAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_results (quiz_id, user_id, total, correct, percent, training_only, breakdown, submitted_at)
		SELECT u.quiz_id, u.user_id, u.total, u.correct, u.percent, u.training_only, u.breakdown::jsonb, u.submitted_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::bool[],
			$7::text[],
			$8::timestamptz[]
		) AS u (quiz_id, user_id, total, correct, percent, training_only, breakdown, submitted_at)
	`, quizIDs, users, totals, corrects, percents, training, breakdowns, submittedAts)
	return err
}

// ListByQuiz returns a page of results for one quiz, newest first.
func (r *QuizResultRepository) ListByQuiz(ctx context.Context, quizID string, limit, offset int) ([]model.QuizResult, int, error) {
	qID, err := parseQuizID(quizID)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_results WHERE quiz_id = $1`, qID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, total, correct, percent, training_only, breakdown, submitted_at
		 FROM quiz_results WHERE quiz_id = $1
		 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`, qID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		res := model.QuizResult{QuizID: quizID}
		var breakdown []byte
		if err := rows.Scan(&res.ID, &res.UserID, &res.Total, &res.Correct, &res.Percent,
			&res.TrainingOnly, &breakdown, &res.SubmittedAt); err != nil {
			return nil, 0, err
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &res.Breakdown); err != nil {
				return nil, 0, fmt.Errorf("decode result %d breakdown: %w", res.ID, err)
			}
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
