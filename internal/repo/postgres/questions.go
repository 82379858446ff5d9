package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/question"
	"github.com/soladu1/Q-A-By-SOL/internal/observability"
)

type QuestionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewQuestionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *QuestionsRepo {
	return &QuestionsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *QuestionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *QuestionsRepo) Create(ctx context.Context, req question.PostQuestionRequest, userID string) (question.Question, error) {
	q := question.NewFromPostRequest(req, userID)

	err := r.observe("questions.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO questions (questionid, userid, title, description, tag, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, q.UserID, q.Title, q.Description, q.Tag, q.CreatedAt,
		)
		return execErr
	})

	if err != nil {
		return question.Question{}, err
	}

	return q, nil
}

// List returns every question, most recent first. The product has no
// pagination; the id tiebreak keeps ordering stable within a timestamp.
func (r *QuestionsRepo) List(ctx context.Context) ([]question.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT questionid, userid, title, description, tag, created_at
		FROM questions
		ORDER BY created_at DESC, questionid DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]question.Question, 0)

	for rows.Next() {
		var q question.Question

		err = rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &q.Tag, &q.CreatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, q)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}
