package postgres

import (
	"context"
	"errors"
	"fmt"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, task_id, reviewer_id, reviewee_id, rating, comment, created_at`

// ReviewRepo implements ports.ReviewRepository.
type ReviewRepo struct {
	pool Pool
}

func NewReviewRepo(pool Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Create inserts a review. The (task_id, reviewer_id) unique index turns a
// racing duplicate into ports.ErrDuplicate.
func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		rv.ID, rv.TaskID, rv.ReviewerID, rv.RevieweeID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert review", err)
	}
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return rv, nil
}

func (r *ReviewRepo) Exists(ctx context.Context, taskID, reviewerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE task_id = $1 AND reviewer_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, taskID, reviewerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return exists, nil
}

// Delete removes a review and reports whether it existed.
func (r *ReviewRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReviewRepo) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// SummaryFor returns the mean rating and review count; both are zero without reviews.
func (r *ReviewRepo) SummaryFor(ctx context.Context, revieweeID uuid.UUID) (domain.RatingSummary, error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE reviewee_id = $1`

	var s domain.RatingSummary
	if err := r.pool.QueryRow(ctx, query, revieweeID).Scan(&s.Average, &s.Count); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize ratings: %w", err)
	}
	return s, nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	rv := &domain.Review{}
	if err := row.Scan(&rv.ID, &rv.TaskID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return nil, err
	}
	return rv, nil
}
