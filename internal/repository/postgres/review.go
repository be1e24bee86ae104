package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db Querier
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create persists a review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, reviewer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		review.ID, review.UserID, review.ReviewerID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a review by ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT id, user_id, reviewer_id, rating, comment, created_at, updated_at
		FROM reviews WHERE id = $1
	`
	var review domain.Review
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID, &review.UserID, &review.ReviewerID, &review.Rating,
		&review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByUser returns reviews about userID, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReviewWithReviewer, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.reviewer_id, rv.rating, rv.comment, rv.created_at, rv.updated_at,
			u.id, u.full_name, u.avatar
		FROM reviews rv
		LEFT JOIN users u ON u.id = rv.reviewer_id
		WHERE rv.user_id = $1
		ORDER BY rv.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.ReviewWithReviewer, 0)
	for rows.Next() {
		var (
			review              domain.Review
			revID, name, avatar sql.NullString
		)
		if err := rows.Scan(
			&review.ID, &review.UserID, &review.ReviewerID, &review.Rating,
			&review.Comment, &review.CreatedAt, &review.UpdatedAt,
			&revID, &name, &avatar,
		); err != nil {
			return nil, err
		}

		item := &domain.ReviewWithReviewer{Review: &review}
		if revID.Valid {
			item.Reviewer = &domain.VendorSummary{ID: revID.String, FullName: name.String, Avatar: avatar.String}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// Update stores the rating and comment of an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
