package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

// CarDocumentRepository implements repository.CarDocumentRepository using
// PostgreSQL. Document lists are stored as JSONB.
type CarDocumentRepository struct {
	db Querier
}

// NewCarDocumentRepository creates a new CarDocumentRepository.
func NewCarDocumentRepository(db *sql.DB) *CarDocumentRepository {
	return &CarDocumentRepository{db: db}
}

// Create persists a new document bundle.
func (r *CarDocumentRepository) Create(ctx context.Context, doc *domain.CarDocument) error {
	cols, err := encodeDocumentColumns(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO car_documents (id, user_id, driving_license, rc, insurance, aadhaar, pollution_paper, car_photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	args := append([]any{doc.ID, doc.UserID}, cols...)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByUserID retrieves the bundle owned by userID.
func (r *CarDocumentRepository) GetByUserID(ctx context.Context, userID string) (*domain.CarDocument, error) {
	query := `
		SELECT id, user_id, driving_license, rc, insurance, aadhaar, pollution_paper, car_photo, created_at, updated_at
		FROM car_documents WHERE user_id = $1
	`
	var (
		doc                                         domain.CarDocument
		license, rc, insurance, aadhaar, puc, photo []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&doc.ID, &doc.UserID, &license, &rc, &insurance, &aadhaar, &puc, &photo,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, c := range []struct {
		raw []byte
		dst any
	}{
		{license, &doc.DrivingLicense},
		{rc, &doc.RC},
		{insurance, &doc.Insurance},
		{aadhaar, &doc.Aadhaar},
		{puc, &doc.PollutionPaper},
		{photo, &doc.CarPhoto},
	} {
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Update overwrites every document list of the user's bundle.
func (r *CarDocumentRepository) Update(ctx context.Context, doc *domain.CarDocument) error {
	cols, err := encodeDocumentColumns(doc)
	if err != nil {
		return err
	}

	query := `
		UPDATE car_documents
		SET driving_license = $1, rc = $2, insurance = $3, aadhaar = $4, pollution_paper = $5,
			car_photo = $6, updated_at = NOW()
		WHERE user_id = $7
		RETURNING updated_at
	`
	args := append(cols, doc.UserID)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// DeleteByUserID removes the bundle owned by userID.
func (r *CarDocumentRepository) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM car_documents WHERE user_id = $1`, userID)
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

// encodeDocumentColumns marshals the document lists in column order. Nil
// slices are stored as empty arrays.
func encodeDocumentColumns(doc *domain.CarDocument) ([]any, error) {
	values := []any{
		nonNil(doc.DrivingLicense),
		nonNil(doc.RC),
		nonNil(doc.Insurance),
		nonNil(doc.Aadhaar),
		nonNil(doc.PollutionPaper),
		nonNil(doc.CarPhoto),
	}

	cols := make([]any, 0, len(values))
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		cols = append(cols, string(raw))
	}
	return cols, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ repository.CarDocumentRepository = (*CarDocumentRepository)(nil)
