package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

const userColumns = `id, avatar, full_name, email, password_hash, mobile_number, role,
		is_verified, is_document_verified, verify_code, verify_code_expiry, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, avatar, full_name, email, password_hash, mobile_number, role,
			is_verified, is_document_verified, verify_code, verify_code_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Avatar,
		user.FullName,
		nullString(user.Email),
		user.PasswordHash,
		user.MobileNumber,
		user.Role,
		user.IsVerified,
		user.IsDocumentVerified,
		user.VerifyCode,
		nullTime(user.VerifyCodeExpiry),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByMobile retrieves a user by mobile number.
func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile_number = $1`
	return r.getOne(ctx, query, mobile)
}

// Update overwrites the mutable fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET avatar = $1, full_name = $2, email = $3, password_hash = $4, mobile_number = $5,
			role = $6, is_verified = $7, is_document_verified = $8, verify_code = $9,
			verify_code_expiry = $10, updated_at = NOW()
		WHERE id = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Avatar,
		user.FullName,
		nullString(user.Email),
		user.PasswordHash,
		user.MobileNumber,
		user.Role,
		user.IsVerified,
		user.IsDocumentVerified,
		user.VerifyCode,
		nullTime(user.VerifyCodeExpiry),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
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

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var (
		user   domain.User
		email  sql.NullString
		expiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Avatar,
		&user.FullName,
		&email,
		&user.PasswordHash,
		&user.MobileNumber,
		&user.Role,
		&user.IsVerified,
		&user.IsDocumentVerified,
		&user.VerifyCode,
		&expiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	if expiry.Valid {
		user.VerifyCodeExpiry = expiry.Time
	}
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
