package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"cabbook/internal/domain"
	"cabbook/internal/repository"
)

var reviewListColumns = []string{
	"id", "user_id", "reviewer_id", "rating", "comment", "created_at", "updated_at",
	"id", "full_name", "avatar",
}

func newMockReviewRepo(t *testing.T) (*ReviewRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReviewRepository(db), mock
}

func TestReviewRepository_Create(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs("rev-1", "driver-1", "vendor-1", 5, "on time").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	review := &domain.Review{ID: "rev-1", UserID: "driver-1", ReviewerID: "vendor-1", Rating: 5, Comment: "on time"}
	if err := repo.Create(context.Background(), review); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !review.CreatedAt.Equal(now) {
		t.Errorf("expected created_at to be scanned back, got %v", review.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewRepository_CreateDuplicateReviewer(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs("rev-2", "driver-1", "vendor-1", 4, "again").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.Review{ID: "rev-2", UserID: "driver-1", ReviewerID: "vendor-1", Rating: 4, Comment: "again"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestReviewRepository_CreateOtherErrorPassesThrough(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	dbErr := &pq.Error{Code: "23503", Message: "violates foreign key constraint"}
	mock.ExpectQuery(`INSERT INTO reviews`).WillReturnError(dbErr)

	err := repo.Create(context.Background(), &domain.Review{ID: "rev-3", UserID: "ghost", ReviewerID: "vendor-1", Rating: 3, Comment: "ok"})
	if errors.Is(err, repository.ErrConflict) || !errors.Is(err, dbErr) {
		t.Fatalf("expected the driver error, got %v", err)
	}
}

func TestReviewRepository_ListByUserJoinsReviewer(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN users u ON u.id = rv.reviewer_id`)).
		WithArgs("driver-1").
		WillReturnRows(sqlmock.NewRows(reviewListColumns).
			AddRow("rev-2", "driver-1", "vendor-1", 5, "great", now, now, "vendor-1", "Asha Travels", "avatar.png").
			AddRow("rev-1", "driver-1", "vendor-9", 2, "late", now.Add(-time.Hour), now.Add(-time.Hour), nil, nil, nil))

	items, err := repo.ListByUser(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(items))
	}
	if r := items[0].Reviewer; r == nil || r.FullName != "Asha Travels" || r.Avatar != "avatar.png" {
		t.Errorf("expected joined reviewer, got %+v", r)
	}
	if items[1].Reviewer != nil {
		t.Errorf("expected nil reviewer for deleted account, got %+v", items[1].Reviewer)
	}
	if items[1].Review.ReviewerID != "vendor-9" || items[1].Review.Rating != 2 {
		t.Errorf("unexpected review %+v", items[1].Review)
	}
}

func TestReviewRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	mock.ExpectQuery(`FROM reviews WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "reviewer_id", "rating", "comment", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewRepository_DeleteMissing(t *testing.T) {
	repo, mock := newMockReviewRepo(t)

	mock.ExpectExec(`DELETE FROM reviews WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
