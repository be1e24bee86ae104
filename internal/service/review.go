package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/repository"
)

const maxCommentLength = 500

// ReviewService handles ratings left by one user about another.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	log        logger.ILogger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository, log logger.ILogger) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		log:        log,
	}
}

// CreateReviewRequest contains the parameters for reviewing a user.
type CreateReviewRequest struct {
	ReviewerID string
	UserID     string
	Rating     int
	Comment    string
}

// Create stores a review. A reviewer may review each user once.
func (s *ReviewService) Create(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if req.ReviewerID == "" {
		return nil, ErrReviewerIDRequired
	}
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	comment, err := validateReview(req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get reviewed user: %w", err)
	}

	review := &domain.Review{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		ReviewerID: req.ReviewerID,
		Rating:     req.Rating,
		Comment:    comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("review created",
		logger.String("review_id", review.ID),
		logger.String("user_id", review.UserID),
		logger.Int("rating", review.Rating),
	)
	return review, nil
}

// ListByUser returns the reviews about userID, newest first.
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]*domain.ReviewWithReviewer, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReviewRequest contains the new rating and comment of a review.
type UpdateReviewRequest struct {
	ReviewID   string
	ReviewerID string
	Rating     int
	Comment    string
}

// Update changes a review. Only its author may do so.
func (s *ReviewService) Update(ctx context.Context, req UpdateReviewRequest) (*domain.Review, error) {
	review, err := s.owned(ctx, req.ReviewID, req.ReviewerID)
	if err != nil {
		return nil, err
	}

	comment, err := validateReview(req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	review.Rating = req.Rating
	review.Comment = comment

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review. Only its author may do so.
func (s *ReviewService) Delete(ctx context.Context, reviewID, reviewerID string) error {
	if _, err := s.owned(ctx, reviewID, reviewerID); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("review deleted", logger.String("review_id", reviewID))
	return nil
}

func (s *ReviewService) owned(ctx context.Context, reviewID, reviewerID string) (*domain.Review, error) {
	if reviewerID == "" {
		return nil, ErrReviewerIDRequired
	}
	if reviewID == "" {
		return nil, ErrReviewNotFound
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review.ReviewerID != reviewerID {
		return nil, ErrNotReviewAuthor
	}
	return review, nil
}

func validateReview(rating int, comment string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", ErrCommentRequired
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return "", ErrCommentTooLong
	}
	return comment, nil
}
