package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/repository"
)

// CarDocumentInput is a full document bundle.
type CarDocumentInput struct {
	DrivingLicense []string
	RC             []domain.FileRef
	Insurance      []domain.FileRef
	Aadhaar        []string
	PollutionPaper []domain.FileRef
	CarPhoto       []domain.PhotoSet
}

func (in CarDocumentInput) toDocument(userID string) *domain.CarDocument {
	return &domain.CarDocument{
		ID:             uuid.NewString(),
		UserID:         userID,
		DrivingLicense: in.DrivingLicense,
		RC:             in.RC,
		Insurance:      in.Insurance,
		Aadhaar:        in.Aadhaar,
		PollutionPaper: in.PollutionPaper,
		CarPhoto:       in.CarPhoto,
	}
}

// CarDocumentPatch replaces only the lists that are set.
type CarDocumentPatch struct {
	DrivingLicense *[]string
	RC             *[]domain.FileRef
	Insurance      *[]domain.FileRef
	Aadhaar        *[]string
	PollutionPaper *[]domain.FileRef
	CarPhoto       *[]domain.PhotoSet
}

// CarDocumentService manages the KYC document bundle of each user.
type CarDocumentService struct {
	docRepo repository.CarDocumentRepository
	log     logger.ILogger
}

// NewCarDocumentService creates a new CarDocumentService.
func NewCarDocumentService(docRepo repository.CarDocumentRepository, log logger.ILogger) *CarDocumentService {
	return &CarDocumentService{docRepo: docRepo, log: log}
}

// Create stores the first bundle for userID.
func (s *CarDocumentService) Create(ctx context.Context, userID string, in CarDocumentInput) (*domain.CarDocument, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	doc := in.toDocument(userID)
	if err := s.docRepo.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDocumentExists
		}
		return nil, fmt.Errorf("create car documents: %w", err)
	}

	s.log.Info("car documents created", logger.String("user_id", userID))
	return doc, nil
}

// GetByUser returns the bundle of userID.
func (s *CarDocumentService) GetByUser(ctx context.Context, userID string) (*domain.CarDocument, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	doc, err := s.docRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get car documents: %w", err)
	}
	return doc, nil
}

// Update applies patch to the bundle of userID.
func (s *CarDocumentService) Update(ctx context.Context, userID string, patch CarDocumentPatch) (*domain.CarDocument, error) {
	doc, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.DrivingLicense != nil {
		doc.DrivingLicense = *patch.DrivingLicense
	}
	if patch.RC != nil {
		doc.RC = *patch.RC
	}
	if patch.Insurance != nil {
		doc.Insurance = *patch.Insurance
	}
	if patch.Aadhaar != nil {
		doc.Aadhaar = *patch.Aadhaar
	}
	if patch.PollutionPaper != nil {
		doc.PollutionPaper = *patch.PollutionPaper
	}
	if patch.CarPhoto != nil {
		doc.CarPhoto = *patch.CarPhoto
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("update car documents: %w", err)
	}
	return doc, nil
}

// Delete removes the bundle of userID.
func (s *CarDocumentService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	if err := s.docRepo.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("delete car documents: %w", err)
	}

	s.log.Info("car documents deleted", logger.String("user_id", userID))
	return nil
}
