package domain

import "time"

// Review is a rating left by one user about another.
type Review struct {
	ID         string
	UserID     string
	ReviewerID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReviewWithReviewer is a review joined with the reviewer's public profile.
type ReviewWithReviewer struct {
	Review   *Review
	Reviewer *VendorSummary
}
