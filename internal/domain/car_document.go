package domain

import "time"

// FileRef points at one uploaded file.
type FileRef struct {
	URL string `json:"url"`
}

// PhotoSet groups several photos of the same car.
type PhotoSet struct {
	URL []string `json:"url"`
}

// CarDocument is the KYC bundle of a user. A user has at most one.
type CarDocument struct {
	ID             string
	UserID         string
	DrivingLicense []string
	RC             []FileRef
	Insurance      []FileRef
	Aadhaar        []string
	PollutionPaper []FileRef
	CarPhoto       []PhotoSet
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
