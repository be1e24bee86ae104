package service

import "errors"

// Error kinds. Every error returned by a service unwraps to one of these, or
// is an unexpected internal failure.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream failure")
)

// kindError carries a client-facing message and unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Trip errors.
var (
	ErrVendorRequired        = newError(ErrUnauthorized, "unauthorized: vendor id is required")
	ErrDriverRequired        = newError(ErrUnauthorized, "unauthorized: driver id is required")
	ErrInvalidTripID         = newError(ErrValidation, "invalid trip id")
	ErrMissingFields         = newError(ErrValidation, "all fields are required")
	ErrInvalidDuration       = newError(ErrValidation, "duration must be greater than zero")
	ErrInvalidFare           = newError(ErrValidation, "fare must be greater than zero")
	ErrInvalidCommission     = newError(ErrValidation, "commission must be greater than zero")
	ErrInvalidDurationUnit   = newError(ErrValidation, "duration unit must be hours or days")
	ErrInvalidTripType       = newError(ErrValidation, "invalid trip type")
	ErrInvalidCarType        = newError(ErrValidation, "invalid car type")
	ErrInvalidPickupDate     = newError(ErrValidation, "invalid pickup date")
	ErrInvalidPickupTime     = newError(ErrValidation, "invalid pickup time")
	ErrInvalidTripStatus     = newError(ErrValidation, "invalid trip status")
	ErrInvalidPaymentID      = newError(ErrValidation, "payment id is required")
	ErrInvalidVerifyCode     = newError(ErrValidation, "invalid verification code")
	ErrTripNotFound          = newError(ErrNotFound, "trip not found")
	ErrNotTripDriver         = newError(ErrUnauthorized, "you are not authorized to complete this trip")
	ErrNotTripVendor         = newError(ErrUnauthorized, "you are not authorized to cancel this trip")
	ErrTripNotAvailable      = newError(ErrInvalidState, "trip is not available for acceptance")
	ErrTripNotAccepted       = newError(ErrInvalidState, "trip is not in accepted state")
	ErrTripCannotBeCancelled = newError(ErrInvalidState, "trip cannot be cancelled")
	ErrTripAlreadyAccepted   = newError(ErrInvalidState, "trip cannot be cancelled, driver has accepted the trip")
)

// Identity errors.
var (
	ErrInvalidUserID         = newError(ErrValidation, "user id is required")
	ErrMobileRequired        = newError(ErrValidation, "mobile number is required")
	ErrVerifyCodeRequired    = newError(ErrValidation, "verification code is required")
	ErrVerifyCodeExpired     = newError(ErrValidation, "verification code expired")
	ErrInvalidCredentials    = newError(ErrValidation, "invalid credentials")
	ErrRegistrationFields    = newError(ErrValidation, "full name, role and password are required")
	ErrPasswordTooShort      = newError(ErrValidation, "password must be at least 8 characters")
	ErrInvalidRole           = newError(ErrValidation, "invalid role")
	ErrEmailTaken            = newError(ErrConflict, "email already in use")
	ErrMobileTaken           = newError(ErrConflict, "mobile number already in use")
	ErrUserNotFound          = newError(ErrNotFound, "user not found")
	ErrUserNotVerified       = newError(ErrForbidden, "user is not verified")
	ErrOTPThrottled          = newError(ErrRateLimited, "verification code already sent, try again shortly")
	ErrVerificationSendFails = newError(ErrUpstream, "failed to send verification code")
)

// Review errors.
var (
	ErrInvalidRating      = newError(ErrValidation, "rating must be between 1 and 5")
	ErrCommentRequired    = newError(ErrValidation, "comment is required")
	ErrCommentTooLong     = newError(ErrValidation, "comment must be at most 500 characters")
	ErrReviewExists       = newError(ErrConflict, "you have already reviewed this user")
	ErrReviewNotFound     = newError(ErrNotFound, "review not found")
	ErrNotReviewAuthor    = newError(ErrUnauthorized, "you are not authorized to modify this review")
	ErrReviewerIDRequired = newError(ErrUnauthorized, "unauthorized: reviewer id is required")
)

// Car document and blob errors.
var (
	ErrDocumentExists      = newError(ErrConflict, "car documents already exist for this user")
	ErrDocumentNotFound    = newError(ErrNotFound, "car documents not found")
	ErrImageRequired       = newError(ErrValidation, "base64 image and container name are required")
	ErrInvalidImage        = newError(ErrValidation, "invalid base64 image")
	ErrBlobURLRequired     = newError(ErrValidation, "blob url is required")
	ErrInvalidBlobURL      = newError(ErrValidation, "invalid blob url")
	ErrBlobNotFound        = newError(ErrNotFound, "blob not found")
	ErrBlobStorageDisabled = newError(ErrUpstream, "blob storage is not configured")
	ErrBlobUploadFailed    = newError(ErrUpstream, "failed to upload image")
)
