package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/repository"
)

const (
	otpLength         = 4
	otpValidity       = 3 * time.Minute
	otpResendInterval = 30 * time.Second
	minPasswordLength = 8
)

// ProfileCache caches public user profiles.
type ProfileCache interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SetUser(ctx context.Context, user *domain.User) error
	InvalidateUser(ctx context.Context, userID string) error
}

// OTPThrottle limits how often a code is sent to one mobile number.
type OTPThrottle interface {
	AcquireOTPLock(ctx context.Context, mobile string, ttl time.Duration) (bool, error)
	ReleaseOTPLock(ctx context.Context, mobile string) error
}

// VerificationSender delivers one-time codes.
type VerificationSender interface {
	SendVerificationCode(ctx context.Context, mobile, code string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// UserService handles onboarding, login and profiles.
type UserService struct {
	userRepo repository.UserRepository
	docRepo  repository.CarDocumentRepository
	cache    ProfileCache
	throttle OTPThrottle
	sender   VerificationSender
	tokens   TokenIssuer
	log      logger.ILogger

	now     func() time.Time
	newCode func() (string, error)
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	docRepo repository.CarDocumentRepository,
	cache ProfileCache,
	throttle OTPThrottle,
	sender VerificationSender,
	tokens TokenIssuer,
	log logger.ILogger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		docRepo:  docRepo,
		cache:    cache,
		throttle: throttle,
		sender:   sender,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
		newCode:  func() (string, error) { return generateCode(otpLength) },
	}
}

// OnboardingResult is the outcome of InitiateRegistration. Token is set when
// a verified user logged in, otherwise a code was sent.
type OnboardingResult struct {
	User    *domain.User
	Token   string
	Message string
}

// InitiateRegistration logs a verified user in with password, or sends a
// verification code to a new or unverified mobile number.
func (s *UserService) InitiateRegistration(ctx context.Context, mobile, password string) (*OnboardingResult, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, ErrMobileRequired
	}

	user, err := s.userRepo.GetByMobile(ctx, mobile)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get user by mobile: %w", err)
	}

	if user != nil && user.IsVerified {
		if !checkPassword(user.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		token, err := s.tokens.Issue(user.ID, string(user.Role))
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		return &OnboardingResult{User: user, Token: token, Message: "Login successful"}, nil
	}

	if err := s.acquireOTPLock(ctx, mobile); err != nil {
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	expiry := s.now().Add(otpValidity)

	if user != nil {
		user.VerifyCode = code
		user.VerifyCodeExpiry = expiry
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("store otp: %w", err)
		}
		if err := s.sender.SendVerificationCode(ctx, mobile, code); err != nil {
			s.releaseOTPLock(ctx, mobile)
			return nil, err
		}
		return &OnboardingResult{Message: "Verification code re-sent to existing unverified user."}, nil
	}

	if err := s.sender.SendVerificationCode(ctx, mobile, code); err != nil {
		s.releaseOTPLock(ctx, mobile)
		return nil, err
	}

	user = &domain.User{
		ID:               uuid.NewString(),
		MobileNumber:     mobile,
		VerifyCode:       code,
		VerifyCodeExpiry: expiry,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMobileTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user onboarding started", logger.String("user_id", user.ID))
	return &OnboardingResult{Message: "Verification code sent successfully."}, nil
}

func (s *UserService) acquireOTPLock(ctx context.Context, mobile string) error {
	if s.throttle == nil {
		return nil
	}
	ok, err := s.throttle.AcquireOTPLock(ctx, mobile, otpResendInterval)
	if err != nil {
		// Redis being down must not block onboarding.
		s.log.Warning("otp throttle unavailable", logger.Error(err))
		return nil
	}
	if !ok {
		return ErrOTPThrottled
	}
	return nil
}

// releaseOTPLock lets the caller retry straight away after a failed send.
func (s *UserService) releaseOTPLock(ctx context.Context, mobile string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.ReleaseOTPLock(ctx, mobile); err != nil {
		s.log.Warning("failed to release otp lock", logger.Error(err))
	}
}

// VerifyUser checks the code sent to mobile and marks the user verified.
func (s *UserService) VerifyUser(ctx context.Context, mobile, code string) (*domain.User, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, ErrMobileRequired
	}

	user, err := s.userRepo.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by mobile: %w", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrVerifyCodeRequired
	}
	if !user.VerifyCodeExpiry.IsZero() && user.VerifyCodeExpiry.Before(s.now()) {
		return nil, ErrVerifyCodeExpired
	}
	if user.VerifyCode == "" || user.VerifyCode != code {
		return nil, ErrInvalidVerifyCode
	}

	user.IsVerified = true
	user.VerifyCode = ""
	user.VerifyCodeExpiry = time.Time{}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("verify user: %w", err)
	}
	s.invalidate(ctx, user.ID)

	s.log.Info("user verified", logger.String("user_id", user.ID))
	return user, nil
}

// AuthRequest carries the fields of the combined registration/login call.
type AuthRequest struct {
	UserID    string
	FullName  string
	Email     string
	Password  string
	Role      string
	Documents *CarDocumentInput
}

// AuthResult is the outcome of Authenticate.
type AuthResult struct {
	User       *domain.User
	Token      string
	Registered bool
}

// Authenticate completes registration for a user without a password, or logs
// in a user that has one.
func (s *UserService) Authenticate(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.HasPassword() {
		return s.login(user, req.Password)
	}
	return s.register(ctx, user, req)
}

func (s *UserService) login(user *domain.User, password string) (*AuthResult, error) {
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) register(ctx context.Context, user *domain.User, req AuthRequest) (*AuthResult, error) {
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" || req.Role == "" || req.Password == "" {
		return nil, ErrRegistrationFields
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.FullName = fullName
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.PasswordHash = string(hash)
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.invalidate(ctx, user.ID)

	if req.Documents != nil {
		doc := req.Documents.toDocument(user.ID)
		if err := s.docRepo.Create(ctx, doc); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrDocumentExists
			}
			return nil, fmt.Errorf("create car documents: %w", err)
		}
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("user registered", logger.String("user_id", user.ID), logger.String("role", string(role)))
	return &AuthResult{User: user, Token: token, Registered: true}, nil
}

// GetProfile returns a user's profile, served from cache when possible.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, userID)
		if err != nil {
			s.log.Warning("profile cache read failed", logger.String("user_id", userID), logger.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			s.log.Warning("profile cache write failed", logger.String("user_id", userID), logger.Error(err))
		}
	}
	return user, nil
}

// UpdateProfileRequest holds the optional profile fields to change.
type UpdateProfileRequest struct {
	FullName     *string
	MobileNumber *string
	Avatar       *string
}

// UpdateProfile applies the set fields of req to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.MobileNumber != nil {
		mobile := strings.TrimSpace(*req.MobileNumber)
		if mobile == "" {
			return nil, ErrMobileRequired
		}
		owner, err := s.userRepo.GetByMobile(ctx, mobile)
		switch {
		case err == nil && owner.ID != userID:
			return nil, ErrMobileTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("get user by mobile: %w", err)
		}
		user.MobileNumber = mobile
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMobileTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.invalidate(ctx, userID)

	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warning("profile cache invalidation failed", logger.String("user_id", userID), logger.Error(err))
	}
}

func checkPassword(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
