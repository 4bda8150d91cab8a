package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
	"recruitment_portal/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordRequired   = errors.New("password is required")
	ErrMissingField       = errors.New("required field is blank")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	SeedAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	rec      metrics.Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, rec metrics.Recorder) AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		rec:      rec,
	}
}

// NormalizeEmail is the form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. The role is always "user".
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	user, err := s.createUser(ctx, req, model.RoleUser)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			s.rec.RecordAuthEvent(metrics.EventRegisterConflict)
		}
		return nil, err
	}
	s.rec.RecordAuthEvent(metrics.EventRegister)
	return user, nil
}

// SeedAdmin inserts an administrator account. It is only reachable from
// operator tooling, never from an HTTP route.
func (s *authService) SeedAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	user, err := s.createUser(ctx, req, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Admin account seeded")
	return user, nil
}

func (s *authService) createUser(ctx context.Context, req model.RegisterRequest, role string) (*model.User, error) {
	email := NormalizeEmail(req.Email)
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.Phone)
	for _, f := range []struct{ name, value string }{
		{"firstName", firstName}, {"lastName", lastName}, {"phone", phone},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns a signed token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		// spend the same bcrypt work as a real comparison
		utils.CheckPasswordHash(password, s.placeholderHash())
		s.rec.RecordAuthEvent(metrics.EventLoginFailure)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.rec.RecordAuthEvent(metrics.EventLoginFailure)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.rec.RecordAuthEvent(metrics.EventLoginSuccess)
	return user, token, nil
}

// Me returns the profile of the authenticated user
func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPassword(uuid.New().String())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to prepare placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
