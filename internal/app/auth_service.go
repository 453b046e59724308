package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/logging"
	"foodgram/internal/model"
	"foodgram/internal/pkg/jwtutil"
	"foodgram/internal/repository"
)

// TokenRevoker keeps track of tokens invalidated by logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	userRepo      *repository.UserRepository
	revoker       TokenRevoker
	images        ImageStore
	jwtSecret     string
	jwtExpiration time.Duration
	bcryptCost    int
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func NewAuthService(userRepo *repository.UserRepository, revoker TokenRevoker, images ImageStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		revoker:       revoker,
		images:        images,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	verr := NewValidationError()
	if strings.EqualFold(username, "me") {
		verr.Add("username", `The username "me" is not allowed.`)
	}

	existingByName, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		verr.Add("username", "A user with that username already exists.")
	}

	existingByEmail, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		verr.Add("email", "A user with that email already exists.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, FieldError("non_field_errors", "A user with that email or username already exists.")
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login exchanges email and password for a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredential
	}

	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
}

// Authenticate validates a token and rejects revoked ones and tokens whose
// user no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation failed: %w", err)
	}
	if revoked {
		return nil, jwtutil.ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, jwtutil.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	return s.revoker.Revoke(ctx, claims.ID, claims.TTL())
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AuthService) SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.verifyPassword(ctx, userID, currentPassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, string(hash))
}

// DeleteAccount removes the user and everything they own once the password
// is confirmed.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint, currentPassword string) error {
	user, err := s.verifyPassword(ctx, userID, currentPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	if user.Avatar != "" {
		if err := s.images.DeleteImage(ctx, user.Avatar); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("delete avatar failed")
		}
	}
	logging.Ctx(ctx).Info().Msg("account deleted")
	return nil
}

func (s *AuthService) verifyPassword(ctx context.Context, userID uint, password string) (*model.User, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, FieldError("current_password", "Invalid password.")
	}
	return user, nil
}
