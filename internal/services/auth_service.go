package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/metrics"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrIdentifierTaken      = errors.New("email or phone already registered")
	ErrInvalidCredentials   = errors.New("invalid identifier or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrNameRequired         = errors.New("name is required")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrInvalidResetToken    = errors.New("reset token is invalid or has expired")
)

const (
	emailKindWelcome       = "welcome"
	emailKindPasswordReset = "password_reset"
)

// AuthSettings configures account emails.
type AuthSettings struct {
	FrontendURL string
	ResetTTL    time.Duration
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	sender   mailer.Sender
	settings AuthSettings
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sender mailer.Sender, settings AuthSettings, log zerolog.Logger) *AuthService {
	if settings.ResetTTL <= 0 {
		settings.ResetTTL = constants.PasswordResetTTL
	}
	return &AuthService{
		userRepo: userRepo,
		sender:   sender,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name       string
	Identifier string
	Password   string
}

// Register creates a new user identified by an email or a phone number.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	id, err := identity.Parse(input.Identifier)
	if err != nil {
		return nil, err
	}

	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByIdentifier(ctx, id); err == nil {
		return nil, ErrIdentifierTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check identifier: %w", err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         models.PlatformRoleUser,
	}
	value := id.String()
	switch id.Kind() {
	case identity.KindEmail:
		user.Email = &value
	case identity.KindPhone:
		user.Phone = &value
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrIdentifierExists) {
			return nil, ErrIdentifierTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if email := user.EmailAddress(); email != "" {
		s.sendAccountEmail(ctx, emailKindWelcome, user.ID, mailer.BuildWelcome(mailer.WelcomeEmail{
			To:          email,
			Name:        user.Name,
			FrontendURL: s.settings.FrontendURL,
		}))
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	id, err := identity.Parse(input.Identifier)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !identity.Matches(id, user.Email, user.Phone) {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// RequestPasswordReset emails a reset link to the account registered with email.
// An unknown address is not an error and sends nothing.
func (s *AuthService) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	email, err := identity.ParseEmail(rawEmail)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByIdentifier(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.settings.ResetTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.sendAccountEmail(ctx, emailKindPasswordReset, user.ID, mailer.BuildPasswordReset(s.settings.FrontendURL, mailer.PasswordResetEmail{
		To:        string(email),
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	}))
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset token.
// The token is consumed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if token == "" {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, token, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func (s *AuthService) sendAccountEmail(ctx context.Context, kind string, userID uint64, msg mailer.Message) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.EmailSendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, msg); err != nil {
		metrics.EmailDelivery(kind, metrics.ResultFailure)
		s.log.Warn().Err(err).
			Str("kind", kind).
			Uint64("user_id", userID).
			Msg("failed to send account email")
		return
	}
	metrics.EmailDelivery(kind, metrics.ResultSuccess)
}
