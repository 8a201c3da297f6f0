package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/profile-service/config"
	"github.com/example/profile-service/internal/adapters/mailer"
	natsadapter "github.com/example/profile-service/internal/adapters/nats"
	repo "github.com/example/profile-service/internal/adapters/postgres"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/domain"
	pkglog "github.com/example/profile-service/pkg/log"
)

type AuthService interface {
	Register(ctx context.Context, traceID string, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, traceID, identifier, password string) (*domain.User, string, error)
	VerifyOTP(ctx context.Context, traceID, identifier, code string) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	cfg    *config.Config
	logger pkglog.Logger
	users  repo.UserRepository
	mailer mailer.Client
	events natsadapter.EventClient
	signer JWTSigner
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users repo.UserRepository, mail mailer.Client, events natsadapter.EventClient, signer JWTSigner) AuthService {
	return &authService{cfg: cfg, logger: logger, users: users, mailer: mail, events: events, signer: signer}
}

func (s *authService) Register(ctx context.Context, traceID string, input RegisterInput) (*domain.User, string, error) {
	norm := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if err := validateEmail(norm); err != nil {
		return nil, "", apperr.Wrap(apperr.BadRequest, "invalid email", err)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, "", apperr.Wrap(apperr.BadRequest, "password too short", err)
	}
	if strings.TrimSpace(input.Name) == "" || username == "" {
		return nil, "", apperr.New(apperr.BadRequest, "name and username are required")
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, "", apperr.New(apperr.Conflict, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if _, err := s.users.FindByEmail(ctx, norm); err == nil {
		return nil, "", apperr.New(apperr.Conflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        norm,
		PasswordHash: string(hash),
		OtpCode:      generateOTP(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	if s.mailer != nil {
		if _, err := s.mailer.SendOTP(ctx, user.Email, user.OtpCode); err != nil {
			s.logger.Warn().Str("trace_id", traceID).Str("user_id", user.ID).Err(err).Msg("otp delivery failed")
		}
	}
	if s.events != nil {
		if err := s.events.UserRegistered(ctx, user.ID, user.Username, user.Email); err != nil {
			s.logger.Warn().Str("trace_id", traceID).Str("user_id", user.ID).Err(err).Msg("user.registered notify failed")
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, traceID, identifier, password string) (*domain.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("signin")
	return user, token, nil
}

func (s *authService) VerifyOTP(ctx context.Context, traceID, identifier, code string) error {
	user, err := s.users.FindByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if user.OtpCode == "" || user.OtpCode != code {
		return apperr.New(apperr.BadRequest, "invalid or expired code")
	}
	user.OtpCode = ""
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("otp verified")
	return nil
}

func (s *authService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	claims := map[string]interface{}{"username": user.Username}
	return s.signer.SignAccessToken(user.ID, claims, s.cfg.AccessTTL)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validateEmail(email string) error {
	if !strings.Contains(email, "@") || len(email) > 255 {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password too short")
	}
	return nil
}

// generateOTP returns a six digit one-time code.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
