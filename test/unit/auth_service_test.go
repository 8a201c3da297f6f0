package unit

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/profile-service/config"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/usecase"
	pkglog "github.com/example/profile-service/pkg/log"
)

type mockMailer struct {
	sent []struct {
		email string
		code  string
	}
	err error
}

func (m *mockMailer) SendOTP(_ context.Context, email, code string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, struct {
		email string
		code  string
	}{email: email, code: code})
	return "delivery-1", nil
}

type recordingEvents struct {
	registered   []string
	transactions []string
}

func (r *recordingEvents) UserRegistered(_ context.Context, userID, _, _ string) error {
	r.registered = append(r.registered, userID)
	return nil
}

func (r *recordingEvents) TransactionRecorded(_ context.Context, txID, _ string, _ float64) error {
	r.transactions = append(r.transactions, txID)
	return nil
}

type authDeps struct {
	users  *mockUserRepo
	mail   *mockMailer
	events *recordingEvents
	signer usecase.JWTSigner
	cfg    *config.Config
}

func newAuthService(t *testing.T) (usecase.AuthService, *authDeps) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "profile-service",
		JWTAudience: "webapp",
		AccessTTL:   time.Hour,
	}
	signer, err := usecase.NewJWTSigner(cfg)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	users := newMockUserRepo()
	mail := &mockMailer{}
	events := &recordingEvents{}
	svc := usecase.NewAuthService(cfg, pkglog.New("test"), users, mail, events, signer)
	return svc, &authDeps{users: users, mail: mail, events: events, signer: signer, cfg: cfg}
}

func TestRegisterCreatesUserAndToken(t *testing.T) {
	svc, deps := newAuthService(t)
	user, token, err := svc.Register(context.Background(), "trace", usecase.RegisterInput{
		Name:     "Manish",
		Username: "manish",
		Email:    "Manish@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "manish@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if token == "" {
		t.Fatalf("token missing")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")) != nil {
		t.Fatalf("password not hashed")
	}
	if len(user.OtpCode) != 6 {
		t.Fatalf("otp not generated: %q", user.OtpCode)
	}
	if len(deps.mail.sent) != 1 || deps.mail.sent[0].code != user.OtpCode {
		t.Fatalf("otp not mailed: %+v", deps.mail.sent)
	}
	if len(deps.events.registered) != 1 || deps.events.registered[0] != user.ID {
		t.Fatalf("user.registered not published: %+v", deps.events.registered)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService(t)
	input := usecase.RegisterInput{Name: "A", Username: "taken", Email: "a@example.com", Password: "password123"}
	if _, _, err := svc.Register(context.Background(), "trace", input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	input.Email = "other@example.com"
	_, _, err := svc.Register(context.Background(), "trace", input)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	input := usecase.RegisterInput{Name: "A", Username: "first", Email: "dup@example.com", Password: "password123"}
	if _, _, err := svc.Register(context.Background(), "trace", input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	input.Username = "second"
	_, _, err := svc.Register(context.Background(), "trace", input)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRegisterSurvivesMailerFailure(t *testing.T) {
	svc, deps := newAuthService(t)
	deps.mail.err = context.DeadlineExceeded
	_, token, err := svc.Register(context.Background(), "trace", usecase.RegisterInput{
		Name: "A", Username: "a", Email: "a@example.com", Password: "password123",
	})
	if err != nil || token == "" {
		t.Fatalf("mailer failure must not fail registration: %v", err)
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, _, err := svc.Register(context.Background(), "trace", usecase.RegisterInput{
		Name: "Manish", Username: "manish", Email: "manish@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, token, err := svc.Login(context.Background(), "trace", "manish", "password123"); err != nil || token == "" {
		t.Fatalf("login by username: %v", err)
	}
	if _, token, err := svc.Login(context.Background(), "trace", "manish@example.com", "password123"); err != nil || token == "" {
		t.Fatalf("login by email: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "trace", "manish", "wrongpass"); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated on bad password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "trace", "ghost", "password123"); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated on unknown identifier, got %v", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	svc, deps := newAuthService(t)
	user, _, err := svc.Register(context.Background(), "trace", usecase.RegisterInput{
		Name: "Manish", Username: "manish", Email: "manish@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.VerifyOTP(context.Background(), "trace", "manish", "000001"); apperr.KindOf(err) != apperr.BadRequest {
		t.Fatalf("wrong code should be BadRequest, got %v", err)
	}
	if err := svc.VerifyOTP(context.Background(), "trace", "manish", user.OtpCode); err != nil {
		t.Fatalf("verify: %v", err)
	}
	stored := deps.users.users[user.ID]
	if stored.OtpCode != "" {
		t.Fatalf("otp not cleared")
	}
	if err := svc.VerifyOTP(context.Background(), "trace", "manish", user.OtpCode); apperr.KindOf(err) != apperr.BadRequest {
		t.Fatalf("reuse should be BadRequest, got %v", err)
	}
}

func TestTokenCarriesSubjectAndUsername(t *testing.T) {
	svc, deps := newAuthService(t)
	user, token, err := svc.Register(context.Background(), "trace", usecase.RegisterInput{
		Name: "Manish", Username: "manish", Email: "manish@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, claims, err := deps.signer.Parse(token)
	if err != nil || !tok.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims["sub"] != user.ID || claims["username"] != "manish" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
