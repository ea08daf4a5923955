package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/usecase"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenIssuer
	notifier usecase.Notifier
	clock    clock.Clock
	origin   string
	logger   *zap.Logger
}

// New wires the auth flows. origin is the frontend base URL embedded in
// password-reset links; notifier may be nil, in which case reset emails
// are logged and dropped.
func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *TokenIssuer,
	notifier usecase.Notifier,
	clk clock.Clock,
	origin string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		notifier: notifier,
		clock:    clk,
		origin:   origin,
		logger:   logger,
	}
}

type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	SessionID string       `json:"session_id"`
	User      *domain.User `json:"user"`
}

func (uc *UseCase) Register(ctx context.Context, creds Credentials) (*domain.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := uc.users.GetByEmail(ctx, creds.Email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         creds.Name,
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    uc.clock.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *UseCase) Login(ctx context.Context, email, password string, ttl time.Duration) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}

	now := uc.clock.Now()
	token, err := uc.tokens.Access(user, now)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		// Login still works when redis is away; the session just
		// cannot be refreshed later.
		uc.logger.Warn("session not persisted", zap.Error(err))
	}

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		SessionID: session.ID,
		User:      user,
	}, nil
}

func (uc *UseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// ForgotPassword issues a short-lived reset token and emails a reset
// link. Unknown addresses return nil so the endpoint does not leak which
// emails exist.
func (uc *UseCase) ForgotPassword(ctx context.Context, email string) error {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		uc.logger.Info("password reset requested for unknown email")
		return nil
	}
	token, err := uc.tokens.Reset(user, uc.clock.Now())
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", uc.origin, token)
	body := fmt.Sprintf("Hi %s,<br><br>Use the link below to reset your password. It expires in 15 minutes.<br><br><a href=%q>Reset password</a>", user.Name, link)
	if uc.notifier == nil {
		uc.logger.Warn("no notifier configured, dropping reset email", zap.String("user_id", user.ID))
		return nil
	}
	if err := uc.notifier.Send(ctx, domain.ChannelEmail, user.Email, "Reset your password", body); err != nil {
		uc.logger.Error("reset email failed", zap.Error(err))
		return err
	}
	return nil
}

func (uc *UseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidPayload
	}
	email, err := uc.tokens.VerifyReset(token)
	if err != nil {
		return err
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.ErrUnauthorized
	}
	return uc.setPassword(ctx, user.ID, newPassword)
}

func (uc *UseCase) UpdatePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrUnauthorized
	}
	return uc.setPassword(ctx, userID, newPassword)
}

func (uc *UseCase) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, userID, string(hash))
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.clock.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.clock.Now().Add(ttl)
	return session, nil
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
