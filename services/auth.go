package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/sessionstore"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

const invalidCredentials = "Invalid credentials"

// GoogleVerifier xác minh Google ID token và trả về email đã xác thực.
type GoogleVerifier interface {
	VerifyEmail(ctx context.Context, idToken string) (string, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier trả về nil khi không cấu hình client id (tắt Google sign-in).
func NewGoogleVerifier(clientID string) GoogleVerifier {
	if clientID == "" {
		return nil
	}
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) VerifyEmail(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return "", err
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return "", errors.New("google account email is not verified")
	}
	return email, nil
}

type AuthService struct {
	*core
	sessions sessionstore.Store
	tokens   *utils.TokenManager
	google   GoogleVerifier
}

type LoginMeta struct {
	IP        string
	UserAgent string
}

type LoginResult struct {
	Token   string
	Session *sessionstore.Session
	User    *models.User
}

// Login kiểm tra email/mật khẩu và tạo phiên phía server.
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginMeta) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.metrics.LoginAttempt("password", false)
		return nil, ErrValidation("Email and password are required")
	}

	u, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.LoginAttempt("password", false)
		return nil, ErrUnauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(u.Password, password) || !u.IsActive {
		s.metrics.LoginAttempt("password", false)
		s.log.Info("login rejected", "email", email, "active", u.IsActive)
		return nil, ErrUnauthorized(invalidCredentials)
	}

	res, err := s.issue(ctx, u, meta)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt("password", true)
	return res, nil
}

// GoogleLogin chỉ cho phép đăng nhập với user đã tồn tại và đang hoạt động.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string, meta LoginMeta) (*LoginResult, error) {
	if s.google == nil {
		return nil, ErrNotFound("Google sign-in is not enabled")
	}
	if idToken == "" {
		return nil, ErrValidation("idToken is required")
	}

	email, err := s.google.VerifyEmail(ctx, idToken)
	if err != nil {
		s.metrics.LoginAttempt("google", false)
		s.log.Info("google token rejected", "error", err)
		return nil, ErrUnauthorized("Invalid Google token")
	}

	u, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.LoginAttempt("google", false)
		return nil, ErrUnauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		s.metrics.LoginAttempt("google", false)
		return nil, ErrUnauthorized(invalidCredentials)
	}

	res, err := s.issue(ctx, u, meta)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt("google", true)
	return res, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User, meta LoginMeta) (*LoginResult, error) {
	now := s.now()
	sess := &sessionstore.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Role:      string(u.Role),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save login session: %w", err)
	}

	token, err := s.tokens.Generate(u.ID, string(u.Role), sess.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("user logged in", "user_id", u.ID, "role", u.Role, "ip", meta.IP)
	return &LoginResult{Token: token, Session: sess, User: u}, nil
}

// Logout xoá phiên; token không hợp lệ coi như đã đăng xuất.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// Authenticate trả về user của token nếu phiên còn hiệu lực và user còn active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized("Unauthorized")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil || claims.ID == "" {
		return nil, ErrUnauthorized("Unauthorized")
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, ErrUnauthorized("Unauthorized")
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, ErrUnauthorized("Unauthorized")
	}

	u, err := s.repo.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized("Unauthorized")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUnauthorized("Unauthorized")
	}
	return u, nil
}
