package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
	"github.com/yndnr/tokgate/pkg/token"
)

// Operation names reported to the AuthRecorder.
const (
	OpSignIn       = "sign_in"
	OpSignUp       = "sign_up"
	OpRefreshToken = "refresh_token"
	OpCheckLogin   = "check_login"
)

// Outcomes reported to the AuthRecorder.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// TokenCodec issues and verifies session tokens. *token.Codec satisfies it.
type TokenCodec interface {
	Issue(id, username string) (string, error)
	Verify(tok string) (*token.Claims, error)
}

// AuthRecorder receives one call per finished auth operation.
type AuthRecorder interface {
	RecordAuth(operation, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}

// AuthService implements sign-in, sign-up, token refresh and session checks.
//
// It is safe for concurrent use. All shared state lives in the injected
// UserRepository and SessionRegistry.
type AuthService struct {
	users    UserRepository
	sessions SessionRegistry
	codec    TokenCodec
	verifier PasswordVerifier
	recorder AuthRecorder
	logger   logger.Logger

	decoyOnce sync.Once
	decoy     string
}

// decoyPassword is hashed once and compared against when the username is
// unknown, so a miss costs the same verifier work as a wrong password.
const decoyPassword = "tokgate-decoy-password"

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithPasswordVerifier sets how passwords are stored and compared.
// Defaults to PlainVerifier.
func WithPasswordVerifier(v PasswordVerifier) AuthOption {
	return func(s *AuthService) {
		s.verifier = v
	}
}

// WithRecorder sets the operation recorder.
func WithRecorder(r AuthRecorder) AuthOption {
	return func(s *AuthService) {
		s.recorder = r
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) AuthOption {
	return func(s *AuthService) {
		s.logger = l
	}
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, sessions SessionRegistry, codec TokenCodec, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
		verifier: PlainVerifier{},
		recorder: nopRecorder{},
		logger:   logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// decoyHash returns decoyPassword in the verifier's stored form.
func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.verifier.Hash(decoyPassword)
		if err != nil {
			s.logger.Warn("decoy hash unavailable", "error", err)
			h = decoyPassword
		}
		s.decoy = h
	})
	return s.decoy
}

func (s *AuthService) log(ctx context.Context, op string) logger.Logger {
	l := s.logger.WithContext(ctx).With("operation", op)
	if id := logger.RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}

// ============================================================================
// Sign In
// ============================================================================

// SignInRequest carries a sign-in attempt.
type SignInRequest struct {
	Method   string
	Username string
	Password string
}

// SignInResult is the outcome of a sign-in that passed authentication.
//
// Exactly one of Token and AppErr is set. AppErr reports an issuance failure
// that is delivered as a successful response.
type SignInResult struct {
	Token  string
	AppErr *domain.AppError
}

// SignIn authenticates a user and registers a fresh token as the user's only
// live token.
//
// Unknown users and wrong passwords fail identically with
// domain.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, req *SignInRequest) (*SignInResult, error) {
	log := s.log(ctx, OpSignIn)

	if req.Method != http.MethodPost {
		s.recorder.RecordAuth(OpSignIn, ResultRejected)
		return nil, domain.ErrMethodInvalid.WithDetails(req.Method)
	}

	if err := domain.ValidateCredentials(req.Username, req.Password); err != nil {
		log.Debug("sign-in rejected", "error", err)
		s.recorder.RecordAuth(OpSignIn, ResultRejected)
		return nil, err
	}

	user, err := s.users.Find(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.verifier.Compare(s.decoyHash(), req.Password)
			log.Warn("sign-in failed", "username", req.Username, "reason", "unknown user")
			s.recorder.RecordAuth(OpSignIn, ResultRejected)
			return nil, domain.ErrInvalidCredentials.WithDetails("unknown user")
		}
		log.Error("credential lookup failed", "username", req.Username, "error", err)
		s.recorder.RecordAuth(OpSignIn, ResultError)
		return nil, asStorageError(err)
	}

	if !s.verifier.Compare(user.Password, req.Password) {
		log.Warn("sign-in failed", "username", req.Username, "reason", "password mismatch")
		s.recorder.RecordAuth(OpSignIn, ResultRejected)
		return nil, domain.ErrInvalidCredentials.WithDetails("password mismatch")
	}

	tok, err := s.codec.Issue(user.ID, user.Username)
	if err != nil {
		log.Error("token issuance failed", "username", user.Username, "error", err)
		s.recorder.RecordAuth(OpSignIn, ResultError)
		return &SignInResult{AppErr: domain.ErrAppTokenIssue}, nil
	}

	s.sessions.Put(ctx, user.Username, tok)

	log.Info("signed in", "username", user.Username, "user_id", user.ID)
	s.recorder.RecordAuth(OpSignIn, ResultSuccess)

	return &SignInResult{Token: tok}, nil
}

// ============================================================================
// Sign Up
// ============================================================================

// SignUpRequest carries a registration attempt.
type SignUpRequest struct {
	Method   string
	Username string
	Password string
	Email    string
}

// SignUp registers a new user and returns the stored record, password
// included. No token is issued.
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*domain.User, error) {
	log := s.log(ctx, OpSignUp)

	if req.Method != http.MethodPost {
		s.recorder.RecordAuth(OpSignUp, ResultRejected)
		return nil, domain.ErrMethodInvalid.WithDetails(req.Method)
	}

	if err := domain.ValidateCredentials(req.Username, req.Password); err != nil {
		log.Debug("sign-up rejected", "error", err)
		s.recorder.RecordAuth(OpSignUp, ResultRejected)
		return nil, err
	}

	if err := domain.ValidateEmail(req.Email); err != nil {
		log.Debug("sign-up rejected", "error", err)
		s.recorder.RecordAuth(OpSignUp, ResultRejected)
		return nil, err
	}

	stored, err := s.verifier.Hash(req.Password)
	if err != nil {
		log.Error("password hashing failed", "username", req.Username, "error", err)
		s.recorder.RecordAuth(OpSignUp, ResultError)
		return nil, domain.ErrSignUpFailed.WithCause(err)
	}

	user, err := s.users.InsertIfAbsent(ctx, req.Username, stored, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			log.Info("sign-up rejected", "username", req.Username, "reason", "username taken")
			s.recorder.RecordAuth(OpSignUp, ResultRejected)
			return nil, err
		}
		log.Error("user insert failed", "username", req.Username, "error", err)
		s.recorder.RecordAuth(OpSignUp, ResultError)
		return nil, domain.ErrSignUpFailed.WithCause(err)
	}

	log.Info("signed up", "username", user.Username, "user_id", user.ID)
	s.recorder.RecordAuth(OpSignUp, ResultSuccess)

	return user, nil
}

// ============================================================================
// Refresh Token
// ============================================================================

// RefreshToken exchanges a valid token for a new one and makes the new one
// the live token for its user.
//
// Only signature and expiry are checked. A superseded but unexpired token is
// still accepted here, unlike in CheckLogin.
func (s *AuthService) RefreshToken(ctx context.Context, tok string) (string, error) {
	log := s.log(ctx, OpRefreshToken)

	if tok == "" {
		s.recorder.RecordAuth(OpRefreshToken, ResultRejected)
		return "", domain.ErrTokenMissing
	}

	claims, err := s.verify(tok)
	if err != nil {
		log.Info("refresh rejected", "error", err)
		s.recorder.RecordAuth(OpRefreshToken, ResultRejected)
		return "", err
	}

	fresh, err := s.codec.Issue(claims.ID, claims.Username)
	if err != nil {
		log.Error("token issuance failed", "username", claims.Username, "error", err)
		s.recorder.RecordAuth(OpRefreshToken, ResultError)
		return "", domain.ErrInternalServer.WithCause(err)
	}

	s.sessions.Put(ctx, claims.Username, fresh)

	log.Info("token refreshed", "username", claims.Username)
	s.recorder.RecordAuth(OpRefreshToken, ResultSuccess)

	return fresh, nil
}

// ============================================================================
// Check Login
// ============================================================================

// CheckLogin resolves tok to the public view of its user. tok must verify and
// must be the user's live token.
func (s *AuthService) CheckLogin(ctx context.Context, tok string) (*domain.User, error) {
	log := s.log(ctx, OpCheckLogin)

	if tok == "" {
		s.recorder.RecordAuth(OpCheckLogin, ResultRejected)
		return nil, domain.ErrTokenRequired
	}

	claims, err := s.verify(tok)
	if err != nil {
		log.Info("check rejected", "error", err)
		s.recorder.RecordAuth(OpCheckLogin, ResultRejected)
		return nil, err
	}

	if !s.sessions.Matches(ctx, claims.Username, tok) {
		log.Info("check rejected", "username", claims.Username, "reason", "not the live token")
		s.recorder.RecordAuth(OpCheckLogin, ResultRejected)
		return nil, domain.ErrTokenInvalid.WithDetails("superseded")
	}

	s.recorder.RecordAuth(OpCheckLogin, ResultSuccess)

	return (&domain.User{ID: claims.ID, Username: claims.Username}).Public(), nil
}

// verify maps codec failures onto token domain errors.
func (s *AuthService) verify(tok string) (*token.Claims, error) {
	claims, err := s.codec.Verify(tok)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, token.ErrExpired):
		return nil, domain.ErrTokenExpired.WithCause(err)
	default:
		return nil, domain.ErrTokenInvalid.WithCause(err)
	}
}

func asStorageError(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorage.WithCause(err)
}
