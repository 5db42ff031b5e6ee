package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/v3ai2026/vision/internal/metrics"
	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/internal/password"
	"github.com/v3ai2026/vision/internal/token"
)

// CredentialStore is the persistence boundary the auth service orchestrates
// over. CreateWithProfile must be atomic: a credential row without its
// profile row (or the reverse) is a correctness violation.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateWithProfile(ctx context.Context, cred model.Credential, profile model.Profile) error
	Delete(ctx context.Context, id string) error
}

// AuthService orchestrates login, registration and token refresh. It holds
// no mutable state and is safe for concurrent use.
type AuthService struct {
	store      CredentialStore
	hasher     *password.Hasher
	codec      *token.Codec
	fillerHash string
}

func NewAuthService(store CredentialStore, hasher *password.Hasher, codec *token.Codec) *AuthService {
	// Hash of a throwaway value, compared against on unknown-email logins
	// so those take as long as a real password mismatch.
	filler, err := hasher.Hash(uuid.NewString())
	if err != nil {
		slog.Error("filler hash generation failed", "error", err)
	}
	return &AuthService{store: store, hasher: hasher, codec: codec, fillerHash: filler}
}

// Login verifies the credentials and issues a fresh token. Unknown emails,
// wrong passwords and store failures all come back as ErrInvalidCredentials
// so the response never confirms whether an account exists; store failures
// are logged and counted separately for operators.
func (s *AuthService) Login(ctx context.Context, username string, plaintext string) (model.TokenResponse, error) {
	cred, err := s.store.FindByEmail(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrCredentialNotFound) {
			slog.Error("credential lookup failed", "error", err)
			metrics.RecordStoreError("login")
		}
		// Burn the same bcrypt work as a real mismatch so response timing
		// does not reveal whether the account exists.
		s.hasher.Verify(plaintext, s.fillerHash)
		metrics.RecordAuthOperation("login", metrics.StatusInvalid)
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	if !s.hasher.Verify(plaintext, cred.PasswordHash) {
		metrics.RecordAuthOperation("login", metrics.StatusInvalid)
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	resp, err := s.issueToken(cred.ID, cred.Email)
	if err != nil {
		metrics.RecordAuthOperation("login", metrics.StatusError)
		return model.TokenResponse{}, err
	}

	metrics.RecordAuthOperation("login", metrics.StatusSuccess)
	return resp, nil
}

// Register creates a credential and its profile row atomically, then issues
// a token for the new account. Retrying after a transient failure can hit
// ErrAlreadyExists; callers should treat that as success-equivalent.
func (s *AuthService) Register(ctx context.Context, email string, plaintext string, fullName string) (model.TokenResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return model.TokenResponse{}, model.ErrInvalidInput
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		metrics.RecordStoreError("register")
		return model.TokenResponse{}, err
	}
	if exists {
		metrics.RecordAuthOperation("register", metrics.StatusAlreadyExists)
		return model.TokenResponse{}, model.ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return model.TokenResponse{}, err
	}

	now := time.Now().UTC()
	cred := model.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := model.Profile{
		ID:               cred.ID,
		Email:            email,
		FullName:         strings.TrimSpace(fullName),
		SubscriptionTier: "free",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateWithProfile(ctx, cred, profile); err != nil {
		// A concurrent registration with the same email surfaces here as a
		// unique violation; report it the same way as the pre-check.
		if errors.Is(err, model.ErrAlreadyExists) {
			metrics.RecordAuthOperation("register", metrics.StatusAlreadyExists)
			return model.TokenResponse{}, model.ErrAlreadyExists
		}
		metrics.RecordStoreError("register")
		return model.TokenResponse{}, err
	}

	resp, err := s.issueToken(cred.ID, cred.Email)
	if err != nil {
		metrics.RecordAuthOperation("register", metrics.StatusError)
		return model.TokenResponse{}, err
	}

	metrics.RecordAuthOperation("register", metrics.StatusSuccess)
	return resp, nil
}

// Refresh verifies the presented token and issues a brand-new one with a
// fresh expiry window. The old token stays valid until its own expiry;
// there is no revocation list.
func (s *AuthService) Refresh(tokenString string) (model.TokenResponse, error) {
	if _, err := s.codec.Verify(tokenString); err != nil {
		metrics.RecordAuthOperation("refresh", metrics.StatusInvalid)
		return model.TokenResponse{}, model.ErrInvalidToken
	}

	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		metrics.RecordAuthOperation("refresh", metrics.StatusInvalid)
		return model.TokenResponse{}, model.ErrInvalidToken
	}

	resp, err := s.issueToken(claims.UserID, claims.Username)
	if err != nil {
		metrics.RecordAuthOperation("refresh", metrics.StatusError)
		return model.TokenResponse{}, err
	}

	metrics.RecordAuthOperation("refresh", metrics.StatusSuccess)
	return resp, nil
}

// ValidateToken checks a bearer token and returns its claims. Used by the
// auth middleware on every protected request.
func (s *AuthService) ValidateToken(tokenString string) (*token.Claims, error) {
	return s.codec.Verify(tokenString)
}

func (s *AuthService) issueToken(userID string, username string) (model.TokenResponse, error) {
	signed, err := s.codec.Issue(userID, username)
	if err != nil {
		return model.TokenResponse{}, err
	}

	metrics.TokensIssued.Inc()
	return model.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   s.codec.TTL().Milliseconds(),
		UserID:      userID,
		Username:    username,
	}, nil
}
