package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/internal/password"
	"github.com/v3ai2026/vision/internal/token"
)

type createdPair struct {
	cred    model.Credential
	profile model.Profile
}

// fakeStore is an in-memory CredentialStore. Both register inserts land in
// one call, mirroring the transactional contract of the real repository.
type fakeStore struct {
	creds     map[string]model.Credential
	created   []createdPair
	findErr   error
	existsErr error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{creds: map[string]model.Credential{}}
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (model.Credential, error) {
	if f.findErr != nil {
		return model.Credential{}, f.findErr
	}
	cred, ok := f.creds[email]
	if !ok {
		return model.Credential{}, model.ErrCredentialNotFound
	}
	return cred, nil
}

func (f *fakeStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.creds[email]
	return ok, nil
}

func (f *fakeStore) CreateWithProfile(_ context.Context, cred model.Credential, profile model.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.creds[cred.Email]; ok {
		return model.ErrAlreadyExists
	}
	f.creds[cred.Email] = cred
	f.created = append(f.created, createdPair{cred: cred, profile: profile})
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for email, cred := range f.creds {
		if cred.ID == id {
			delete(f.creds, email)
			return nil
		}
	}
	return model.ErrCredentialNotFound
}

func newTestService(t *testing.T, store CredentialStore) *AuthService {
	t.Helper()

	codec, err := token.NewCodec("test-secret", 168*time.Hour)
	require.NoError(t, err)
	return NewAuthService(store, password.NewHasher(4), codec)
}

func seedUser(t *testing.T, store *fakeStore, email string, plaintext string) model.Credential {
	t.Helper()

	hash, err := password.NewHasher(4).Hash(plaintext)
	require.NoError(t, err)
	cred := model.Credential{
		ID:           "11111111-2222-3333-4444-555555555555",
		Email:        email,
		PasswordHash: hash,
	}
	store.creds[email] = cred
	return cred
}

func TestLogin_Success(t *testing.T) {
	store := newFakeStore()
	cred := seedUser(t, store, "a@x.com", "secret123")
	svc := newTestService(t, store)

	resp, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(604800000), resp.ExpiresIn)
	assert.Equal(t, cred.ID, resp.UserID)
	assert.Equal(t, "a@x.com", resp.Username)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, claims.UserID)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.Login(context.Background(), "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailBurnsHashWork(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	// The filler hash must be a real bcrypt hash so the unknown-email
	// path costs a full comparison rather than an instant format error.
	require.NotEmpty(t, svc.fillerHash)
	hash, err := password.NewHasher(4).Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, svc.fillerHash)
	assert.False(t, svc.hasher.Verify("secret123", svc.fillerHash))

	_, err = svc.Login(context.Background(), "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "a@x.com", "secret123")
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_StoreFailureFoldsIntoInvalidCredentials(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("connection refused")
	svc := newTestService(t, store)

	// An unreachable store must answer exactly like a bad password.
	_, err := svc.Login(context.Background(), "a@x.com", "secret123")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestRegister_Success(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	resp, err := svc.Register(context.Background(), "a@x.com", "secret123", "A")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "a@x.com", resp.Username)
	assert.NotEmpty(t, resp.UserID)

	require.Len(t, store.created, 1)
	pair := store.created[0]
	assert.Equal(t, pair.cred.ID, pair.profile.ID)
	assert.Equal(t, "a@x.com", pair.profile.Email)
	assert.Equal(t, "A", pair.profile.FullName)
	assert.Equal(t, "free", pair.profile.SubscriptionTier)

	// The stored hash is salted, never the plaintext.
	assert.NotEqual(t, "secret123", pair.cred.PasswordHash)
	assert.True(t, password.NewHasher(4).Verify("secret123", pair.cred.PasswordHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "a@x.com", "secret123")
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@x.com", "other-password", "B")
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.Empty(t, store.created)
}

func TestRegister_ConcurrentDuplicateFromStore(t *testing.T) {
	store := newFakeStore()
	store.createErr = model.ErrAlreadyExists
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@x.com", "secret123", "A")
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestRegister_EmptyInput(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.Register(context.Background(), "", "secret123", "A")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.Register(context.Background(), "a@x.com", "", "A")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRefresh_IssuesNewTokenSameSubject(t *testing.T) {
	store := newFakeStore()
	cred := seedUser(t, store, "a@x.com", "secret123")
	svc := newTestService(t, store)

	first, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(first.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, cred.ID, refreshed.UserID)
	assert.Equal(t, "a@x.com", refreshed.Username)

	// An immediate refresh still yields a different token with a later
	// issue instant, even inside the same wall-clock second.
	assert.NotEqual(t, first.AccessToken, refreshed.AccessToken)

	firstClaims, err := svc.ValidateToken(first.AccessToken)
	require.NoError(t, err)
	refreshedClaims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, firstClaims.Subject, refreshedClaims.Subject)
	assert.NotEqual(t, firstClaims.ID, refreshedClaims.ID)
	assert.True(t, refreshedClaims.IssuedTime().After(firstClaims.IssuedTime()))
}

func TestRefresh_ChainProducesDistinctTokens(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "a@x.com", "secret123")
	svc := newTestService(t, store)

	resp, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	seen := map[string]bool{resp.AccessToken: true}
	for i := 0; i < 3; i++ {
		resp, err = svc.Refresh(resp.AccessToken)
		require.NoError(t, err)
		assert.False(t, seen[resp.AccessToken], "refresh %d repeated a token", i)
		seen[resp.AccessToken] = true
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Refresh(tokenString)
		assert.ErrorIs(t, err, model.ErrInvalidToken, "token %q", tokenString)
	}
}

func TestRefresh_TokenFromDifferentKey(t *testing.T) {
	otherCodec, err := token.NewCodec("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := otherCodec.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	svc := newTestService(t, newFakeStore())
	_, err = svc.Refresh(foreign)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}
