// path: internal/application/tokenlifecycle/lifecycle_test.go
package tokenlifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
)

type fakeSocialRepo struct {
	auths    map[uuid.UUID]*social.Auth
	dueScan  []*social.Auth
}

func (f *fakeSocialRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*social.Account, error) {
	return nil, social.ErrAccountNotFound
}
func (f *fakeSocialRepo) FindDefaultActiveAccount(ctx context.Context) (*social.Account, error) {
	return nil, social.ErrNoDefaultAccount
}
func (f *fakeSocialRepo) CreateAccount(ctx context.Context, a *social.Account) error { return nil }
func (f *fakeSocialRepo) UpdateAccount(ctx context.Context, a *social.Account) error { return nil }
func (f *fakeSocialRepo) FindAuthByAccountID(ctx context.Context, accountID uuid.UUID) (*social.Auth, error) {
	a, ok := f.auths[accountID]
	if !ok {
		return nil, social.ErrAuthNotFound
	}
	return a, nil
}
func (f *fakeSocialRepo) UpsertAuth(ctx context.Context, a *social.Auth) error {
	f.auths[a.AccountID()] = a
	return nil
}
func (f *fakeSocialRepo) FindAuthsNeedingRefresh(ctx context.Context) ([]*social.Auth, error) {
	return f.dueScan, nil
}

type fakeClient struct {
	refreshFn func(longToken string) (string, time.Time, error)
}

func (f *fakeClient) Refresh(ctx context.Context, longToken string) (string, time.Time, error) {
	return f.refreshFn(longToken)
}

type fakeCipher struct{}

func (fakeCipher) Decrypt(ciphertext string) (string, error) { return "plain-" + ciphertext, nil }
func (fakeCipher) Encrypt(plaintext string) (string, error)  { return "enc-" + plaintext, nil }

type fakeNotifier struct {
	sent string
}

func (f *fakeNotifier) SendText(ctx context.Context, userID, text string) error {
	f.sent = text
	return nil
}

type fakeEnqueuer struct {
	enqueued []RefreshPayload
}

func (f *fakeEnqueuer) EnqueueTokenRefresh(ctx context.Context, payload RefreshPayload) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...interface{}) {}
func (noopLogger) Info(msg string, fields ...interface{})  {}
func (noopLogger) Warn(msg string, fields ...interface{})  {}
func (noopLogger) Error(msg string, fields ...interface{}) {}

func TestScan_EnqueuesEveryDueAccount(t *testing.T) {
	accountID1, accountID2 := uuid.New(), uuid.New()
	auth1, err := social.NewAuth(accountID1, "ct1", time.Now().Add(2*24*time.Hour))
	require.NoError(t, err)
	auth2, err := social.NewAuth(accountID2, "ct2", time.Now().Add(3*24*time.Hour))
	require.NoError(t, err)

	repo := &fakeSocialRepo{auths: map[uuid.UUID]*social.Auth{}, dueScan: []*social.Auth{auth1, auth2}}
	enqueuer := &fakeEnqueuer{}
	lc := New(repo, &fakeClient{}, fakeCipher{}, &fakeNotifier{}, enqueuer, noopLogger{}, "admin-1")

	n, err := lc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, enqueuer.enqueued, 2)
}

func TestRefresh_SuccessReEncryptsAndUpdatesExpiry(t *testing.T) {
	accountID := uuid.New()
	auth, err := social.NewAuth(accountID, "ct-old", time.Now().Add(2*24*time.Hour))
	require.NoError(t, err)
	repo := &fakeSocialRepo{auths: map[uuid.UUID]*social.Auth{accountID: auth}}

	newExpiry := time.Now().Add(60 * 24 * time.Hour)
	client := &fakeClient{refreshFn: func(longToken string) (string, time.Time, error) {
		assert.Equal(t, "plain-ct-old", longToken)
		return "new-long-token", newExpiry, nil
	}}
	lc := New(repo, client, fakeCipher{}, &fakeNotifier{}, &fakeEnqueuer{}, noopLogger{}, "admin-1")

	require.NoError(t, lc.Refresh(context.Background(), RefreshPayload{AccountID: accountID}))
	updated := repo.auths[accountID]
	assert.Equal(t, "enc-new-long-token", updated.EncryptedToken())
	assert.Equal(t, social.AuthStatusOK, updated.Status())
	assert.WithinDuration(t, newExpiry, updated.ExpiresAt(), time.Second)
}

func TestRefresh_FailureEscalatesAndAlertsAdmin(t *testing.T) {
	accountID := uuid.New()
	auth, err := social.NewAuth(accountID, "ct-old", time.Now().Add(2*24*time.Hour))
	require.NoError(t, err)
	repo := &fakeSocialRepo{auths: map[uuid.UUID]*social.Auth{accountID: auth}}

	client := &fakeClient{refreshFn: func(longToken string) (string, time.Time, error) {
		return "", time.Time{}, errors.New("provider rejected refresh")
	}}
	notifier := &fakeNotifier{}
	lc := New(repo, client, fakeCipher{}, notifier, &fakeEnqueuer{}, noopLogger{}, "admin-1")

	require.NoError(t, lc.Refresh(context.Background(), RefreshPayload{AccountID: accountID}))
	assert.Equal(t, social.AuthStatusActionRequired, repo.auths[accountID].Status())
	assert.Contains(t, notifier.sent, accountID.String())
}
