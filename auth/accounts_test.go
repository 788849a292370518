package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/internal/testdb"
	"github.com/ayushmanmishra18/storefront-api/models"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: map[string]string{}}
}

func (m *captureMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes[to] = code
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAccounts(t *testing.T) (*Accounts, *captureMailer, *fakeClock) {
	t.Helper()
	db := testdb.Open(t)
	mailer := newCaptureMailer()
	clock := &fakeClock{t: time.Now()}
	accounts := NewAccounts(db, NewIssuer("secret", time.Hour), NewDBOTPStore(db), mailer, WithClock(clock.Now))
	return accounts, mailer, clock
}

func wrongCode(code string) string {
	if code == "111111" {
		return "222222"
	}
	return "111111"
}

func TestAccounts_RegisterAndVerify(t *testing.T) {
	accounts, mailer, _ := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))
	code := mailer.code("a@x.com")
	require.Len(t, code, 6)

	_, err := accounts.Login(ctx, "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrNotVerified)

	session, err := accounts.VerifyOTP(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "A", session.Principal.Name)
	assert.True(t, session.Principal.IsVerified)

	claims, err := accounts.Issuer().Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Principal.ID, claims.ID)
	assert.Equal(t, RoleUser, claims.Type)

	// the code is single use
	_, err = accounts.VerifyOTP(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	session, err = accounts.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.False(t, session.Principal.IsAdmin())
}

func TestAccounts_VerifyWrongOTP(t *testing.T) {
	accounts, mailer, _ := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))

	_, err := accounts.VerifyOTP(ctx, "a@x.com", wrongCode(mailer.code("a@x.com")))
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestAccounts_VerifyExpiredOTP(t *testing.T) {
	accounts, mailer, clock := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))
	clock.Advance(15 * time.Minute)

	_, err := accounts.VerifyOTP(ctx, "a@x.com", mailer.code("a@x.com"))
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestAccounts_VerifyUnknownUser(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)

	_, err := accounts.VerifyOTP(context.Background(), "ghost@x.com", "123456")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAccounts_RedisOTPStore(t *testing.T) {
	_, client := setupTestRedis(t)
	db := testdb.Open(t)
	mailer := newCaptureMailer()
	accounts := NewAccounts(db, NewIssuer("secret", time.Hour), NewRedisOTPStore(client), mailer)
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))
	_, err := accounts.VerifyOTP(ctx, "a@x.com", mailer.code("a@x.com"))
	require.NoError(t, err)

	n, err := client.Exists(ctx, otpKey("a@x.com")).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAccounts_RedisOTPExpired(t *testing.T) {
	mr, client := setupTestRedis(t)
	db := testdb.Open(t)
	mailer := newCaptureMailer()
	clock := &fakeClock{t: time.Now()}
	accounts := NewAccounts(db, NewIssuer("secret", time.Hour), NewRedisOTPStore(client), mailer, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))
	clock.Advance(16 * time.Minute)
	mr.FastForward(16 * time.Minute)

	_, err := accounts.VerifyOTP(ctx, "a@x.com", mailer.code("a@x.com"))
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestAccounts_EmailUniqueAcrossStores(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"))
	_, err := accounts.RegisterAdmin(ctx, "A", "A@x.com", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = accounts.RegisterAdmin(ctx, "B", "b@x.com", "pw")
	require.NoError(t, err)
	err = accounts.RegisterUser(ctx, "B", "b@x.com", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestAccounts_RegisterRequiresFields(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)

	err := accounts.RegisterUser(context.Background(), " ", "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrMissingAccountData)
}

func TestAccounts_RejectsMalformedEmail(t *testing.T) {
	accounts, mailer, _ := newTestAccounts(t)
	ctx := context.Background()

	for _, email := range []string{"notanemail", "a@", "@x.com"} {
		err := accounts.RegisterUser(ctx, "A", email, "pw")
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
		assert.Empty(t, mailer.code(email))
	}

	_, err := accounts.RegisterAdmin(ctx, "B", "nope", "pw")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAccounts_MailFailureKeepsUser(t *testing.T) {
	accounts, mailer, _ := newTestAccounts(t)
	mailer.err = errors.New("smtp down")
	ctx := context.Background()

	err := accounts.RegisterUser(ctx, "A", "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrOTPDelivery)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))

	_, err = models.FindUserByEmail(accounts.db, "a@x.com")
	assert.NoError(t, err)

	mailer.err = nil
	assert.ErrorIs(t, accounts.RegisterUser(ctx, "A", "a@x.com", "pw"), ErrEmailTaken)
}

func TestAccounts_AdminLogin(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	created, err := accounts.RegisterAdmin(ctx, "Root", "root@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, created.Principal.IsAdmin())

	session, err := accounts.Login(ctx, "root@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, session.Principal.IsAdmin())

	_, err = accounts.Login(ctx, "root@x.com", "nope")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = accounts.Login(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAccounts_UpdatePassword(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	session, err := accounts.RegisterAdmin(ctx, "Root", "root@x.com", "old")
	require.NoError(t, err)

	err = accounts.UpdatePassword(ctx, session.Principal, "wrong", "new")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, accounts.UpdatePassword(ctx, session.Principal, "old", "new"))

	_, err = accounts.Login(ctx, "root@x.com", "old")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = accounts.Login(ctx, "root@x.com", "new")
	assert.NoError(t, err)
}
