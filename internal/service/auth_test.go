package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contactbook/internal/auth/hash"
	"contactbook/internal/auth/token"
	"contactbook/internal/config"
	"contactbook/internal/domain/dto"
	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/service"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct {
	mu              sync.Mutex
	users           map[string]model.User // keyed by username
	usernameLookups int
	nextID          uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]model.User)}
}

func (s *userRepoStub) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return model.User{}, customErrors.ErrAlreadyExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.Username] = u
	return u, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernameLookups++
	u, ok := s.users[username]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return u, nil
}

func (s *userRepoStub) SetRefreshToken(_ context.Context, email, tok string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, u := range s.users {
		if u.Email == email {
			u.RefreshToken = &tok
			s.users[name] = u
			return u, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (s *userRepoStub) RotateRefreshToken(_ context.Context, username, old, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != old {
		return customErrors.ErrNotFound
	}
	u.RefreshToken = &next
	s.users[username] = u
	return nil
}

func (s *userRepoStub) SetHashedPassword(_ context.Context, email, hashed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, u := range s.users {
		if u.Email == email {
			u.HashedPassword = hashed
			s.users[name] = u
			return nil
		}
	}
	return customErrors.ErrNotFound
}

func (s *userRepoStub) SetConfirmed(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, u := range s.users {
		if u.Email == email {
			u.Confirmed = true
			s.users[name] = u
			return nil
		}
	}
	return customErrors.ErrNotFound
}

func (s *userRepoStub) SetAvatar(_ context.Context, email, url string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, u := range s.users {
		if u.Email == email {
			u.Avatar = url
			s.users[name] = u
			return u, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (s *userRepoStub) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usernameLookups
}

func (s *userRepoStub) confirm(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, s.SetConfirmed(context.Background(), email))
}

type cacheStub struct {
	mu      sync.Mutex
	entries map[string]model.User
	puts    int
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string]model.User)}
}

func (c *cacheStub) Get(_ context.Context, username string) (model.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[username]
	return u, ok, nil
}

func (c *cacheStub) Put(_ context.Context, username string, u model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[username] = u
	return nil
}

func (c *cacheStub) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

type mailerStub struct {
	mu    sync.Mutex
	sends int
}

func (m *mailerStub) SendVerification(_, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	return nil
}

func (m *mailerStub) SendPasswordReset(_, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	return nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

type fixture struct {
	svc    service.Auth
	users  *userRepoStub
	cache  *cacheStub
	hasher *hash.Hasher
	codec  *token.Codec
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newUserRepoStub()
	cache := newCacheStub()
	hasher := hash.New("pepper")
	codec := token.NewCodec([]byte("test-secret"))
	cfg := &config.Config{
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		EmailTokenTTL:   time.Hour,
		BaseURL:         "http://localhost:8080",
	}

	svc := service.NewAuth(users, cache, codec, hasher, &mailerStub{}, cfg, dto.NewValidator(), zap.NewNop())
	return &fixture{svc: svc, users: users, cache: cache, hasher: hasher, codec: codec, cfg: cfg}
}

func (f *fixture) register(t *testing.T, username, email, password string) model.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Email: email, Password: password, Username: username,
	})
	require.NoError(t, err)
	return user
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	require.Equal(t, model.RoleUser, user.Role)
	require.False(t, user.Confirmed)

	// Login is refused until the email is confirmed.
	_, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.ErrorIs(t, err, customErrors.ErrNotConfirmed)

	f.users.confirm(t, "bond@example.com")

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	stored, err := f.users.GetByUsername(ctx, "agent007")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, pair.RefreshToken, *stored.RefreshToken)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")

	_, err := f.svc.Register(ctx, dto.RegisterDTO{
		Email: "bond@example.com", Password: "Aa1aaaaa", Username: "other",
	})
	require.ErrorIs(t, err, customErrors.ErrAlreadyExists)

	_, err = f.svc.Register(ctx, dto.RegisterDTO{
		Email: "fresh@example.com", Password: "Aa1aaaaa", Username: "agent007",
	})
	require.ErrorIs(t, err, customErrors.ErrAlreadyExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Email: "bond@example.com", Password: "short", Username: "agent007",
	})
	require.ErrorIs(t, err, customErrors.ErrInvalidArgument)
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	f.users.confirm(t, "bond@example.com")

	_, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "wrongpass"})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)

	_, err = f.svc.Login(ctx, dto.LoginDTO{Username: "nobody", Password: "Aa1aaaaa"})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	f.users.confirm(t, "bond@example.com")

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The superseded token must be dead.
	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)

	// The rotated one keeps working.
	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: rotated.RefreshToken})
	require.NoError(t, err)
}

func TestRefreshAfterSecondLoginFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	f.users.confirm(t, "bond@example.com")

	first, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	// Second login supersedes the first refresh token.
	_, err = f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: first.RefreshToken})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	f.users.confirm(t, "bond@example.com")

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.AccessToken})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)
}

func TestRefreshGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: "garbage"})
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)
}

func TestAuthenticateFillsCacheOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	f.users.confirm(t, "bond@example.com")

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	before := f.users.lookups()

	got, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "agent007", got.Username)
	require.Equal(t, before+1, f.users.lookups(), "first resolve hits the store once")
	require.Equal(t, 1, f.cache.putCount(), "first resolve fills the cache")

	got, err = f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "agent007", got.Username)
	require.Equal(t, before+1, f.users.lookups(), "second resolve is served from cache")
	require.Equal(t, 1, f.cache.putCount())
}

func TestAuthenticateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)

	// Valid signature but unknown subject.
	orphan, err := f.codec.Issue("ghost", token.KindAccess, time.Minute)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, orphan)
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)

	// Expired token.
	expired, err := f.codec.Issue("agent007", token.KindAccess, -time.Second)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, expired)
	require.ErrorIs(t, err, customErrors.ErrUnauthenticated)
}

func TestAuthorizeAdmin(t *testing.T) {
	f := newFixture(t)

	admin := model.User{Username: "root", Role: model.RoleAdmin}
	got, err := f.svc.AuthorizeAdmin(admin)
	require.NoError(t, err)
	require.Equal(t, "root", got.Username)

	_, err = f.svc.AuthorizeAdmin(model.User{Username: "joe", Role: model.RoleUser})
	require.ErrorIs(t, err, customErrors.ErrForbidden)
}

func TestEmailVerificationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")

	raw, err := f.svc.IssueEmailVerificationToken("bond@example.com")
	require.NoError(t, err)

	email, err := f.svc.VerifyEmailToken(raw)
	require.NoError(t, err)
	require.Equal(t, "bond@example.com", email)

	require.NoError(t, f.svc.ConfirmEmail(ctx, raw))

	// Confirming twice is an error.
	err = f.svc.ConfirmEmail(ctx, raw)
	require.ErrorIs(t, err, customErrors.ErrInvalidArgument)

	// And login now works.
	_, err = f.svc.Login(ctx, dto.LoginDTO{Username: "agent007", Password: "Aa1aaaaa"})
	require.NoError(t, err)
}

func TestVerifyEmailTokenWrongKind(t *testing.T) {
	f := newFixture(t)

	access, err := f.codec.Issue("bond@example.com", token.KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = f.svc.VerifyEmailToken(access)
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)

	_, err = f.svc.VerifyEmailToken("garbage")
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)
}

func TestRequestVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unknown address is silently accepted.
	require.NoError(t, f.svc.RequestVerification(ctx, dto.RequestEmailDTO{Email: "ghost@example.com"}))

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")
	require.NoError(t, f.svc.RequestVerification(ctx, dto.RequestEmailDTO{Email: "bond@example.com"}))

	f.users.confirm(t, "bond@example.com")
	err := f.svc.RequestVerification(ctx, dto.RequestEmailDTO{Email: "bond@example.com"})
	require.ErrorIs(t, err, customErrors.ErrInvalidArgument)
}

func TestForgetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unknown address gets the same silent acceptance.
	require.NoError(t, f.svc.ForgetPassword(ctx, dto.RequestEmailDTO{Email: "ghost@example.com"}))

	f.register(t, "agent007", "bond@example.com", "Aa1aaaaa")

	err := f.svc.ForgetPassword(ctx, dto.RequestEmailDTO{Email: "bond@example.com"})
	require.ErrorIs(t, err, customErrors.ErrNotConfirmed)

	f.users.confirm(t, "bond@example.com")
	require.NoError(t, f.svc.ForgetPassword(ctx, dto.RequestEmailDTO{Email: "bond@example.com"}))

	// The old password no longer verifies against the stored hash.
	stored, err := f.users.GetByUsername(ctx, "agent007")
	require.NoError(t, err)
	require.False(t, f.hasher.Verify("Aa1aaaaa", stored.HashedPassword))
}
