package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"contactbook/internal/auth/hash"
	"contactbook/internal/auth/token"
	"contactbook/internal/config"
	"contactbook/internal/domain/dto"
	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/repo"
)

// Mailer delivers account mail. Callers hand off a notification and move on;
// delivery failures are logged by the dispatcher, never returned upstream.
type Mailer interface {
	SendVerification(email, username, baseURL, verifyToken string) error
	SendPasswordReset(email, tempPassword string) error
}

type Auth interface {
	Register(ctx context.Context, d dto.RegisterDTO) (model.User, error)
	Login(ctx context.Context, d dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, d dto.RefreshDTO) (model.TokenPair, error)
	Authenticate(ctx context.Context, bearer string) (model.User, error)
	AuthorizeAdmin(user model.User) (model.User, error)
	IssueEmailVerificationToken(email string) (string, error)
	VerifyEmailToken(raw string) (string, error)
	ConfirmEmail(ctx context.Context, raw string) error
	RequestVerification(ctx context.Context, d dto.RequestEmailDTO) error
	ForgetPassword(ctx context.Context, d dto.RequestEmailDTO) error
}

type authService struct {
	users  repo.UserRepo
	cache  repo.SessionCache
	codec  *token.Codec
	hasher *hash.Hasher
	mailer Mailer
	cfg    *config.Config
	v      *validator.Validate
	log    *zap.Logger
}

func NewAuth(
	users repo.UserRepo,
	cache repo.SessionCache,
	codec *token.Codec,
	hasher *hash.Hasher,
	mailer Mailer,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Auth {
	return &authService{
		users: users, cache: cache, codec: codec, hasher: hasher,
		mailer: mailer, cfg: cfg, v: v, log: log,
	}
}

func (a *authService) Register(ctx context.Context, d dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(d); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	if _, err := a.users.GetByEmail(ctx, d.Email); err == nil {
		return model.User{}, customErrors.NewAlreadyExists("user with this email already exists")
	} else if !customErrors.IsNotFound(err) {
		return model.User{}, err
	}
	if _, err := a.users.GetByUsername(ctx, d.Username); err == nil {
		return model.User{}, customErrors.NewAlreadyExists("user with this username already exists")
	} else if !customErrors.IsNotFound(err) {
		return model.User{}, err
	}

	hashed, err := a.hasher.Hash(d.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.users.Create(ctx, model.User{
		Email:          d.Email,
		Username:       d.Username,
		HashedPassword: hashed,
		Role:           model.RoleUser,
	})
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, err
	}

	a.dispatchVerification(user.Email, user.Username)
	return user, nil
}

func (a *authService) Login(ctx context.Context, d dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(d); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.users.GetByUsername(ctx, d.Username)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	case err != nil:
		return model.TokenPair{}, err
	}

	if !a.hasher.Verify(d.Password, user.HashedPassword) {
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	}
	if !user.Confirmed {
		return model.TokenPair{}, customErrors.ErrNotConfirmed
	}

	access, err := a.codec.Issue(user.Username, token.KindAccess, a.cfg.AccessTokenTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := a.codec.Issue(user.Username, token.KindRefresh, a.cfg.RefreshTokenTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	// Installing the new refresh token supersedes any previous one.
	if _, err := a.users.SetRefreshToken(ctx, user.Email, refresh); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid current refresh token for a fresh pair. The
// presented token must match the stored one byte for byte, and the rotation
// is a conditional store update, so a superseded token always fails even
// under concurrent refresh calls.
func (a *authService) Refresh(ctx context.Context, d dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(d); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.codec.Decode(d.RefreshToken)
	if err != nil || claims.Subject == "" {
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	}
	if claims.TokenType != token.KindRefresh {
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	}

	user, err := a.users.GetByUsername(ctx, claims.Subject)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	case err != nil:
		return model.TokenPair{}, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != d.RefreshToken {
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	}

	access, err := a.codec.Issue(user.Username, token.KindAccess, a.cfg.AccessTokenTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := a.codec.Issue(user.Username, token.KindRefresh, a.cfg.RefreshTokenTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	err = a.users.RotateRefreshToken(ctx, user.Username, d.RefreshToken, refresh)
	switch {
	case customErrors.IsNotFound(err):
		// Lost the race: someone rotated or re-logged-in first.
		return model.TokenPair{}, customErrors.ErrUnauthenticated
	case err != nil:
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate resolves a bearer token to an identity, consulting the
// session cache before the user store and filling it on a miss.
func (a *authService) Authenticate(ctx context.Context, bearer string) (model.User, error) {
	claims, err := a.codec.Decode(bearer)
	if err != nil || claims.Subject == "" {
		return model.User{}, customErrors.ErrUnauthenticated
	}

	cached, ok, err := a.cache.Get(ctx, claims.Subject)
	if err != nil {
		return model.User{}, err
	}
	if ok {
		return cached, nil
	}

	user, err := a.users.GetByUsername(ctx, claims.Subject)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrUnauthenticated
	case err != nil:
		return model.User{}, err
	}

	if err := a.cache.Put(ctx, user.Username, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// AuthorizeAdmin is a pure role gate; token validity is the caller's concern.
func (a *authService) AuthorizeAdmin(user model.User) (model.User, error) {
	if user.Role != model.RoleAdmin {
		return model.User{}, customErrors.ErrForbidden
	}
	return user, nil
}

func (a *authService) IssueEmailVerificationToken(email string) (string, error) {
	return a.codec.Issue(email, token.KindEmailVerify, a.cfg.EmailTokenTTL)
}

func (a *authService) VerifyEmailToken(raw string) (string, error) {
	claims, err := a.codec.Decode(raw)
	if err != nil {
		return "", customErrors.ErrInvalidToken
	}
	if claims.TokenType != token.KindEmailVerify || claims.Subject == "" {
		return "", customErrors.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (a *authService) ConfirmEmail(ctx context.Context, raw string) error {
	email, err := a.VerifyEmailToken(raw)
	if err != nil {
		return err
	}

	user, err := a.users.GetByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		return customErrors.NewInvalidArgument("verification error")
	case err != nil:
		return err
	}
	if user.Confirmed {
		return customErrors.NewInvalidArgument("email is already confirmed")
	}

	return a.users.SetConfirmed(ctx, email)
}

// RequestVerification re-sends the confirmation mail. An unknown address is
// not an error: the endpoint answers identically either way so it cannot be
// used to probe which emails are registered.
func (a *authService) RequestVerification(ctx context.Context, d dto.RequestEmailDTO) error {
	if err := a.v.Struct(d); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.users.GetByEmail(ctx, d.Email)
	switch {
	case customErrors.IsNotFound(err):
		return nil
	case err != nil:
		return err
	}
	if user.Confirmed {
		return customErrors.NewInvalidArgument("email is already confirmed")
	}

	a.dispatchVerification(user.Email, user.Username)
	return nil
}

// ForgetPassword installs a temporary password and mails it. Unknown
// addresses get the same uniform answer as known ones.
func (a *authService) ForgetPassword(ctx context.Context, d dto.RequestEmailDTO) error {
	if err := a.v.Struct(d); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.users.GetByEmail(ctx, d.Email)
	switch {
	case customErrors.IsNotFound(err):
		return nil
	case err != nil:
		return err
	}
	if !user.Confirmed {
		return customErrors.ErrNotConfirmed
	}

	temp, err := generateTempPassword()
	if err != nil {
		return customErrors.WrapInternal(err, "generate temp password")
	}
	hashed, err := a.hasher.Hash(temp)
	if err != nil {
		return err
	}
	if err := a.users.SetHashedPassword(ctx, user.Email, hashed); err != nil {
		return err
	}

	go func() {
		if err := a.mailer.SendPasswordReset(user.Email, temp); err != nil {
			a.log.Warn("password reset mail failed",
				zap.String("email", user.Email), zap.Error(err))
		}
	}()
	return nil
}

func (a *authService) dispatchVerification(email, username string) {
	verifyToken, err := a.IssueEmailVerificationToken(email)
	if err != nil {
		a.log.Warn("could not issue verification token",
			zap.String("email", email), zap.Error(err))
		return
	}
	go func() {
		if err := a.mailer.SendVerification(email, username, a.cfg.BaseURL, verifyToken); err != nil {
			a.log.Warn("verification mail failed",
				zap.String("email", email), zap.Error(err))
		}
	}()
}
