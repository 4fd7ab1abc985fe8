package service

import (
	"context"
	"io"
	"path"

	"github.com/go-playground/validator/v10"

	"contactbook/internal/auth/hash"
	"contactbook/internal/domain/dto"
	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/repo"
)

// AvatarStore persists uploaded avatar images and returns a public URL.
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type Users interface {
	UpdateAvatar(ctx context.Context, user model.User, filename, contentType string, body io.Reader) (model.User, error)
	ChangePassword(ctx context.Context, user model.User, d dto.PasswordUpdateDTO) (model.User, error)
}

type userService struct {
	users   repo.UserRepo
	hasher  *hash.Hasher
	avatars AvatarStore
	v       *validator.Validate
}

func NewUsers(users repo.UserRepo, hasher *hash.Hasher, avatars AvatarStore, v *validator.Validate) Users {
	return &userService{users: users, hasher: hasher, avatars: avatars, v: v}
}

func (s *userService) UpdateAvatar(ctx context.Context, user model.User, filename, contentType string, body io.Reader) (model.User, error) {
	key := "avatars/" + user.Username + path.Ext(filename)

	url, err := s.avatars.Upload(ctx, key, contentType, body)
	if err != nil {
		return model.User{}, err
	}
	return s.users.SetAvatar(ctx, user.Email, url)
}

func (s *userService) ChangePassword(ctx context.Context, user model.User, d dto.PasswordUpdateDTO) (model.User, error) {
	if err := s.v.Struct(d); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	if !s.hasher.Verify(d.OldPassword, user.HashedPassword) {
		return model.User{}, customErrors.ErrUnauthenticated
	}

	hashed, err := s.hasher.Hash(d.NewPassword)
	if err != nil {
		return model.User{}, err
	}
	if err := s.users.SetHashedPassword(ctx, user.Email, hashed); err != nil {
		return model.User{}, err
	}

	return s.users.GetByUsername(ctx, user.Username)
}
