package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	res := r.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByEmail")
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("username = ?", username).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByUsername")
	}
	return u, nil
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, email, token string) (model.User, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("refresh_token", token)
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "SetRefreshToken")
	}
	if res.RowsAffected == 0 {
		return model.User{}, customErrors.ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}

// RotateRefreshToken is a single conditional UPDATE, so two concurrent
// refresh calls cannot both win: the loser matches zero rows.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, username, old, next string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? AND refresh_token = ?", username, old).
		Update("refresh_token", next)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "RotateRefreshToken")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetHashedPassword(ctx context.Context, email, hashed string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("hashed_password", hashed)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "SetHashedPassword")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetConfirmed(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "SetConfirmed")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetAvatar(ctx context.Context, email, avatarURL string) (model.User, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("avatar", avatarURL)
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "SetAvatar")
	}
	if res.RowsAffected == 0 {
		return model.User{}, customErrors.ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}
