package dto

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"contactbook/internal/domain/model"
)

const BirthdayLayout = "2006-01-02"

type RegisterDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpwd"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RequestEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordUpdateDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpwd"`
}

type ContactDTO struct {
	FirstName   string `json:"first_name"  validate:"required,max=50"`
	LastName    string `json:"last_name"   validate:"required,max=50"`
	Email       string `json:"email"       validate:"required,email,max=50"`
	Phone       string `json:"phone"       validate:"required,max=50"`
	Birthday    string `json:"birthday"    validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=150"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar,omitempty"`
	Role      model.Role `json:"role"`
	Confirmed bool       `json:"confirmed"`
}

type ContactResponse struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Birthday    string `json:"birthday"`
	Description string `json:"description,omitempty"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		Confirmed: u.Confirmed,
	}
}

func NewTokenResponse(pair model.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

func NewContactResponse(c model.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Birthday:    c.Birthday.Format(BirthdayLayout),
		Description: c.Description,
	}
}

func NewContactResponses(contacts []model.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, NewContactResponse(c))
	}
	return out
}

func ParseBirthday(s string) (time.Time, error) {
	return time.Parse(BirthdayLayout, s)
}

// NewValidator builds the validator used across services, with the strongpwd
// rule: at least 8 runes, one upper, one digit.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		var hasUpper, hasDigit bool
		for _, r := range pwd {
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		return utf8.RuneCountInString(pwd) >= 8 && hasUpper && hasDigit
	})
	return v
}
