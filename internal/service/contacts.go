package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"contactbook/internal/domain/dto"
	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/repo"
)

const (
	defaultContactLimit = 100
	birthdayWindowDays  = 7
)

type Contacts interface {
	List(ctx context.Context, owner model.User, f repo.ContactFilter) ([]model.Contact, error)
	UpcomingBirthdays(ctx context.Context, owner model.User) ([]model.Contact, error)
	Get(ctx context.Context, owner model.User, contactID uint) (model.Contact, error)
	Create(ctx context.Context, owner model.User, d dto.ContactDTO) (model.Contact, error)
	Update(ctx context.Context, owner model.User, contactID uint, d dto.ContactDTO) (model.Contact, error)
	Delete(ctx context.Context, owner model.User, contactID uint) (model.Contact, error)
}

type contactService struct {
	contacts repo.ContactRepo
	v        *validator.Validate
}

func NewContacts(contacts repo.ContactRepo, v *validator.Validate) Contacts {
	return &contactService{contacts: contacts, v: v}
}

func (s *contactService) List(ctx context.Context, owner model.User, f repo.ContactFilter) ([]model.Contact, error) {
	if f.Limit <= 0 || f.Limit > defaultContactLimit {
		f.Limit = defaultContactLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return s.contacts.List(ctx, owner.ID, f)
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, owner model.User) ([]model.Contact, error) {
	return s.contacts.UpcomingBirthdays(ctx, owner.ID, birthdayWindowDays)
}

func (s *contactService) Get(ctx context.Context, owner model.User, contactID uint) (model.Contact, error) {
	return s.contacts.GetByID(ctx, owner.ID, contactID)
}

func (s *contactService) Create(ctx context.Context, owner model.User, d dto.ContactDTO) (model.Contact, error) {
	contact, err := s.fromDTO(owner, d)
	if err != nil {
		return model.Contact{}, err
	}
	return s.contacts.Create(ctx, contact)
}

func (s *contactService) Update(ctx context.Context, owner model.User, contactID uint, d dto.ContactDTO) (model.Contact, error) {
	contact, err := s.fromDTO(owner, d)
	if err != nil {
		return model.Contact{}, err
	}
	contact.ID = contactID
	return s.contacts.Update(ctx, contact)
}

func (s *contactService) Delete(ctx context.Context, owner model.User, contactID uint) (model.Contact, error) {
	return s.contacts.Delete(ctx, owner.ID, contactID)
}

func (s *contactService) fromDTO(owner model.User, d dto.ContactDTO) (model.Contact, error) {
	if err := s.v.Struct(d); err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument(err.Error())
	}
	birthday, err := dto.ParseBirthday(d.Birthday)
	if err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument("birthday must be YYYY-MM-DD")
	}
	return model.Contact{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		Birthday:    birthday,
		Description: d.Description,
		UserID:      owner.ID,
	}, nil
}
