package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
	"contactbook/internal/repo"
)

type ContactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) List(ctx context.Context, userID uint, f repo.ContactFilter) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Offset(f.Skip).
		Limit(f.Limit)

	if f.FirstName != "" {
		q = q.Where("first_name ILIKE ?", "%"+f.FirstName+"%")
	}
	if f.LastName != "" {
		q = q.Where("last_name ILIKE ?", "%"+f.LastName+"%")
	}
	if f.Email != "" {
		q = q.Where("email ILIKE ?", "%"+f.Email+"%")
	}

	var contacts []model.Contact
	if err := q.Order("id").Find(&contacts).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "List")
	}
	return contacts, nil
}

// UpcomingBirthdays matches on month and day so birthdays wrap correctly
// across year and month boundaries.
func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, userID uint, days int) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	today := time.Now()
	const onDay = "EXTRACT(MONTH FROM birthday) = ? AND EXTRACT(DAY FROM birthday) = ?"
	var dates *gorm.DB
	for i := 0; i < days; i++ {
		target := today.AddDate(0, 0, i)
		if dates == nil {
			dates = r.db.Session(&gorm.Session{NewDB: true}).
				Where(onDay, int(target.Month()), target.Day())
		} else {
			dates = dates.Or(onDay, int(target.Month()), target.Day())
		}
	}
	q = q.Where(dates)

	var contacts []model.Contact
	if err := q.Order("id").Find(&contacts).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "UpcomingBirthdays")
	}
	return contacts, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, userID, contactID uint) (model.Contact, error) {
	var c model.Contact
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Contact{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "GetByID")
	}
	return c, nil
}

func (r *ContactRepo) Create(ctx context.Context, contact model.Contact) (model.Contact, error) {
	if err := r.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Create")
	}
	return contact, nil
}

func (r *ContactRepo) Update(ctx context.Context, contact model.Contact) (model.Contact, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Updates(map[string]interface{}{
			"first_name":  contact.FirstName,
			"last_name":   contact.LastName,
			"email":       contact.Email,
			"phone":       contact.Phone,
			"birthday":    contact.Birthday,
			"description": contact.Description,
		})
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Update")
	}
	if res.RowsAffected == 0 {
		return model.Contact{}, customErrors.ErrNotFound
	}
	return r.GetByID(ctx, contact.UserID, contact.ID)
}

func (r *ContactRepo) Delete(ctx context.Context, userID, contactID uint) (model.Contact, error) {
	c, err := r.GetByID(ctx, userID, contactID)
	if err != nil {
		return model.Contact{}, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Contact{}, c.ID).Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Delete")
	}
	return c, nil
}
