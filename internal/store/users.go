package store

import (
	"context"

	"gorm.io/gorm"

	"finance-tracker-go/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) Create(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

func (u *Users) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *Users) ByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *Users) ByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *Users) ByDeviceID(ctx context.Context, deviceID string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Where("device_id = ? AND is_guest = ?", deviceID, true).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *Users) Save(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Save(user).Error
}
