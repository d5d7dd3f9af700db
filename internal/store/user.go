package store

import (
	"context"
	"errors"

	"github.com/mepla/Enchilada/internal/models"

	"gorm.io/gorm"
)

func (s *Store) GetUserByID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", uid).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByEmail finds a user by email address
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CountUsersByUDID counts users registered from a device.
func (s *Store) CountUsersByUDID(ctx context.Context, udid string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("udid = ?", udid).Count(&count).Error
	return count, err
}

// CreateUser creates a new user. A duplicate email yields ErrEmailConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		if err == nil {
			return ErrEmailConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(user).Error
	})
}

// UpdateUser updates an existing user
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// DeleteUser deletes a user by ID
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", uid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
