package persistence

import (
	"fmt"

	models "Mesa/models/postgres"

	"gorm.io/gorm"
)

type GormUserService struct {
	db *gorm.DB
}

func NewGormUserService(db *gorm.DB) *GormUserService {
	return &GormUserService{db: db}
}

func (s *GormUserService) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("profile_username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("error fetching user %s: %w", username, err)
	}
	return &user, nil
}

func (s *GormUserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("error fetching user by email: %w", err)
	}
	return &user, nil
}

func (s *GormUserService) FindManyByUsername(usernames []string) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.Where("profile_username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error fetching users: %w", err)
	}
	return users, nil
}

func (s *GormUserService) Update(username string, fields map[string]interface{}) error {
	result := s.db.Model(&models.User{}).
		Where("profile_username = ?", username).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("error updating user %s: %w", username, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", username, gorm.ErrRecordNotFound)
	}
	return nil
}
