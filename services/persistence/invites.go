package persistence

import (
	"fmt"

	models "Mesa/models/postgres"

	"gorm.io/gorm"
)

type GormInviteService struct {
	db *gorm.DB
}

func NewGormInviteService(db *gorm.DB) *GormInviteService {
	return &GormInviteService{db: db}
}

func (s *GormInviteService) Create(invite *models.GameInvite) error {
	if err := s.db.Create(invite).Error; err != nil {
		return fmt.Errorf("error creating invite: %w", err)
	}
	return nil
}

func (s *GormInviteService) FindByID(id uint) (*models.GameInvite, error) {
	var invite models.GameInvite
	if err := s.db.First(&invite, id).Error; err != nil {
		return nil, fmt.Errorf("error fetching invite %d: %w", id, err)
	}
	return &invite, nil
}

func (s *GormInviteService) FindOpenByInvitee(username string) ([]*models.GameInvite, error) {
	var invites []*models.GameInvite
	err := s.db.
		Where("invited_username = ? AND is_accepted = false AND is_declined = false", username).
		Find(&invites).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching invites for %s: %w", username, err)
	}
	return invites, nil
}

// Close flips the invite to its terminal state. The WHERE clause is the
// at-most-once guard: a row that already left the open state matches
// nothing and the call reports ErrInviteClosed.
func (s *GormInviteService) Close(id uint, accepted bool) error {
	column := "is_declined"
	if accepted {
		column = "is_accepted"
	}
	result := s.db.Model(&models.GameInvite{}).
		Where("id = ? AND is_accepted = false AND is_declined = false", id).
		Update(column, true)
	if result.Error != nil {
		return fmt.Errorf("error closing invite %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInviteClosed
	}
	return nil
}

func (s *GormInviteService) CloseAllForGame(gameID uint) error {
	err := s.db.Model(&models.GameInvite{}).
		Where("game_id = ? AND is_accepted = false AND is_declined = false", gameID).
		Update("is_declined", true).Error
	if err != nil {
		return fmt.Errorf("error closing invites for game %d: %w", gameID, err)
	}
	return nil
}
