package persistence

import (
	"fmt"

	models "Mesa/models/postgres"

	"gorm.io/gorm"
)

type GormLogService struct {
	db *gorm.DB
}

func NewGormLogService(db *gorm.DB) *GormLogService {
	return &GormLogService{db: db}
}

func (s *GormLogService) Create(entry *models.GameLog) (*models.GameLog, error) {
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("error appending log entry: %w", err)
	}
	return entry, nil
}
