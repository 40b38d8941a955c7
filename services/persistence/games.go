package persistence

import (
	"fmt"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormGameService struct {
	db *gorm.DB
}

func NewGormGameService(db *gorm.DB) *GormGameService {
	return &GormGameService{db: db}
}

// FindByNumber returns the fully-hydrated game: seats in join order and the
// most recent log entries.
func (s *GormGameService) FindByNumber(number int) (*models.Game, error) {
	var game models.Game
	err := s.db.
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(game_constants.ProjectedLogLimit)
		}).
		Where("number = ?", number).
		First(&game).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching game %d: %w", number, err)
	}
	return &game, nil
}

func (s *GormGameService) Create(game *models.Game) error {
	if err := s.db.Create(game).Error; err != nil {
		return fmt.Errorf("error creating game: %w", err)
	}
	return nil
}

func (s *GormGameService) Save(game *models.Game) error {
	if err := s.db.Omit(clause.Associations).Save(game).Error; err != nil {
		return fmt.Errorf("error saving game %d: %w", game.Number, err)
	}
	return nil
}

func (s *GormGameService) DeleteByNumber(number int) error {
	result := s.db.Where("number = ?", number).Delete(&models.Game{})
	if result.Error != nil {
		return fmt.Errorf("error deleting game %d: %w", number, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("game %d: %w", number, gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *GormGameService) GetAllGames(filter GameFilter) ([]*models.Game, error) {
	query := s.db.Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.States)
	}
	if filter.GameType != "" {
		query = query.Where("game_type = ?", filter.GameType)
	}

	var games []*models.Game
	if err := query.Order("created_at DESC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("error listing games: %w", err)
	}
	return games, nil
}

func (s *GormGameService) AddPlayer(player *models.GamePlayer) error {
	if err := s.db.Create(player).Error; err != nil {
		return fmt.Errorf("error seating player %s: %w", player.Username, err)
	}
	return nil
}

func (s *GormGameService) RemovePlayer(gameID uint, username string) error {
	result := s.db.
		Where("game_id = ? AND username = ?", gameID, username).
		Delete(&models.GamePlayer{})
	if result.Error != nil {
		return fmt.Errorf("error removing player %s: %w", username, result.Error)
	}
	return nil
}

func (s *GormGameService) SavePlayer(player *models.GamePlayer) error {
	if err := s.db.Omit(clause.Associations).Save(player).Error; err != nil {
		return fmt.Errorf("error saving player %s: %w", player.Username, err)
	}
	return nil
}
