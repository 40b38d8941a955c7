package postgres

import (
	"math/rand"
	"time"

	game_constants "Mesa/constants/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'Game' is the authoritative session state. It is only ever mutated
 * inside the coordinator's per-number critical section. Clients address a
 * game exclusively by its public Number, never by the internal ID.
 */
type Game struct {
	ID       uint   `gorm:"primaryKey"`
	Number   int    `gorm:"uniqueIndex;not null"`
	GameType string `gorm:"size:50;not null"`
	State    string `gorm:"size:20;not null;default:'open';index"`

	OwnerUsername string `gorm:"size:50;not null;index"`
	PlayersMin    int    `gorm:"default:2"`
	PlayersMax    int    `gorm:"default:4"`

	// Opaque blob interpreted only by the rules engine for GameType.
	GameData datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	// Pre-start options, handed to the rules engine when the game starts.
	Options datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	// Usernames currently observing the game.
	Watchers datatypes.JSON `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Players []*GamePlayer `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Logs    []*GameLog    `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Random public game number generation. Six digits keeps them easy to
// share while the uniqueness loop below guards against collisions.
func generateGameNumber() int {
	return 100000 + rand.Intn(900000)
}

// Ensure the number is trully unique before the row is inserted.
func (g *Game) BeforeCreate(tx *gorm.DB) (err error) {
	if g.State == "" {
		g.State = game_constants.StateOpen
	}
	for {
		newNumber := generateGameNumber()
		var existing Game
		if err := tx.Where("number = ?", newNumber).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				g.Number = newNumber
				return nil
			}
			return err
		}
		// Otherwise, loop again to generate a new unique number
	}
}
