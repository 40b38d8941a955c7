package postgres

import (
	"time"
)

/*
 * 'GameInvite' is a directed ephemeral offer to join a game. It leaves the
 * open state at most once: accepted, declined, or swept when its game is
 * removed or started. Re-closing is rejected, never a state flip.
 */
type GameInvite struct {
	ID     uint `gorm:"primaryKey"`
	GameID uint `gorm:"not null;index"`
	// Public number of the game, so clients can act on the invite without
	// ever seeing internal ids.
	GameNumber      int       `gorm:"not null"`
	SenderUsername  string    `gorm:"size:50;not null"`
	InvitedUsername string    `gorm:"size:50;not null;index"`
	IsAccepted      bool      `gorm:"default:false"`
	IsDeclined      bool      `gorm:"default:false"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

// Closed reports whether the invite already reached a terminal state.
func (i *GameInvite) Closed() bool {
	return i.IsAccepted || i.IsDeclined
}
