package postgres

import (
	"time"
)

/*
 * 'GameLog' is an immutable append-only record attached to a game. The
 * coordinator appends exactly one per committed command (two for a move
 * that also finishes the game); nothing ever updates or deletes one.
 */
type GameLog struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"not null;index"`
	Username  string    `gorm:"size:50"`
	Type      string    `gorm:"size:20;not null"`
	Text      string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
