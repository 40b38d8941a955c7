package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'User' is the account entity owned by the external HTTP/CRUD layer.
 * The live layer only reads it and updates the session-related fields
 * (OpenedGame, OpenedGameWatcher, CurrentGames, CurrentMoves).
 */
type User struct {
	Email           string    `gorm:"primaryKey;size:100;not null"`
	ProfileUsername string    `gorm:"size:50;not null;uniqueIndex"`
	FullName        string    `gorm:"size:100"`
	MemberSince     time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Game the user is currently playing (its public number), if any.
	OpenedGame *int `gorm:"index"`
	// Game the user is currently observing. Independent of OpenedGame.
	OpenedGameWatcher *int

	// Numbers of the games the user is seated in / may move in. These are
	// authorization lists, not kept in lockstep with OpenedGame.
	CurrentGames datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	CurrentMoves datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
}
