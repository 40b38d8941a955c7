package postgres

/*
 * 'GamePlayer' is one seat in a game. Position preserves join order; the
 * (GameID, Username) composite key makes duplicate seating impossible at
 * the storage level too.
 */
type GamePlayer struct {
	GameID   uint   `gorm:"primaryKey;not null"`
	Username string `gorm:"primaryKey;size:50;not null;index"`
	Position int    `gorm:"not null"`
	Ready    bool   `gorm:"default:false"`
	IsWinner bool   `gorm:"default:false"`

	Game Game `gorm:"foreignKey:GameID"`
}
