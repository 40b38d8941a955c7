package persistence

/**
 * Contracts for the external storage collaborators the live layer consumes.
 * The coordinator and presence tracker only ever see these interfaces; the
 * gorm implementations live alongside them in this package.
 */

import (
	"errors"

	models "Mesa/models/postgres"
)

// ErrInviteClosed is returned when closing an invite that already reached
// a terminal state. The terminal transition happens at most once.
var ErrInviteClosed = errors.New("invite already closed")

// Store bundles the collaborators behind one handle so a command can run
// its writes atomically.
type Store interface {
	Games() GameService
	Users() UserService
	Logs() LogService
	Invites() InviteService
	// Atomically runs fn against a store whose writes all commit or all
	// roll back together. A non-nil error from fn rolls everything back
	// and is returned unchanged.
	Atomically(fn func(Store) error) error
}

// UserService reads users and updates their session-related fields.
type UserService interface {
	FindByUsername(username string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindManyByUsername(usernames []string) ([]*models.User, error)
	// Update applies a partial update to the named user's row.
	Update(username string, fields map[string]interface{}) error
}

// GameFilter narrows GetAllGames listings.
type GameFilter struct {
	States   []string
	GameType string
}

// GameService persists authoritative game state, addressed by public number.
type GameService interface {
	FindByNumber(number int) (*models.Game, error)
	Create(game *models.Game) error
	// Save writes the game row itself, never its associations.
	Save(game *models.Game) error
	DeleteByNumber(number int) error
	GetAllGames(filter GameFilter) ([]*models.Game, error)

	AddPlayer(player *models.GamePlayer) error
	RemovePlayer(gameID uint, username string) error
	SavePlayer(player *models.GamePlayer) error
}

// LogService appends immutable game log entries.
type LogService interface {
	Create(entry *models.GameLog) (*models.GameLog, error)
}

// InviteService persists directed game invites.
type InviteService interface {
	Create(invite *models.GameInvite) error
	FindByID(id uint) (*models.GameInvite, error)
	FindOpenByInvitee(username string) ([]*models.GameInvite, error)
	// Close marks the invite accepted or declined. Returns ErrInviteClosed
	// if it already left the open state.
	Close(id uint, accepted bool) error
	// CloseAllForGame declines every open invite of a game (mass sweep when
	// the game starts or is removed).
	CloseAllForGame(gameID uint) error
}
