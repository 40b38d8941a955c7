package coordinator

import (
	"errors"
	"log"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/persistence"

	"gorm.io/gorm"
)

// CreateInvite offers a seat in an open game to another user.
func (c *Coordinator) CreateInvite(number int, createdBy, invitee string) (*models.GameInvite, error) {
	if createdBy == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}
	if invitee == "" || invitee == createdBy {
		return nil, NewValidationError("invalid invitee")
	}

	var invite *models.GameInvite
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State != game_constants.StateOpen {
			return NewStateConflictError("game %d is no longer open", number)
		}
		if seatOf(game, createdBy) == nil {
			return NewAuthorizationError("you are not a player of game %d", number)
		}
		if seatOf(game, invitee) != nil {
			return NewStateConflictError("%s is already seated", invitee)
		}
		if _, err := c.store.Users().FindByUsername(invitee); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("unknown user %q", invitee)
			}
			return NewPersistenceError(err)
		}

		invite = &models.GameInvite{
			GameID:          game.ID,
			GameNumber:      game.Number,
			SenderUsername:  createdBy,
			InvitedUsername: invitee,
		}
		if err := c.store.Invites().Create(invite); err != nil {
			return NewPersistenceError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInvite runs the regular join path for the invite's game and only
// then closes the invite. A failed join leaves the invite open, so the
// user can retry once a seat frees up. When two tabs race, the join is
// serialized per game: the loser hits the already-seated conflict before
// ever reaching the close.
func (c *Coordinator) AcceptInvite(inviteID uint, username string) (*models.Game, error) {
	invite, err := c.resolveInvite(inviteID, username)
	if err != nil {
		return nil, err
	}
	if invite.Closed() {
		return nil, NewStateConflictError("invite %d was already answered", inviteID)
	}
	game, err := c.JoinGame(invite.GameNumber, username)
	if err != nil {
		return nil, err
	}
	if err := c.closeInvite(invite.ID, true); err != nil {
		// The seat is committed either way; a lost close only means a
		// sweep already answered the invite.
		log.Printf("[INVITE] Could not close invite %d after join: %v", inviteID, err)
	}
	return game, nil
}

// DeclineInvite closes the invite without joining.
func (c *Coordinator) DeclineInvite(inviteID uint, username string) error {
	invite, err := c.resolveInvite(inviteID, username)
	if err != nil {
		return err
	}
	return c.closeInvite(invite.ID, false)
}

// GetOpenInvites lists a user's pending invites (sent on connect).
func (c *Coordinator) GetOpenInvites(username string) ([]*models.GameInvite, error) {
	invites, err := c.store.Invites().FindOpenByInvitee(username)
	if err != nil {
		return nil, NewPersistenceError(err)
	}
	return invites, nil
}

func (c *Coordinator) resolveInvite(inviteID uint, username string) (*models.GameInvite, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}
	invite, err := c.store.Invites().FindByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewStateConflictError("invite %d not found", inviteID)
		}
		return nil, NewPersistenceError(err)
	}
	if invite.InvitedUsername != username {
		return nil, NewAuthorizationError("invite %d is not addressed to you", inviteID)
	}
	return invite, nil
}

func (c *Coordinator) closeInvite(inviteID uint, accepted bool) error {
	if err := c.store.Invites().Close(inviteID, accepted); err != nil {
		if errors.Is(err, persistence.ErrInviteClosed) {
			return NewStateConflictError("invite %d was already answered", inviteID)
		}
		return NewPersistenceError(err)
	}
	return nil
}
