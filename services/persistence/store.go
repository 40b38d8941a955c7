package persistence

import (
	"gorm.io/gorm"
)

type GormStore struct {
	db      *gorm.DB
	games   *GormGameService
	users   *GormUserService
	logs    *GormLogService
	invites *GormInviteService
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:      db,
		games:   NewGormGameService(db),
		users:   NewGormUserService(db),
		logs:    NewGormLogService(db),
		invites: NewGormInviteService(db),
	}
}

func (s *GormStore) Games() GameService     { return s.games }
func (s *GormStore) Users() UserService     { return s.users }
func (s *GormStore) Logs() LogService       { return s.logs }
func (s *GormStore) Invites() InviteService { return s.invites }

// Atomically wraps fn in one database transaction. Any error from fn
// rolls back every write fn made through the transactional store.
func (s *GormStore) Atomically(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
