package sync

import (
	"testing"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGames only serves listings; nothing else is reached by these tests.
type stubGames struct {
	games []*models.Game
}

func (s *stubGames) FindByNumber(number int) (*models.Game, error) { panic("not used") }
func (s *stubGames) Create(game *models.Game) error                { panic("not used") }
func (s *stubGames) Save(game *models.Game) error                  { panic("not used") }
func (s *stubGames) DeleteByNumber(number int) error               { panic("not used") }
func (s *stubGames) AddPlayer(player *models.GamePlayer) error     { panic("not used") }
func (s *stubGames) RemovePlayer(gameID uint, username string) error {
	panic("not used")
}
func (s *stubGames) SavePlayer(player *models.GamePlayer) error { panic("not used") }

func (s *stubGames) GetAllGames(filter persistence.GameFilter) ([]*models.Game, error) {
	var out []*models.Game
	for _, game := range s.games {
		match := len(filter.States) == 0
		for _, state := range filter.States {
			if game.State == state {
				match = true
			}
		}
		if match {
			out = append(out, game)
		}
	}
	return out, nil
}

func TestListSummariesFallsBackToPostgres(t *testing.T) {
	games := &stubGames{games: []*models.Game{
		{Number: 111111, GameType: "briscola", State: game_constants.StateOpen,
			OwnerUsername: "alice", PlayersMin: 2, PlayersMax: 4,
			Players: []*models.GamePlayer{{Username: "alice"}}},
		{Number: 222222, GameType: "briscola", State: game_constants.StateStarted,
			OwnerUsername: "bob", PlayersMin: 2, PlayersMax: 2,
			Players: []*models.GamePlayer{{Username: "bob"}, {Username: "carol"}}},
		{Number: 333333, GameType: "briscola", State: game_constants.StateFinished,
			OwnerUsername: "dave"},
	}}
	manager := NewSyncManager(games, nil)

	summaries, err := manager.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byNumber := map[int]int{}
	for _, summary := range summaries {
		byNumber[summary.Number] = summary.PlayerCount
	}
	assert.Equal(t, 1, byNumber[111111])
	assert.Equal(t, 2, byNumber[222222])
	// Finished games never reach the lobby listing.
	_, listed := byNumber[333333]
	assert.False(t, listed)
}

func TestSyncWithoutRedisIsNoop(t *testing.T) {
	manager := NewSyncManager(&stubGames{}, nil)

	assert.NoError(t, manager.SyncGameSummary(&models.Game{Number: 111111}))
	assert.NoError(t, manager.RemoveGameSummary(111111))
	manager.SyncPresence("alice", true)
}
