package views

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func startedGame(t *testing.T) *models.Game {
	t.Helper()
	engine := rules.NewBriscolaEngine()
	data, err := engine.InitialData([]string{"alice", "bob"}, []byte(`{"seed":42}`))
	require.NoError(t, err)

	return &models.Game{
		ID:            1,
		Number:        123456,
		GameType:      rules.GameTypeBriscola,
		State:         game_constants.StateStarted,
		OwnerUsername: "alice",
		PlayersMin:    2,
		PlayersMax:    2,
		GameData:      datatypes.JSON(data),
		Options:       datatypes.JSON(`{"seed":42}`),
		Watchers:      datatypes.JSON(`["eve"]`),
		Players: []*models.GamePlayer{
			{GameID: 1, Username: "alice", Position: 0, Ready: true},
			{GameID: 1, Username: "bob", Position: 1, Ready: true},
		},
	}
}

func handOf(t *testing.T, view *GameView) []string {
	t.Helper()
	var data struct {
		Hand []string `json:"hand"`
	}
	require.NoError(t, json.Unmarshal(view.GameData, &data))
	return data.Hand
}

func TestProjectionPrivacy(t *testing.T) {
	projector := NewProjector(rules.DefaultRegistry())
	game := startedGame(t)

	aliceView, err := projector.ForPlayer(game, "alice")
	require.NoError(t, err)
	bobView, err := projector.ForPlayer(game, "bob")
	require.NoError(t, err)
	audienceView, err := projector.ForAudience(game)
	require.NoError(t, err)

	aliceHand := handOf(t, aliceView)
	bobHand := handOf(t, bobView)
	assert.Len(t, aliceHand, 3)
	assert.Len(t, bobHand, 3)
	assert.NotEqual(t, aliceHand, bobHand)
	assert.Empty(t, handOf(t, audienceView))

	// Shared fields agree between every viewer.
	assert.Equal(t, aliceView.Number, audienceView.Number)
	assert.Equal(t, aliceView.Players, audienceView.Players)
	assert.Equal(t, []string{"eve"}, audienceView.Watchers)
}

func TestProjectionDeterministic(t *testing.T) {
	projector := NewProjector(rules.DefaultRegistry())
	game := startedGame(t)

	first, err := projector.ForPlayer(game, "alice")
	require.NoError(t, err)
	second, err := projector.ForPlayer(game, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProjectionDoesNotMutate(t *testing.T) {
	projector := NewProjector(rules.DefaultRegistry())
	game := startedGame(t)
	before := string(game.GameData)

	_, err := projector.ForPlayer(game, "alice")
	require.NoError(t, err)
	_, err = projector.ForAudience(game)
	require.NoError(t, err)

	assert.Equal(t, before, string(game.GameData))
}

func TestProjectionOpenGameSkipsEngine(t *testing.T) {
	projector := NewProjector(rules.DefaultRegistry())
	game := startedGame(t)
	game.State = game_constants.StateOpen

	view, err := projector.ForAudience(game)
	require.NoError(t, err)
	assert.Empty(t, view.GameData)
}

func TestProjectionUnknownEngine(t *testing.T) {
	projector := NewProjector(rules.NewRegistry())
	game := startedGame(t)

	_, err := projector.ForPlayer(game, "alice")
	assert.Error(t, err)
}

func TestProjectionCapsLogs(t *testing.T) {
	projector := NewProjector(rules.DefaultRegistry())
	game := startedGame(t)

	for i := 0; i < game_constants.ProjectedLogLimit+20; i++ {
		game.Logs = append(game.Logs, &models.GameLog{
			GameID:    1,
			Username:  "alice",
			Type:      game_constants.LogMove,
			Text:      fmt.Sprintf("entry %d", i),
			CreatedAt: time.Now(),
		})
	}

	view, err := projector.ForPlayer(game, "alice")
	require.NoError(t, err)
	assert.Len(t, view.Logs, game_constants.ProjectedLogLimit)
	assert.Equal(t, "entry 0", view.Logs[0].Text)
}
