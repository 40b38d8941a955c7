package rules

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededDeal(t *testing.T, players []string, seed int64) json.RawMessage {
	t.Helper()
	engine := NewBriscolaEngine()
	data, err := engine.InitialData(players, []byte(fmt.Sprintf(`{"seed":%d}`, seed)))
	require.NoError(t, err)
	return data
}

func TestInitialDataDeterministicForSeed(t *testing.T) {
	engine := NewBriscolaEngine()
	players := []string{"alice", "bob"}

	first, err := engine.InitialData(players, []byte(`{"seed":42}`))
	require.NoError(t, err)
	second, err := engine.InitialData(players, []byte(`{"seed":42}`))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestInitialDataDeal(t *testing.T) {
	engine := NewBriscolaEngine()
	data, err := engine.InitialData([]string{"alice", "bob"}, []byte(`{"seed":1}`))
	require.NoError(t, err)

	var state briscolaState
	require.NoError(t, json.Unmarshal(data, &state))

	assert.Len(t, state.Hands["alice"], 3)
	assert.Len(t, state.Hands["bob"], 3)
	assert.Len(t, state.Deck, 34)
	assert.Equal(t, state.Deck[len(state.Deck)-1], state.Trump)
	assert.Equal(t, []string{"alice", "bob"}, state.Order)
	assert.Equal(t, 0, state.Turn)
}

func TestInitialDataThreePlayerDeck(t *testing.T) {
	engine := NewBriscolaEngine()
	data, err := engine.InitialData([]string{"a", "b", "c"}, []byte(`{"seed":1}`))
	require.NoError(t, err)

	var state briscolaState
	require.NoError(t, json.Unmarshal(data, &state))

	total := len(state.Deck)
	for _, hand := range state.Hands {
		total += len(hand)
	}
	assert.Equal(t, 39, total)
	for _, card := range state.Deck {
		assert.NotEqual(t, "2B", card)
	}
}

func TestInitialDataPlayerBounds(t *testing.T) {
	engine := NewBriscolaEngine()
	_, err := engine.InitialData([]string{"alone"}, nil)
	assert.Error(t, err)
	_, err = engine.InitialData([]string{"a", "b", "c", "d", "e"}, nil)
	assert.Error(t, err)
}

func TestApplyMoveTurnAndPossession(t *testing.T) {
	engine := NewBriscolaEngine()
	data := seededDeal(t, []string{"alice", "bob"}, 42)

	var state briscolaState
	require.NoError(t, json.Unmarshal(data, &state))

	// bob moving on alice's turn
	_, err := engine.ApplyMove(data, "bob", []byte(`{"card":"`+state.Hands["bob"][0]+`"}`))
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)

	// alice playing a card she does not hold
	notHeld := state.Hands["bob"][0]
	_, err = engine.ApplyMove(data, "alice", []byte(`{"card":"`+notHeld+`"}`))
	require.ErrorAs(t, err, &ruleErr)

	// the legal play goes through
	result, err := engine.ApplyMove(data, "alice", []byte(`{"card":"`+state.Hands["alice"][0]+`"}`))
	require.NoError(t, err)
	assert.False(t, result.Finished)
}

func TestApplyMoveResolvesTrick(t *testing.T) {
	engine := NewBriscolaEngine()
	data := seededDeal(t, []string{"alice", "bob"}, 42)

	var state briscolaState
	require.NoError(t, json.Unmarshal(data, &state))

	played := []string{state.Hands["alice"][0], state.Hands["bob"][0]}
	result, err := engine.ApplyMove(data, "alice", []byte(`{"card":"`+played[0]+`"}`))
	require.NoError(t, err)
	result, err = engine.ApplyMove(result.Data, "bob", []byte(`{"card":"`+played[1]+`"}`))
	require.NoError(t, err)

	var after briscolaState
	require.NoError(t, json.Unmarshal(result.Data, &after))

	assert.Empty(t, after.Table)
	// Both players drew back up to three.
	assert.Len(t, after.Hands["alice"], 3)
	assert.Len(t, after.Hands["bob"], 3)
	assert.Len(t, after.Deck, 32)
	// The trick's card points all went to one player.
	expected := briscolaPoints[cardRank(played[0])] + briscolaPoints[cardRank(played[1])]
	assert.Equal(t, expected, after.Scores["alice"]+after.Scores["bob"])
	// The winner holds the lead for the next trick.
	winner := after.Order[after.Turn]
	assert.Equal(t, expected, after.Scores[winner])
}

func TestFullGameFinishes(t *testing.T) {
	engine := NewBriscolaEngine()
	data := seededDeal(t, []string{"alice", "bob"}, 42)

	// Play greedily to the end: always the first card of the turn player.
	for i := 0; i < 40; i++ {
		var state briscolaState
		require.NoError(t, json.Unmarshal(data, &state))
		player := state.Order[state.Turn]
		card := state.Hands[player][0]
		result, err := engine.ApplyMove(data, player, []byte(`{"card":"`+card+`"}`))
		require.NoError(t, err)
		data = result.Data
		if result.Finished {
			var final briscolaState
			require.NoError(t, json.Unmarshal(data, &final))
			// All 120 points were distributed.
			assert.Equal(t, 120, final.Scores["alice"]+final.Scores["bob"])
			if result.Winner != "" {
				assert.Greater(t, final.Scores[result.Winner],
					final.Scores[otherPlayer(result.Winner)])
			}
			return
		}
	}
	t.Fatal("game did not finish within 40 moves")
}

func otherPlayer(winner string) string {
	if winner == "alice" {
		return "bob"
	}
	return "alice"
}

func TestApplyMoveAfterFinish(t *testing.T) {
	engine := NewBriscolaEngine()
	state := briscolaState{
		Trump:  "3O",
		Hands:  map[string][]string{"alice": {}, "bob": {}},
		Order:  []string{"alice", "bob"},
		Scores: map[string]int{"alice": 70, "bob": 50},
	}
	data, err := json.Marshal(&state)
	require.NoError(t, err)

	_, err = engine.ApplyMove(data, "alice", []byte(`{"card":"3O"}`))
	var ruleErr *RuleError
	assert.ErrorAs(t, err, &ruleErr)
}

func TestProjectForViewerHidesOtherHands(t *testing.T) {
	engine := NewBriscolaEngine()
	data := seededDeal(t, []string{"alice", "bob"}, 42)

	var state briscolaState
	require.NoError(t, json.Unmarshal(data, &state))

	aliceRaw, err := engine.ProjectForViewer(data, "alice")
	require.NoError(t, err)
	var aliceView briscolaView
	require.NoError(t, json.Unmarshal(aliceRaw, &aliceView))

	assert.Equal(t, state.Hands["alice"], aliceView.Hand)
	assert.Equal(t, 3, aliceView.HandCounts["bob"])
	assert.Equal(t, len(state.Deck), aliceView.DeckCount)

	// The audience sees counts only.
	audienceRaw, err := engine.ProjectForViewer(data, "")
	require.NoError(t, err)
	var audienceView briscolaView
	require.NoError(t, json.Unmarshal(audienceRaw, &audienceView))
	assert.Empty(t, audienceView.Hand)
	assert.Equal(t, 3, audienceView.HandCounts["alice"])
}

func TestProjectForViewerDeterministic(t *testing.T) {
	engine := NewBriscolaEngine()
	data := seededDeal(t, []string{"alice", "bob"}, 42)

	first, err := engine.ProjectForViewer(data, "alice")
	require.NoError(t, err)
	second, err := engine.ProjectForViewer(data, "alice")
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	// Projection never mutates the underlying state.
	again, err := engine.ProjectForViewer(data, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(again))
}
