package rules

import (
	"encoding/json"
	"math/rand"
	"time"
)

const GameTypeBriscola = "briscola"

// BriscolaEngine implements the classic 40-card trick-taking game. Hands
// are private to their owner, which makes it a good exercise for the
// per-viewer projection contract.
type BriscolaEngine struct{}

func NewBriscolaEngine() *BriscolaEngine {
	return &BriscolaEngine{}
}

var briscolaSuits = []string{"O", "C", "E", "B"}
var briscolaRanks = []string{"1", "2", "3", "4", "5", "6", "7", "10", "11", "12"}

// Card point values; everything else scores zero.
var briscolaPoints = map[string]int{
	"1": 11, "3": 10, "12": 4, "11": 3, "10": 2,
}

// Relative strength within a suit. Higher wins the trick.
var briscolaStrength = map[string]int{
	"1": 9, "3": 8, "12": 7, "11": 6, "10": 5, "7": 4, "6": 3, "5": 2, "4": 1, "2": 0,
}

type briscolaPlay struct {
	Player string `json:"player"`
	Card   string `json:"card"`
}

type briscolaState struct {
	Trump  string              `json:"trump"`
	Deck   []string            `json:"deck"`
	Hands  map[string][]string `json:"hands"`
	Table  []briscolaPlay      `json:"table"`
	Order  []string            `json:"order"`
	Turn   int                 `json:"turn"`
	Scores map[string]int      `json:"scores"`
}

type briscolaOptions struct {
	// Seed pins the shuffle, mainly for tests. Zero means random.
	Seed int64 `json:"seed"`
}

type briscolaMove struct {
	Card string `json:"card"`
}

// What a viewer is allowed to see: own hand, everyone's card counts, the
// public table. Other hands and the undrawn deck stay hidden.
type briscolaView struct {
	Trump      string         `json:"trump"`
	DeckCount  int            `json:"deck_count"`
	Table      []briscolaPlay `json:"table"`
	Order      []string       `json:"order"`
	TurnPlayer string         `json:"turn_player"`
	Scores     map[string]int `json:"scores"`
	HandCounts map[string]int `json:"hand_counts"`
	Hand       []string       `json:"hand,omitempty"`
}

func cardSuit(card string) string {
	return card[len(card)-1:]
}

func cardRank(card string) string {
	return card[:len(card)-1]
}

func (e *BriscolaEngine) InitialData(players []string, options json.RawMessage) (json.RawMessage, error) {
	if len(players) < 2 || len(players) > 4 {
		return nil, NewRuleError("briscola needs 2 to 4 players, got %d", len(players))
	}

	var opts briscolaOptions
	if len(options) > 0 {
		if err := json.Unmarshal(options, &opts); err != nil {
			return nil, NewRuleError("invalid options payload")
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	deck := make([]string, 0, 40)
	for _, suit := range briscolaSuits {
		for _, rank := range briscolaRanks {
			// A three-player table plays with 39 cards
			if len(players) == 3 && rank == "2" && suit == "B" {
				continue
			}
			deck = append(deck, rank+suit)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	state := briscolaState{
		Deck:   deck,
		Hands:  make(map[string][]string, len(players)),
		Order:  append([]string(nil), players...),
		Scores: make(map[string]int, len(players)),
	}
	for i := 0; i < 3; i++ {
		for _, player := range players {
			state.Hands[player] = append(state.Hands[player], state.Deck[0])
			state.Deck = state.Deck[1:]
		}
	}
	for _, player := range players {
		state.Scores[player] = 0
	}
	// The bottom card of the deck sets the trump suit and is drawn last.
	state.Trump = state.Deck[len(state.Deck)-1]

	return json.Marshal(&state)
}

func (e *BriscolaEngine) ApplyMove(data json.RawMessage, player string, move json.RawMessage) (*MoveResult, error) {
	var state briscolaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, NewRuleError("corrupt game state")
	}
	if e.finished(&state) {
		return nil, NewRuleError("the game is already over")
	}
	if state.Order[state.Turn] != player {
		return nil, NewRuleError("it is not your turn")
	}

	var m briscolaMove
	if err := json.Unmarshal(move, &m); err != nil || m.Card == "" {
		return nil, NewRuleError("a move must name the card to play")
	}

	hand := state.Hands[player]
	cardIdx := -1
	for i, card := range hand {
		if card == m.Card {
			cardIdx = i
			break
		}
	}
	if cardIdx < 0 {
		return nil, NewRuleError("card %s is not in your hand", m.Card)
	}

	state.Hands[player] = append(append([]string(nil), hand[:cardIdx]...), hand[cardIdx+1:]...)
	state.Table = append(state.Table, briscolaPlay{Player: player, Card: m.Card})

	if len(state.Table) < len(state.Order) {
		state.Turn = (state.Turn + 1) % len(state.Order)
	} else {
		e.resolveTrick(&state)
	}

	result := &MoveResult{Finished: e.finished(&state)}
	if result.Finished {
		result.Winner = e.winner(&state)
	}

	out, err := json.Marshal(&state)
	if err != nil {
		return nil, NewRuleError("could not encode game state")
	}
	result.Data = out
	return result, nil
}

// resolveTrick scores the completed table, rotates the lead to the trick
// winner and deals one replacement card each while the deck lasts.
func (e *BriscolaEngine) resolveTrick(state *briscolaState) {
	trumpSuit := cardSuit(state.Trump)
	leadSuit := cardSuit(state.Table[0].Card)

	best := 0
	for i := 1; i < len(state.Table); i++ {
		if e.beats(state.Table[i].Card, state.Table[best].Card, trumpSuit, leadSuit) {
			best = i
		}
	}
	winner := state.Table[best].Player

	points := 0
	for _, play := range state.Table {
		points += briscolaPoints[cardRank(play.Card)]
	}
	state.Scores[winner] += points
	state.Table = nil

	winnerIdx := 0
	for i, player := range state.Order {
		if player == winner {
			winnerIdx = i
			break
		}
	}

	// Winner draws first, then the rest in seating order.
	for i := 0; i < len(state.Order) && len(state.Deck) > 0; i++ {
		player := state.Order[(winnerIdx+i)%len(state.Order)]
		state.Hands[player] = append(state.Hands[player], state.Deck[0])
		state.Deck = state.Deck[1:]
	}
	state.Turn = winnerIdx
}

func (e *BriscolaEngine) beats(challenger, holder, trumpSuit, leadSuit string) bool {
	cs, hs := cardSuit(challenger), cardSuit(holder)
	switch {
	case cs == hs:
		return briscolaStrength[cardRank(challenger)] > briscolaStrength[cardRank(holder)]
	case cs == trumpSuit:
		return true
	default:
		// Off-suit, non-trump cards never take the trick
		return false
	}
}

func (e *BriscolaEngine) finished(state *briscolaState) bool {
	if len(state.Deck) > 0 || len(state.Table) > 0 {
		return false
	}
	for _, hand := range state.Hands {
		if len(hand) > 0 {
			return false
		}
	}
	return true
}

// winner returns the highest scorer, or "" on a tie.
func (e *BriscolaEngine) winner(state *briscolaState) string {
	best, bestScore, tied := "", -1, false
	for _, player := range state.Order {
		score := state.Scores[player]
		if score > bestScore {
			best, bestScore, tied = player, score, false
		} else if score == bestScore {
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}

func (e *BriscolaEngine) ProjectForViewer(data json.RawMessage, viewer string) (json.RawMessage, error) {
	var state briscolaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, NewRuleError("corrupt game state")
	}

	view := briscolaView{
		Trump:      state.Trump,
		DeckCount:  len(state.Deck),
		Table:      state.Table,
		Order:      state.Order,
		Scores:     state.Scores,
		HandCounts: make(map[string]int, len(state.Hands)),
	}
	if len(state.Order) > 0 {
		view.TurnPlayer = state.Order[state.Turn]
	}
	for player, hand := range state.Hands {
		view.HandCounts[player] = len(hand)
	}
	if hand, ok := state.Hands[viewer]; ok {
		view.Hand = append([]string(nil), hand...)
	}

	return json.Marshal(&view)
}
