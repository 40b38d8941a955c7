package sync

import (
	"fmt"
	"log"
	"time"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	redis_models "Mesa/models/redis"
	"Mesa/services/persistence"
	"Mesa/services/redis"
)

// SyncManager keeps the Redis lobby cache in step with PostgreSQL. Every
// committed command pushes the fresh game summary; the get-all-games path
// and the global all-games broadcast read from the cache and fall back to
// PostgreSQL when it is cold.
type SyncManager struct {
	games       persistence.GameService
	redisClient *redis.RedisClient
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(games persistence.GameService, redisClient *redis.RedisClient) *SyncManager {
	return &SyncManager{
		games:       games,
		redisClient: redisClient,
	}
}

func summarize(game *models.Game) *redis_models.GameSummary {
	return &redis_models.GameSummary{
		Number:      game.Number,
		GameType:    game.GameType,
		State:       game.State,
		Owner:       game.OwnerUsername,
		PlayerCount: len(game.Players),
		PlayersMin:  game.PlayersMin,
		PlayersMax:  game.PlayersMax,
		CreatedAt:   game.CreatedAt,
	}
}

// SyncGameSummary refreshes one game's lobby snapshot.
func (sm *SyncManager) SyncGameSummary(game *models.Game) error {
	if sm.redisClient == nil {
		return nil
	}
	if err := sm.redisClient.SaveGameSummary(summarize(game)); err != nil {
		return fmt.Errorf("error syncing game %d to Redis: %v", game.Number, err)
	}
	return nil
}

// RemoveGameSummary drops a removed game from the cache.
func (sm *SyncManager) RemoveGameSummary(number int) error {
	if sm.redisClient == nil {
		return nil
	}
	if err := sm.redisClient.DeleteGameSummary(number); err != nil {
		return fmt.Errorf("error removing game %d from Redis: %v", number, err)
	}
	return nil
}

// ListSummaries returns the lobby listing, preferring the cache. A cold or
// unreachable cache falls back to PostgreSQL and repopulates.
func (sm *SyncManager) ListSummaries() ([]*redis_models.GameSummary, error) {
	if sm.redisClient != nil {
		summaries, err := sm.redisClient.GetAllGameSummaries()
		if err == nil && len(summaries) > 0 {
			return summaries, nil
		}
		if err != nil {
			log.Printf("[SYNC] Redis listing failed, falling back to PostgreSQL: %v", err)
		}
	}

	games, err := sm.games.GetAllGames(persistence.GameFilter{
		States: []string{game_constants.StateOpen, game_constants.StateStarted},
	})
	if err != nil {
		return nil, fmt.Errorf("error listing games from PostgreSQL: %v", err)
	}

	summaries := make([]*redis_models.GameSummary, 0, len(games))
	for _, game := range games {
		summary := summarize(game)
		summaries = append(summaries, summary)
		if sm.redisClient != nil {
			if err := sm.redisClient.SaveGameSummary(summary); err != nil {
				log.Printf("[SYNC] Could not repopulate summary for game %d: %v", game.Number, err)
			}
		}
	}
	return summaries, nil
}

// SyncPresence records a player's committed presence transition.
func (sm *SyncManager) SyncPresence(username string, online bool) {
	if sm.redisClient == nil {
		return
	}
	status := redis_models.StatusOffline
	if online {
		status = redis_models.StatusOnline
	}
	err := sm.redisClient.SavePlayerPresence(&redis_models.PlayerPresence{
		Username:   username,
		Status:     status,
		LastChange: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("[SYNC] Could not record presence for %s: %v", username, err)
	}
}
