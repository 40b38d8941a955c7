package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	redis_models "Mesa/models/redis"
	redis_utils "Mesa/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// Ping verifies the connection is alive.
func (rc *RedisClient) Ping() error {
	return rc.client.Ping(rc.ctx).Err()
}

// SaveGameSummary stores a game's lobby-listing snapshot in Redis and adds
// its number to the game index set.
// Key format: "game:{number}:summary"
// TTL: 24 hours
func (rc *RedisClient) SaveGameSummary(summary *redis_models.GameSummary) error {
	key := redis_utils.FormatGameSummaryKey(summary.Number)
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error marshaling game summary: %v", err)
	}

	pipe := rc.client.Pipeline()
	pipe.Set(rc.ctx, key, data, 24*time.Hour)
	pipe.SAdd(rc.ctx, redis_utils.GameIndexKey, summary.Number)
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error saving game summary: %v", err)
	}
	return nil
}

// GetGameSummary retrieves a game's snapshot from Redis
// Key format: "game:{number}:summary"
func (rc *RedisClient) GetGameSummary(number int) (*redis_models.GameSummary, error) {
	key := redis_utils.FormatGameSummaryKey(number)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting game summary: %v", err)
	}

	var summary redis_models.GameSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("error unmarshaling game summary: %v", err)
	}
	return &summary, nil
}

// GetAllGameSummaries returns every cached summary, dropping index members
// whose key already expired.
func (rc *RedisClient) GetAllGameSummaries() ([]*redis_models.GameSummary, error) {
	members, err := rc.client.SMembers(rc.ctx, redis_utils.GameIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading game index: %v", err)
	}

	summaries := make([]*redis_models.GameSummary, 0, len(members))
	for _, member := range members {
		number, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		summary, err := rc.GetGameSummary(number)
		if err != nil {
			// Expired snapshot, drop it from the index
			rc.client.SRem(rc.ctx, redis_utils.GameIndexKey, member)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// DeleteGameSummary removes a game's snapshot and its index entry.
func (rc *RedisClient) DeleteGameSummary(number int) error {
	pipe := rc.client.Pipeline()
	pipe.Del(rc.ctx, redis_utils.FormatGameSummaryKey(number))
	pipe.SRem(rc.ctx, redis_utils.GameIndexKey, number)
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error deleting game summary: %v", err)
	}
	return nil
}

// SavePlayerPresence stores a player's presence snapshot in Redis
// Key format: "presence:{username}"
// TTL: 24 hours
func (rc *RedisClient) SavePlayerPresence(presence *redis_models.PlayerPresence) error {
	key := redis_utils.FormatPresenceKey(presence.Username)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetPlayerPresence retrieves a player's presence snapshot from Redis
func (rc *RedisClient) GetPlayerPresence(username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(username)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting presence data: %v", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence data: %v", err)
	}
	return &presence, nil
}

// DeletePlayerPresence removes a player's presence snapshot from Redis
func (rc *RedisClient) DeletePlayerPresence(username string) error {
	key := redis_utils.FormatPresenceKey(username)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence data: %v", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
