package redis

import (
	"testing"
	"time"

	redis_models "Mesa/models/redis"
	redis_utils "Mesa/services/redis/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a reachable Redis; they skip cleanly otherwise.
func testClient(t *testing.T) *RedisClient {
	t.Helper()
	rc, err := InitRedis("localhost:6379", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return rc
}

func TestGameSummaryRoundTrip(t *testing.T) {
	rc := testClient(t)
	number := 987654
	defer rc.CleanupKeys([]string{redis_utils.FormatGameSummaryKey(number)})

	summary := &redis_models.GameSummary{
		Number:      number,
		GameType:    "briscola",
		State:       "open",
		Owner:       "alice",
		PlayerCount: 1,
		PlayersMin:  2,
		PlayersMax:  4,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, rc.SaveGameSummary(summary))

	got, err := rc.GetGameSummary(number)
	require.NoError(t, err)
	assert.Equal(t, summary.Number, got.Number)
	assert.Equal(t, summary.Owner, got.Owner)

	require.NoError(t, rc.DeleteGameSummary(number))
	_, err = rc.GetGameSummary(number)
	assert.Error(t, err)
}

func TestPlayerPresenceRoundTrip(t *testing.T) {
	rc := testClient(t)
	defer rc.CleanupKeys([]string{redis_utils.FormatPresenceKey("presence-test-user")})

	presence := &redis_models.PlayerPresence{
		Username:   "presence-test-user",
		Status:     redis_models.StatusOnline,
		LastChange: time.Now().Unix(),
	}
	require.NoError(t, rc.SavePlayerPresence(presence))

	got, err := rc.GetPlayerPresence("presence-test-user")
	require.NoError(t, err)
	assert.Equal(t, redis_models.StatusOnline, got.Status)

	require.NoError(t, rc.DeletePlayerPresence("presence-test-user"))
}
