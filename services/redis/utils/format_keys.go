package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

func FormatGameSummaryKey(number int) string {
	return fmt.Sprintf("game:%d:summary", number)
}

func FormatPresenceKey(username string) string {
	return fmt.Sprintf("presence:%s", username)
}

// Set holding the numbers of every cached game summary, so listings don't
// need a SCAN.
const GameIndexKey = "games:index"
