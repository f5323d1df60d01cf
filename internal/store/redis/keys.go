package redis

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces every ClipFlow key in a shared Redis database.
const KeyPrefix = "clipflow:"

// Key returns the Redis key holding the value for a store key.
func Key(key string) string {
	return KeyPrefix + key
}

// ExtractKey strips the namespace from a Redis key.
func ExtractKey(redisKey string) (string, error) {
	if !strings.HasPrefix(redisKey, KeyPrefix) || len(redisKey) == len(KeyPrefix) {
		return "", fmt.Errorf("invalid clipflow key: %s", redisKey)
	}
	return redisKey[len(KeyPrefix):], nil
}
