package redis

import "fmt"

// Key prefix for all chat snapshot records
const keyPrefix = "chat"

// sliceKey returns the Redis key for one state slice's snapshot record
func sliceKey(slice string) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, slice)
}
