package models

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// NewID generates a record identifier: the millisecond timestamp in base36
// followed by a random base36 suffix. Not globally unique, but collisions
// are negligible for a single-client store.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + randomSuffix()
}

func randomSuffix() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(buf), 36)
}
