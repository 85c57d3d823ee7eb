package domain

import (
	"github.com/google/uuid"
)

// BuildIdempotencyKey scopes a client-supplied Idempotency-Key to the user and operation.
func BuildIdempotencyKey(userID uuid.UUID, op EntryType, key string) string {
	return userID.String() + ":" + string(op) + ":" + key
}
