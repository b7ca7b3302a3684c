package model

import "time"

// SlotLock is an advisory lock held by the store while a booking for one
// (staff, start) pair is being committed.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
