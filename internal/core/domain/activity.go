package domain

import "time"

// ActivityAction names a resource mutation.
type ActivityAction string

const (
	ActionCreated ActivityAction = "created"
	ActionUpdated ActivityAction = "updated"
	ActionDeleted ActivityAction = "deleted"
)

// ActivityEvent records a single mutation of an owned resource.
type ActivityEvent struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	Kind       string         `json:"kind" bson:"kind"`
	ResourceID string         `json:"resource_id" bson:"resource_id"`
	ActorID    string         `json:"actor_id" bson:"actor_id"`
	Action     ActivityAction `json:"action" bson:"action"`
	At         time.Time      `json:"at" bson:"at"`
}
