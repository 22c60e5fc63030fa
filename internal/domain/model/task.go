package model

import (
	"time"
)

// Task is owned by exactly one user, referenced by username. The owner
// field changes only through the rename cascade, never through a task
// update.
type Task struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Status      string     `bson:"status" json:"status"`
	Owner       string     `bson:"owner" json:"owner"`
	Label       string     `bson:"label,omitempty" json:"label,omitempty"`
	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at" json:"updated_at"`
}
