package model

import (
	"time"
)

type User struct {
	ID             string     `bson:"_id" json:"id"`
	Username       string     `bson:"username" json:"username"`
	Email          string     `bson:"email,omitempty" json:"email,omitempty"`
	FullName       string     `bson:"full_name,omitempty" json:"full_name,omitempty"`
	HashedPassword string     `bson:"hashed_password" json:"-"` // Not exposed
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
