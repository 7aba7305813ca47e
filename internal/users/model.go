package users

import "time"

// User is a locally registered account. Email is unique.
type User struct {
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}
