package model

import "time"

// Customer is owned by the identity service; only read here.
type Customer struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	DateJoined time.Time `json:"date_joined"`
}
