package user

import "time"

// User is the identity record the cart core reads to confirm a user exists.
type User struct {
	ID        int       `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}
