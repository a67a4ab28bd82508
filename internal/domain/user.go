package domain

import "time"

// User is a registered account. The password hash, refresh token digest and
// token version never leave the server.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	TokenVersion int       `json:"-" bson:"tokenVersion"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Sanitized returns a copy of u with every secret field cleared.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}
