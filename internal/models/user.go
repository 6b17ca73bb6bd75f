package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account.
//
// IsPremium mirrors PremiumExpiration and is never set independently;
// see the premium package for the rule that derives it.
type User struct {
	UUID              string     `json:"uid"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	IsPremium         bool       `json:"is_premium_member"`
	PremiumExpiration *time.Time `json:"premium_expiration_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// PremiumNotice is the message published when a user's premium access is about to end.
type PremiumNotice struct {
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ExpirationDate time.Time `json:"expiration_date"`
}
