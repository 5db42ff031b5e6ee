package model

import "time"

// Credential is the persisted identity record. One row per unique email;
// the id never changes once assigned.
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile mirrors the profiles table. Created together with the credential
// at registration, inside the same transaction.
type Profile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	SubscriptionTier   string    `json:"subscription_tier"`
	SubscriptionStatus string    `json:"subscription_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
}
