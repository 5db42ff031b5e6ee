package model

// LoginRequest is the normalized login payload. GrantType and Scope are
// accepted for OAuth2-shaped clients but carry no meaning here.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	GrantType string `json:"grant_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
