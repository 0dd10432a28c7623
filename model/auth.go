package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

type SocialLoginRequest struct {
	IDToken string `json:"id_token"`
}

type Auth struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// SocialIdentity is a verified identity asserted by an external provider.
type SocialIdentity struct {
	UID      string
	Email    string
	Name     string
	Picture  string
	Provider string
}
