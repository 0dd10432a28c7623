package model

import (
	"encoding/json"
	"time"
)

type User struct {
	ID             string          `json:"id"`
	Email          *string         `json:"email,omitempty"`
	Name           *string         `json:"name,omitempty"`
	Username       *string         `json:"username,omitempty"`
	AuthMethod     string          `json:"auth_method"`
	Bio            *string         `json:"bio,omitempty"`
	Image          *string         `json:"image,omitempty"`
	Twitter        *string         `json:"twitter,omitempty"`
	Instagram      *string         `json:"instagram,omitempty"`
	Website        *string         `json:"website,omitempty"`
	WalletAddress  *string         `json:"wallet_address,omitempty"`
	Interests      []string        `json:"interests"`
	Preferences    json.RawMessage `json:"preferences,omitempty"`
	FollowersCount int64           `json:"followers_count"`
	FollowingCount int64           `json:"following_count"`
	Verified       bool            `json:"verified"`
	EmailVerified  bool            `json:"email_verified"`
	IsOrganiser    bool            `json:"is_organiser"`
	IsAdmin        bool            `json:"is_admin"`
	LastLoginAt    *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	PasswordHash *string `json:"-"`
}

// PublicUser is what other users may see of a profile.
type PublicUser struct {
	ID             string    `json:"id"`
	Name           *string   `json:"name,omitempty"`
	Username       *string   `json:"username,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Image          *string   `json:"image,omitempty"`
	Twitter        *string   `json:"twitter,omitempty"`
	Instagram      *string   `json:"instagram,omitempty"`
	Website        *string   `json:"website,omitempty"`
	Interests      []string  `json:"interests"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	Verified       bool      `json:"verified"`
	IsOrganiser    bool      `json:"is_organiser"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Bio:            u.Bio,
		Image:          u.Image,
		Twitter:        u.Twitter,
		Instagram:      u.Instagram,
		Website:        u.Website,
		Interests:      u.Interests,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		Verified:       u.Verified,
		IsOrganiser:    u.IsOrganiser,
		CreatedAt:      u.CreatedAt,
	}
}

// UserSummary is the compact user embedded in attendee and connection listings.
type UserSummary struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Image    *string `json:"image,omitempty"`
	Verified bool    `json:"verified"`
}

// UserUpdate lists the profile fields a user may change. Anything else in the request body is
// ignored, which keeps id, email, password_hash and the admin flags out of reach.
type UserUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Username      *string   `json:"username,omitempty"`
	Bio           *string   `json:"bio,omitempty"`
	Image         *string   `json:"image,omitempty"`
	Twitter       *string   `json:"twitter,omitempty"`
	Instagram     *string   `json:"instagram,omitempty"`
	Website       *string   `json:"website,omitempty"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	Interests     *[]string `json:"interests,omitempty"`
}
