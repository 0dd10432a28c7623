package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"rovify-backend/database"
	"rovify-backend/firebase"
	"rovify-backend/logger"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/session"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AuthMethodEmail = "email"

	bcryptCost        = 12
	minPasswordLength = 6
)

// Columns is the select list Scan expects.
const Columns = `id, email, name, username, auth_method, bio, image, twitter, instagram, website, wallet_address,
	interests, COALESCE(preferences, '{}'), followers_count, following_count, verified, email_verified,
	is_organiser, is_admin, last_login_at, created_at, updated_at`

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	defaultPreferences = json.RawMessage(`{"currency":"USD","newsletter":true,"notifications":true,"locationRadius":25,"notificationTypes":["REMINDER","FRIEND_GOING","NEW_EVENT"]}`)
	registerCols       = []string{"id", "email", "name", "username", "password_hash", "auth_method", "preferences", "created_at", "updated_at"}
	socialCols         = []string{"id", "email", "name", "image", "auth_method", "firebase_uid", "email_verified", "preferences", "last_login_at", "created_at", "updated_at"}
)

type User struct {
	Sessions *session.Issuer
	Identity firebase.Verifier
}

func NewUser(sessions *session.Issuer, identity firebase.Verifier) *User {
	return &User{Sessions: sessions, Identity: identity}
}

// Register creates an email/password account and signs the new user in.
func (u *User) Register(ctx context.Context, db *sql.DB, req *model.RegisterRequest) (*model.Auth, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, response.BadRequest("Name, email and password are required", "register: missing fields")
	}
	if !emailPattern.MatchString(email) {
		return nil, response.BadRequest("Invalid email address", fmt.Sprintf("register: invalid email: %s", email))
	}
	if len(req.Password) < minPasswordLength {
		return nil, response.BadRequest(fmt.Sprintf("Password must be at least %d characters long", minPasswordLength), "register: short password")
	}

	exists, err := emailExists(ctx, db, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, response.UserExists()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: unable to hash password: %w", err)
	}

	now := time.Now().UTC()
	usr := &model.User{
		ID:          uuid.NewString(),
		Email:       &email,
		Name:        &name,
		Username:    optional(req.Username),
		AuthMethod:  AuthMethodEmail,
		Interests:   []string{},
		Preferences: defaultPreferences,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	values := []interface{}{usr.ID, email, name, usr.Username, string(hash), AuthMethodEmail, []byte(defaultPreferences), now, now}
	if err := database.Insert(ctx, db, "users", registerCols, values); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, response.UserExists()
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	return u.signIn(usr)
}

func (u *User) Login(ctx context.Context, db *sql.DB, req *model.LoginRequest) (*model.Auth, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, response.BadRequest("Email and password are required", "login: missing fields")
	}

	var hash *string
	row := db.QueryRowContext(ctx, `SELECT `+Columns+`, password_hash FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(req.Email))
	usr, err := Scan(row, &hash)
	if database.IsNoRows(err) {
		return nil, response.CanNotLogin()
	}
	if err != nil {
		return nil, fmt.Errorf("login: unable to fetch user: %w", err)
	}

	if usr.AuthMethod != AuthMethodEmail || hash == nil {
		return nil, response.SocialAccount()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(req.Password)); err != nil {
		return nil, response.CanNotLogin()
	}

	if err := touchLogin(ctx, db, usr); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return u.signIn(usr)
}

// SocialLogin verifies a Firebase ID token and signs in the matching user. Unknown identities are
// linked to an existing account with the same email, or registered.
func (u *User) SocialLogin(ctx context.Context, db *sql.DB, idToken string) (*model.Auth, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, response.BadRequest("id_token is required", "socialLogin: missing token")
	}

	if u.Identity == nil {
		return nil, response.ServiceUnavailable("Social login is not available")
	}

	identity, err := u.Identity.Verify(ctx, idToken)
	if err != nil {
		logger.Infof(ctx, "socialLogin: rejecting token: %v", err)
		return nil, response.Unauthorized()
	}

	usr, err := fetchOne(ctx, db, `firebase_uid = $1`, identity.UID)
	if err != nil && !database.IsNoRows(err) {
		return nil, fmt.Errorf("socialLogin: %w", err)
	}

	if usr == nil && identity.Email != "" {
		usr, err = fetchOne(ctx, db, `lower(email) = lower($1)`, identity.Email)
		if err != nil && !database.IsNoRows(err) {
			return nil, fmt.Errorf("socialLogin: %w", err)
		}
		if usr != nil {
			_, err = database.Update(ctx, db, "users", []string{"firebase_uid", "email_verified"}, []interface{}{identity.UID, true}, []string{"id"}, []interface{}{usr.ID})
			if err != nil {
				return nil, fmt.Errorf("socialLogin: unable to link identity: %w", err)
			}
			usr.EmailVerified = true
		}
	}

	if usr == nil {
		usr, err = createSocial(ctx, db, identity)
		if err != nil {
			return nil, fmt.Errorf("socialLogin: %w", err)
		}
		return u.signIn(usr)
	}

	if err := touchLogin(ctx, db, usr); err != nil {
		return nil, fmt.Errorf("socialLogin: %w", err)
	}
	return u.signIn(usr)
}

func (u *User) Get(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	usr, err := fetchOne(ctx, db, `id = $1`, id)
	if database.IsNoRows(err) {
		return nil, response.ResourceNotFound("User not found", fmt.Sprintf("get: no user %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return usr, nil
}

// GetProfile returns the full record to its owner and the public projection to anyone else.
func (u *User) GetProfile(ctx context.Context, db *sql.DB, viewerID, id string) (interface{}, error) {
	usr, err := u.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if viewerID == id {
		return usr, nil
	}
	return usr.Public(), nil
}

func (u *User) Update(ctx context.Context, db *sql.DB, actorID, id string, upd *model.UserUpdate) (*model.User, error) {
	if actorID != id {
		return nil, response.Forbidden("You can only update your own profile")
	}

	if err := Apply(ctx, db, id, upd); err != nil {
		return nil, err
	}
	return u.Get(ctx, db, id)
}

// Apply writes the non-nil fields of upd to the user row.
func Apply(ctx context.Context, ex database.Execer, id string, upd *model.UserUpdate) error {
	cols, values := updateColumns(upd)
	if len(cols) == 0 {
		return nil
	}
	cols = append(cols, "updated_at")
	values = append(values, time.Now().UTC())

	n, err := database.Update(ctx, ex, "users", cols, values, []string{"id"}, []interface{}{id})
	if database.IsUniqueViolation(err) {
		return response.Conflict("Username is already taken")
	}
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if n == 0 {
		return response.ResourceNotFound("User not found", fmt.Sprintf("apply: no user %s", id))
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Scan reads a row selected with Columns, followed by any extra destinations.
func Scan(s scanner, extra ...interface{}) (*model.User, error) {
	var (
		usr   model.User
		prefs []byte
	)
	dest := []interface{}{
		&usr.ID, &usr.Email, &usr.Name, &usr.Username, &usr.AuthMethod, &usr.Bio, &usr.Image, &usr.Twitter,
		&usr.Instagram, &usr.Website, &usr.WalletAddress, database.Array(&usr.Interests), &prefs,
		&usr.FollowersCount, &usr.FollowingCount, &usr.Verified, &usr.EmailVerified, &usr.IsOrganiser,
		&usr.IsAdmin, &usr.LastLoginAt, &usr.CreatedAt, &usr.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if usr.Interests == nil {
		usr.Interests = []string{}
	}
	usr.Preferences = prefs
	return &usr, nil
}

func (u *User) signIn(usr *model.User) (*model.Auth, error) {
	email := ""
	if usr.Email != nil {
		email = *usr.Email
	}
	token, err := u.Sessions.Issue(usr.ID, email, usr.IsOrganiser)
	if err != nil {
		return nil, fmt.Errorf("signIn: %w", err)
	}
	return &model.Auth{User: usr, Token: token}, nil
}

func fetchOne(ctx context.Context, db database.Querier, cond string, args ...interface{}) (*model.User, error) {
	return Scan(db.QueryRowContext(ctx, `SELECT `+Columns+` FROM users WHERE `+cond, args...))
}

func emailExists(ctx context.Context, db database.Querier, email string) (bool, error) {
	n, err := database.Count(ctx, db, `SELECT COUNT(*) FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return false, fmt.Errorf("emailExists: %w", err)
	}
	return n > 0, nil
}

func touchLogin(ctx context.Context, ex database.Execer, usr *model.User) error {
	now := time.Now().UTC()
	if _, err := database.Update(ctx, ex, "users", []string{"last_login_at"}, []interface{}{now}, []string{"id"}, []interface{}{usr.ID}); err != nil {
		return fmt.Errorf("touchLogin: %w", err)
	}
	usr.LastLoginAt = &now
	return nil
}

func createSocial(ctx context.Context, db *sql.DB, id *model.SocialIdentity) (*model.User, error) {
	now := time.Now().UTC()
	usr := &model.User{
		ID:            uuid.NewString(),
		Email:         optional(id.Email),
		Name:          optional(id.Name),
		Image:         optional(id.Picture),
		AuthMethod:    authMethod(id.Provider),
		Interests:     []string{},
		Preferences:   defaultPreferences,
		EmailVerified: id.Email != "",
		LastLoginAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	values := []interface{}{usr.ID, usr.Email, usr.Name, usr.Image, usr.AuthMethod, id.UID, usr.EmailVerified, []byte(defaultPreferences), now, now, now}
	if err := database.Insert(ctx, db, "users", socialCols, values); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, response.UserExists()
		}
		return nil, fmt.Errorf("createSocial: %w", err)
	}
	return usr, nil
}

// authMethod maps a Firebase sign in provider such as google.com to the stored auth method.
func authMethod(provider string) string {
	p := strings.TrimSuffix(strings.ToLower(provider), ".com")
	if p == "" || p == "password" {
		return "firebase"
	}
	return p
}

func updateColumns(upd *model.UserUpdate) ([]string, []interface{}) {
	var (
		cols   []string
		values []interface{}
	)
	add := func(col string, v interface{}) {
		cols = append(cols, col)
		values = append(values, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Username != nil {
		add("username", optional(*upd.Username))
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.Twitter != nil {
		add("twitter", *upd.Twitter)
	}
	if upd.Instagram != nil {
		add("instagram", *upd.Instagram)
	}
	if upd.Website != nil {
		add("website", *upd.Website)
	}
	if upd.WalletAddress != nil {
		add("wallet_address", *upd.WalletAddress)
	}
	if upd.Interests != nil {
		add("interests", *upd.Interests)
	}
	return cols, values
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
